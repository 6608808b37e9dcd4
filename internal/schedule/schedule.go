// Package schedule holds the weekly slot matching used by the trigger scanner.
// A slot fires when its day-of-week bitmask covers the current weekday and its
// publication time equals the current time truncated to the minute.
package schedule

import (
	"fmt"
	"time"
)

// Day bits, Monday-first. MaskMin..MaskMax bound a valid mask.
const (
	Monday    = 1 << 0
	Tuesday   = 1 << 1
	Wednesday = 1 << 2
	Thursday  = 1 << 3
	Friday    = 1 << 4
	Saturday  = 1 << 5
	Sunday    = 1 << 6

	MaskMin = 1
	MaskMax = 127
)

// WeekdayBit maps time.Weekday (Sunday = 0) onto the Monday-first bit layout.
func WeekdayBit(d time.Weekday) int {
	if d == time.Sunday {
		return Sunday
	}
	return 1 << (int(d) - 1)
}

// MinuteOfDay formats t at minute precision, matching the stored
// publication_time values.
func MinuteOfDay(t time.Time) string {
	return t.Format("15:04")
}

// ValidMask reports whether mask selects at least one day and no unknown bits.
func ValidMask(mask int) bool {
	return mask >= MaskMin && mask <= MaskMax
}

// ValidTime reports whether s is a minute-precision time of day.
func ValidTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// Matches reports whether a slot with the given mask and publication time is
// due at now. now is assumed to already be in the schedule's zone.
func Matches(dayOfWeeks int, publicationTime string, now time.Time) bool {
	return dayOfWeeks&WeekdayBit(now.Weekday()) != 0 && publicationTime == MinuteOfDay(now)
}

// NormalizeTime parses and re-formats a user supplied "HH:MM" value so stored
// times compare byte for byte.
func NormalizeTime(s string) (string, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid publication time %q: %w", s, err)
	}
	return t.Format("15:04"), nil
}
