package job

import (
	"context"
	"log/slog"

	"github.com/postpilot/autopost/internal/service"
)

type TokenRefreshJob struct {
	cs service.ConnectService
}

func NewTokenRefreshJob(cs service.ConnectService) *TokenRefreshJob {
	return &TokenRefreshJob{cs: cs}
}

func (j *TokenRefreshJob) RefreshTokens() {
	if err := j.cs.RefreshExpiring(context.Background()); err != nil {
		slog.Info("token refresh sweep failed", "error", err.Error())
	}
}
