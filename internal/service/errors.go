package service

import "errors"

// ErrNotFound marks a missing entry, post, account or record. Fatal for the
// invocation that hit it; the job layer must not retry it.
var ErrNotFound = errors.New("not found")

// ErrCredential marks decrypt failures and expired tokens. Permanent: the
// record fails without a network attempt and the job layer must not retry.
var ErrCredential = errors.New("credential error")
