package service

import (
	"errors"
	"fmt"
)

var (
	// ErrExchange is returned when the provider does not hand out an access token.
	ErrExchange = errors.New("authorization code exchange failed")
	// ErrClaims is returned when no email can be derived from the identity claims.
	ErrClaims = errors.New("could not retrieve email from token")
	// ErrAccessDenied marks a principal rejected by the allowlist.
	ErrAccessDenied = errors.New("access denied")
	// ErrConfig is returned when app-only credentials are incomplete.
	ErrConfig = errors.New("app-only credentials missing")
	// ErrToken is returned when the client-credentials grant yields no token.
	ErrToken = errors.New("app-only token acquisition failed")
	// ErrSend is matched by every *SendError.
	ErrSend = errors.New("send failed")
	// ErrTimeout is returned when an upstream call exceeds its deadline.
	ErrTimeout = errors.New("upstream timeout")
)

// SendError is returned when the mail API does not acknowledge a send.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed [%d]: %s", e.StatusCode, e.Body)
}

func (e *SendError) Is(target error) bool {
	return target == ErrSend
}
