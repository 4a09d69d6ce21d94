package sso

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteToken = errors.New("response missing access or refresh token")
	ErrUnknownOwner    = errors.New("verify response missing character id")
)

// ProviderError wraps a failed call to the SSO so callers can tell provider
// trouble apart from their own input errors.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("sso %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err originated from an SSO call.
func IsProviderError(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr)
}
