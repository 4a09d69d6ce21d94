package tokens

import "errors"

var (
	ErrMissingCode      = errors.New("missing authorization code")
	ErrInvalidReference = errors.New("malformed token reference")
	ErrUnauthorized     = errors.New("secret does not match stored record")
)
