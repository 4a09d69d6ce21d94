package handlers

import "errors"

var ErrMissingParams = errors.New("missing query parameters")
