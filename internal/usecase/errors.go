package usecase

import "errors"

// ErrInvalidParams marks failures caused by the caller's parameters.
// Handlers map it to a 400 response; everything else is treated as an
// internal failure.
var ErrInvalidParams = errors.New("invalid parameters")
