package activity

import "errors"

// ErrInvalidInput indicates a missing or incomplete activity entry.
var ErrInvalidInput = errors.New("invalid activity input")
