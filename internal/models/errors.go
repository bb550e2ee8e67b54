package models

import "errors"

// ErrNotFound is returned by repositories and storage backends when the
// referenced document or file does not exist.
var ErrNotFound = errors.New("not found")
