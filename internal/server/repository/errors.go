package repository

import "errors"

// ErrNotFound indicates an owner-scoped write matched no row.
var ErrNotFound = errors.New("not found")
