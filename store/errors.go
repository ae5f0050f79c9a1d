package store

import (
	"errors"
)

// Error taxonomy shared by both store realizations. Services wrap these with
// entity/operation context; the HTTP layer maps them with errors.Is:
// ErrNotFound → 404, ErrConflict → 409, ErrValidation → 400, everything
// else → 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
