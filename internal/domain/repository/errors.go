package repository

import "errors"

// Errors shared by every storage backend.
var (
	ErrNotFound      = errors.New("record not found")
	ErrServiceInUse  = errors.New("service is referenced by appointments")
	ErrDuplicateCode = errors.New("appointment code already exists")
)
