package store

import "errors"

var (
	ErrNotFound  = errors.New("store: resource not found")
	ErrDuplicate = errors.New("store: duplicate resource")

	ErrForeignKeyViolation = errors.New("store: foreign key constraint violation")
)
