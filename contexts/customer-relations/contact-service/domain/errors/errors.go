package errors

import "errors"

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrInvalidContact   = errors.New("invalid contact input")
	ErrDuplicateContact = errors.New("contact already exists")
)
