package model

import "errors"

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Token related errors
	ErrTokenInvalid = errors.New("token invalid")

	// Record related errors
	ErrRecordNotFound = errors.New("record not found")

	// Persistence errors, normalized out of driver-specific codes by the
	// repository layer so services never match on pgconn error strings.
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)
