// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"

	"task_backend/internal/shared/apperr"
)

var (
	// ErrUserNotFound is returned by repositories when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = apperr.New(apperr.KindConflict, "User already exists")

	// ErrInvalidCredentials is returned on any login failure. Unknown emails and wrong passwords
	// are reported identically.
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "Invalid credentials")
)
