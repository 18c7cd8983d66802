// Package common defines the error kinds shared by the minibi storage,
// service and transport layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Ownership and naming errors.
	ErrAlreadyExists = errors.New("already exists")
	ErrNotOwner      = errors.New("not owner")
	ErrInvalidName   = errors.New("invalid name")
	ErrNameCollision = errors.New("name collision")

	// Sharing errors.
	ErrAlreadyShared = errors.New("already shared")
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfShare     = errors.New("self share")

	// Content and storage errors.
	ErrParse         = errors.New("parse error")
	ErrUnknownColumn = errors.New("unknown column")
	ErrStorage       = errors.New("storage failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
