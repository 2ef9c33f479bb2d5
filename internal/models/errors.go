package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrStoryNotFound = errors.New("story not found")
	ErrTurnNotFound  = errors.New("turn not found")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request Errors
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input data")
)
