package models

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeTokenInvalid     = "TOKEN_INVALID"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeStoryNotFound    = "STORY_NOT_FOUND"
	ErrCodeTurnNotFound     = "TURN_NOT_FOUND"
	ErrCodeStoryLocked      = "STORY_LOCKED"
	ErrCodeUnknownCharacter = "UNKNOWN_CHARACTER"
	ErrCodeConsecutiveTurn  = "CONSECUTIVE_TURN"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the standard JSON error payload.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
