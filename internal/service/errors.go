package service

import "errors"

var (
	// Roster validation errors.
	ErrEmptyRoster        = errors.New("story must have at least one character")
	ErrRosterTooLarge     = errors.New("story cannot have more than 5 characters")
	ErrDuplicateCharacter = errors.New("character names must be unique within a story")

	// Turn sequencing errors.
	ErrStoryLocked      = errors.New("story is not available")
	ErrUnknownCharacter = errors.New("character does not belong to this story")
	ErrConsecutiveTurn  = errors.New("you cannot contribute twice in a row")

	// ErrTransientConflict surfaces after an internal retry budget for a
	// storage-level race is exhausted. Callers may simply try again.
	ErrTransientConflict = errors.New("concurrent update conflict, please try again")
)

// ErrInternal is returned for unexpected repository failures so handlers never
// leak storage details to clients.
var ErrInternal = errors.New("internal error")
