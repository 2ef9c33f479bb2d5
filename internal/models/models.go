package models

import (
	"time"

	"github.com/google/uuid"
)

// Story is a shared narrative seed with a fixed character roster that users
// extend by appending turns. The roster is attached at creation time and is
// immutable afterwards.
type Story struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Title      string      `json:"title" db:"title"`
	Content    string      `json:"content" db:"content"`
	UserID     uuid.UUID   `json:"userId" db:"user_id"`
	IsLocked   bool        `json:"isLocked" db:"is_locked"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	Characters []Character `json:"characters,omitempty" db:"-"`
}

// Character belongs to exactly one story. Name uniqueness is case-insensitive
// within the story.
type Character struct {
	ID      uuid.UUID `json:"id" db:"id"`
	StoryID uuid.UUID `json:"storyId" db:"story_id"`
	Name    string    `json:"name" db:"name"`
}

// Turn is one user's contribution to a story, written in the voice of one of
// the story's characters. Turns are append-only; Seq is a storage-assigned
// monotonically increasing sequence number that breaks same-timestamp ties.
type Turn struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StoryID     uuid.UUID `json:"storyId" db:"story_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	CharacterID uuid.UUID `json:"characterId" db:"character_id"`
	Content     string    `json:"content" db:"content"`
	Seq         int64     `json:"-" db:"seq"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Populated by list queries, not stored on the row itself.
	CharacterName string `json:"characterName,omitempty" db:"character_name"`
	UpvoteCount   int64  `json:"upvoteCount" db:"upvote_count"`
}

// Upvote identity is the (turn, user) pair; at most one live row exists per
// pair at any time.
type Upvote struct {
	TurnID    uuid.UUID `json:"turnId" db:"turn_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is a flat per-story comment.
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	StoryID   uuid.UUID `json:"storyId" db:"story_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// StorySummary is the feed representation of a story: the row plus the
// engagement counts the feed orders by.
type StorySummary struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	IsLocked     bool      `json:"isLocked" db:"is_locked"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	TurnCount    int64     `json:"turnCount" db:"turn_count"`
	CommentCount int64     `json:"commentCount" db:"comment_count"`
}
