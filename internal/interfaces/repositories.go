package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storychain-server/internal/models"
)

// Repository-level standard errors.
var (
	// ErrNotFound is the generic "record not found" for repositories.
	ErrNotFound = errors.New("not found")

	// ErrUpvoteAlreadyExists signals the (turn, user) uniqueness constraint
	// rejected a duplicate insert.
	ErrUpvoteAlreadyExists = errors.New("upvote already exists")

	// ErrUpvoteNotFound signals a delete that removed nothing.
	ErrUpvoteNotFound = errors.New("upvote not found")

	// ErrTurnConflict signals a conditional turn append that lost its race:
	// the last-author precondition no longer held when the insert ran.
	ErrTurnConflict = errors.New("turn append conflict")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories can run
// inside or outside an explicit transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StoryRepository persists stories and their immutable character rosters.
type StoryRepository interface {
	// Create inserts the story and its characters atomically. A story is
	// never observable with zero or duplicate characters.
	Create(ctx context.Context, story *models.Story, characterNames []string) error

	// GetByID returns the story with its characters, or models.ErrStoryNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// ListPage returns one page of summaries ordered by created_at DESC
	// together with the authoritative total count.
	ListPage(ctx context.Context, page, limit int) ([]models.StorySummary, int64, error)

	// ListNewerThan returns summaries strictly newer than the watermark,
	// newest first, capped at limit.
	ListNewerThan(ctx context.Context, watermark time.Time, limit int) ([]models.StorySummary, error)
}

// TurnRepository persists the append-only turn log of a story.
type TurnRepository interface {
	// GetLast returns the most recent turn by (created_at, seq), or
	// ErrNotFound when the story has no turns.
	GetLast(ctx context.Context, storyID uuid.UUID) (*models.Turn, error)

	// Append inserts the turn on the condition that the story's last turn was
	// not authored by turn.UserID. Returns ErrTurnConflict when the
	// precondition fails at insert time.
	Append(ctx context.Context, turn *models.Turn) error

	// ListByStoryID returns all turns in narrative order (created_at, seq
	// ascending) with character names and upvote counts attached.
	ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error)
}

// UpvoteRepository persists per-turn upvotes keyed by (turn_id, user_id).
type UpvoteRepository interface {
	// Add returns ErrUpvoteAlreadyExists on the pair uniqueness constraint
	// and models.ErrTurnNotFound when the turn does not exist.
	Add(ctx context.Context, turnID, userID uuid.UUID) error

	// Remove returns ErrUpvoteNotFound when no live row existed.
	Remove(ctx context.Context, turnID, userID uuid.UUID) error

	// Exists reports whether the pair has a live upvote.
	Exists(ctx context.Context, turnID, userID uuid.UUID) (bool, error)

	// CountForTurn returns the live upvote count for a turn.
	CountForTurn(ctx context.Context, turnID uuid.UUID) (int64, error)
}

// CommentRepository persists flat per-story comments.
type CommentRepository interface {
	Add(ctx context.Context, comment *models.Comment) error
	ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Comment, error)
}
