package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

// pgTurnRepository implements TurnRepository for PostgreSQL.
type pgTurnRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.TurnRepository = (*pgTurnRepository)(nil)

// NewPgTurnRepository creates a new turn repository.
func NewPgTurnRepository(db *pgxpool.Pool, logger *zap.Logger) interfaces.TurnRepository {
	return &pgTurnRepository{
		db:     db,
		logger: logger.Named("PgTurnRepo"),
	}
}

// GetLast returns the most recent turn of a story. Ordering is by
// (created_at, seq); seq breaks same-timestamp ties so the narrative order is
// total.
func (r *pgTurnRepository) GetLast(ctx context.Context, storyID uuid.UUID) (*models.Turn, error) {
	var turn models.Turn
	err := r.db.QueryRow(ctx,
		`SELECT id, story_id, user_id, character_id, content, seq, created_at
		   FROM turns WHERE story_id = $1
		  ORDER BY created_at DESC, seq DESC LIMIT 1`,
		storyID,
	).Scan(&turn.ID, &turn.StoryID, &turn.UserID, &turn.CharacterID, &turn.Content, &turn.Seq, &turn.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, interfaces.ErrNotFound
		}
		r.logger.Error("Failed to get last turn", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get last turn: %w", err)
	}
	return &turn, nil
}

// Append inserts the turn only if the story's last turn was not authored by
// the same user. The transaction takes an advisory lock keyed on the story,
// so the last-author check and the insert are atomic across all writers, not
// just those holding the service-level lock. A filtered-out insert surfaces
// as ErrTurnConflict.
func (r *pgTurnRepository) Append(ctx context.Context, turn *models.Turn) error {
	logFields := []zap.Field{
		zap.String("storyID", turn.StoryID.String()),
		zap.String("userID", turn.UserID.String()),
	}
	r.logger.Debug("Appending turn", logFields...)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin turn append transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Released automatically on commit or rollback.
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		turn.StoryID,
	); err != nil {
		r.logger.Error("Failed to lock story for append", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to lock story for append: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO turns (id, story_id, user_id, character_id, content, created_at)
		 SELECT $1, $2, $3, $4, $5, $6
		  WHERE NOT EXISTS (
		        SELECT 1 FROM (
		              SELECT user_id FROM turns
		               WHERE story_id = $2
		               ORDER BY created_at DESC, seq DESC LIMIT 1
		        ) last WHERE last.user_id = $3
		  )
		 RETURNING seq, created_at`,
		turn.ID, turn.StoryID, turn.UserID, turn.CharacterID, turn.Content, turn.CreatedAt,
	).Scan(&turn.Seq, &turn.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The WHERE clause filtered the insert out: the last author
			// already equals the proposed author.
			r.logger.Warn("Turn append precondition failed", logFields...)
			return interfaces.ErrTurnConflict
		}
		r.logger.Error("Failed to append turn", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to append turn: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit turn append transaction: %w", err)
	}

	r.logger.Info("Turn appended", append(logFields, zap.Int64("seq", turn.Seq))...)
	return nil
}

// ListByStoryID returns the story's turns in narrative order with character
// names and upvote counts attached.
func (r *pgTurnRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error) {
	turns := make([]models.Turn, 0)
	err := pgxscan.Select(ctx, r.db, &turns,
		`SELECT t.id, t.story_id, t.user_id, t.character_id, t.content, t.seq, t.created_at,
		        c.name AS character_name,
		        (SELECT COUNT(*) FROM turn_upvotes u WHERE u.turn_id = t.id) AS upvote_count
		   FROM turns t
		   JOIN characters c ON c.id = t.character_id
		  WHERE t.story_id = $1
		  ORDER BY t.created_at ASC, t.seq ASC`,
		storyID,
	)
	if err != nil {
		r.logger.Error("Failed to list turns", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	return turns, nil
}
