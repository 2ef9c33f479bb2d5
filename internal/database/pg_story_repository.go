package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

const storySummaryFields = `
	s.id, s.title, s.user_id, s.is_locked, s.created_at,
	(SELECT COUNT(*) FROM turns t WHERE t.story_id = s.id) AS turn_count,
	(SELECT COUNT(*) FROM comments c WHERE c.story_id = s.id) AS comment_count
`

// pgStoryRepository implements StoryRepository for PostgreSQL.
type pgStoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

// NewPgStoryRepository creates a new story repository.
func NewPgStoryRepository(db *pgxpool.Pool, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

// Create inserts the story and its characters in one transaction so a story
// is never observable without its roster.
func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story, characterNames []string) error {
	logFields := []zap.Field{
		zap.String("storyID", story.ID.String()),
		zap.Int("characters", len(characterNames)),
	}
	r.logger.Debug("Creating story with roster", logFields...)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin story create transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO stories (id, title, content, user_id, is_locked, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		story.ID, story.Title, story.Content, story.UserID, story.IsLocked, story.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to insert story: %w", err)
	}

	story.Characters = make([]models.Character, 0, len(characterNames))
	for i, name := range characterNames {
		character := models.Character{
			ID:      uuid.New(),
			StoryID: story.ID,
			Name:    name,
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO characters (id, story_id, name, position) VALUES ($1, $2, $3, $4)`,
			character.ID, character.StoryID, character.Name, i,
		)
		if err != nil {
			r.logger.Error("Failed to insert character", append(logFields, zap.String("name", name), zap.Error(err))...)
			return fmt.Errorf("failed to insert character %q: %w", name, err)
		}
		story.Characters = append(story.Characters, character)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit story create transaction: %w", err)
	}

	r.logger.Info("Story created with roster", logFields...)
	return nil
}

// GetByID returns the story with its characters in roster order.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	err := r.db.QueryRow(ctx,
		`SELECT id, title, content, user_id, is_locked, created_at FROM stories WHERE id = $1`,
		id,
	).Scan(&story.ID, &story.Title, &story.Content, &story.UserID, &story.IsLocked, &story.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to get story", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	err = pgxscan.Select(ctx, r.db, &story.Characters,
		`SELECT id, story_id, name FROM characters WHERE story_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to load story roster", zap.String("storyID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to load story roster: %w", err)
	}

	return &story, nil
}

// ListPage returns one page of summaries, newest first, plus the total count.
func (r *pgStoryRepository) ListPage(ctx context.Context, page, limit int) ([]models.StorySummary, int64, error) {
	offset := (page - 1) * limit

	stories := make([]models.StorySummary, 0, limit)
	query := fmt.Sprintf(`SELECT %s FROM stories s ORDER BY s.created_at DESC, s.id DESC LIMIT $1 OFFSET $2`, storySummaryFields)
	if err := pgxscan.Select(ctx, r.db, &stories, query, limit, offset); err != nil {
		r.logger.Error("Failed to list stories page", zap.Int("page", page), zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list stories: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stories`).Scan(&total); err != nil {
		r.logger.Error("Failed to count stories", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count stories: %w", err)
	}

	return stories, total, nil
}

// ListNewerThan returns summaries created strictly after the watermark,
// newest first.
func (r *pgStoryRepository) ListNewerThan(ctx context.Context, watermark time.Time, limit int) ([]models.StorySummary, error) {
	stories := make([]models.StorySummary, 0, limit)
	query := fmt.Sprintf(`SELECT %s FROM stories s WHERE s.created_at > $1 ORDER BY s.created_at DESC, s.id DESC LIMIT $2`, storySummaryFields)
	if err := pgxscan.Select(ctx, r.db, &stories, query, watermark, limit); err != nil {
		r.logger.Error("Failed to list newer stories", zap.Time("watermark", watermark), zap.Error(err))
		return nil, fmt.Errorf("failed to list newer stories: %w", err)
	}
	return stories, nil
}
