package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

// pgCommentRepository implements CommentRepository for PostgreSQL.
type pgCommentRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.CommentRepository = (*pgCommentRepository)(nil)

// NewPgCommentRepository creates a new comment repository.
func NewPgCommentRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CommentRepository {
	return &pgCommentRepository{
		db:     db,
		logger: logger.Named("PgCommentRepo"),
	}
}

func (r *pgCommentRepository) Add(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, story_id, user_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.StoryID, comment.UserID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return models.ErrStoryNotFound
		}
		r.logger.Error("Failed to add comment", zap.String("storyID", comment.StoryID.String()), zap.Error(err))
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (r *pgCommentRepository) ListByStoryID(ctx context.Context, storyID uuid.UUID) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := pgxscan.Select(ctx, r.db, &comments,
		`SELECT id, story_id, user_id, content, created_at FROM comments WHERE story_id = $1 ORDER BY created_at ASC`,
		storyID,
	)
	if err != nil {
		r.logger.Error("Failed to list comments", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
