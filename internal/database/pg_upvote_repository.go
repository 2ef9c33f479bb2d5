package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

// pgUpvoteRepository implements UpvoteRepository for PostgreSQL. The
// (turn_id, user_id) primary key is the storage-level guarantee that at most
// one live upvote exists per pair, whatever the callers race on.
type pgUpvoteRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.UpvoteRepository = (*pgUpvoteRepository)(nil)

// NewPgUpvoteRepository creates a new upvote repository.
func NewPgUpvoteRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UpvoteRepository {
	return &pgUpvoteRepository{
		db:     db,
		logger: logger.Named("PgUpvoteRepo"),
	}
}

// Add inserts an upvote record.
func (r *pgUpvoteRepository) Add(ctx context.Context, turnID, userID uuid.UUID) error {
	query := `INSERT INTO turn_upvotes (turn_id, user_id) VALUES ($1, $2)`
	logFields := []zap.Field{
		zap.String("turnID", turnID.String()),
		zap.String("userID", userID.String()),
	}
	r.logger.Debug("Adding upvote record", logFields...)

	_, err := r.db.Exec(ctx, query, turnID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation: the pair already has a live upvote
				r.logger.Warn("Upvote already exists (unique constraint violation)", logFields...)
				return interfaces.ErrUpvoteAlreadyExists
			case "23503": // foreign_key_violation: the turn does not exist
				r.logger.Warn("Turn not found (foreign key violation)", logFields...)
				return models.ErrTurnNotFound
			}
		}
		r.logger.Error("Failed to add upvote record", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to add upvote: %w", err)
	}

	r.logger.Info("Upvote record added", logFields...)
	return nil
}

// Remove deletes an upvote record.
func (r *pgUpvoteRepository) Remove(ctx context.Context, turnID, userID uuid.UUID) error {
	query := `DELETE FROM turn_upvotes WHERE turn_id = $1 AND user_id = $2`
	logFields := []zap.Field{
		zap.String("turnID", turnID.String()),
		zap.String("userID", userID.String()),
	}
	r.logger.Debug("Removing upvote record", logFields...)

	commandTag, err := r.db.Exec(ctx, query, turnID, userID)
	if err != nil {
		r.logger.Error("Failed to remove upvote record", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to remove upvote: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Upvote not found to remove", logFields...)
		return interfaces.ErrUpvoteNotFound
	}

	r.logger.Info("Upvote record removed", logFields...)
	return nil
}

// Exists checks whether the pair has a live upvote.
func (r *pgUpvoteRepository) Exists(ctx context.Context, turnID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM turn_upvotes WHERE turn_id = $1 AND user_id = $2)`
	var exists bool

	err := r.db.QueryRow(ctx, query, turnID, userID).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check upvote existence",
			zap.String("turnID", turnID.String()),
			zap.String("userID", userID.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to check upvote existence: %w", err)
	}
	return exists, nil
}

// CountForTurn returns the live upvote count for a turn.
func (r *pgUpvoteRepository) CountForTurn(ctx context.Context, turnID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM turn_upvotes WHERE turn_id = $1`
	var count int64

	err := r.db.QueryRow(ctx, query, turnID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count upvotes", zap.String("turnID", turnID.String()), zap.Error(err))
		return 0, fmt.Errorf("failed to count upvotes: %w", err)
	}
	return count, nil
}
