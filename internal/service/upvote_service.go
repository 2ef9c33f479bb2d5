package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
)

// toggleRetryLimit bounds transparent retries when a toggle loses a storage
// race to another writer (e.g. a second instance of the service).
const toggleRetryLimit = 3

// UpvoteService flips a user's upvote on a turn on or off, exactly once per
// request.
type UpvoteService interface {
	// Toggle returns the resulting state: true when the call created the
	// upvote, false when it removed it.
	Toggle(ctx context.Context, turnID, userID uuid.UUID) (bool, error)
}

type upvoteServiceImpl struct {
	upvoteRepo interfaces.UpvoteRepository
	pairLocks  *keyedMutex
	logger     *zap.Logger
}

// NewUpvoteService creates a new instance of UpvoteService.
func NewUpvoteService(upvoteRepo interfaces.UpvoteRepository, logger *zap.Logger) UpvoteService {
	return &upvoteServiceImpl{
		upvoteRepo: upvoteRepo,
		pairLocks:  newKeyedMutex(),
		logger:     logger.Named("UpvoteService"),
	}
}

// Toggle makes the read-modify-write atomic per (turn, user) pair: a per-pair
// lock serializes toggles in this process, and the storage layer's uniqueness
// constraint on the pair catches races with other writers. Losing such a race
// is retried so an even number of sequential toggles always returns to the
// original state.
func (s *upvoteServiceImpl) Toggle(ctx context.Context, turnID, userID uuid.UUID) (bool, error) {
	logFields := []zap.Field{
		zap.String("turnID", turnID.String()),
		zap.String("userID", userID.String()),
	}
	s.logger.Info("Toggling upvote", logFields...)

	unlock := s.pairLocks.Lock(turnID.String() + ":" + userID.String())
	defer unlock()

	for attempt := 0; attempt < toggleRetryLimit; attempt++ {
		exists, err := s.upvoteRepo.Exists(ctx, turnID, userID)
		if err != nil {
			s.logger.Error("Failed to check upvote existence", append(logFields, zap.Error(err))...)
			return false, ErrInternal
		}

		if exists {
			err = s.upvoteRepo.Remove(ctx, turnID, userID)
			if errors.Is(err, interfaces.ErrUpvoteNotFound) {
				// Someone removed it between the check and the delete.
				s.logger.Warn("Upvote vanished mid-toggle, retrying", append(logFields, zap.Int("attempt", attempt+1))...)
				continue
			}
			if err != nil {
				s.logger.Error("Failed to remove upvote", append(logFields, zap.Error(err))...)
				return false, ErrInternal
			}
			s.logger.Info("Upvote removed", logFields...)
			return false, nil
		}

		err = s.upvoteRepo.Add(ctx, turnID, userID)
		if errors.Is(err, interfaces.ErrUpvoteAlreadyExists) {
			// Someone created it between the check and the insert.
			s.logger.Warn("Upvote appeared mid-toggle, retrying", append(logFields, zap.Int("attempt", attempt+1))...)
			continue
		}
		if errors.Is(err, models.ErrTurnNotFound) {
			s.logger.Warn("Turn not found for upvote", logFields...)
			return false, models.ErrTurnNotFound
		}
		if err != nil {
			s.logger.Error("Failed to add upvote", append(logFields, zap.Error(err))...)
			return false, ErrInternal
		}
		s.logger.Info("Upvote added", logFields...)
		return true, nil
	}

	s.logger.Warn("Upvote toggle retries exhausted", logFields...)
	return false, ErrTransientConflict
}
