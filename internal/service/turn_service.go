package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/messaging"
	"storychain-server/internal/models"
)

// appendRetryLimit bounds transparent retries of a conditional append that
// lost a storage-level race before ErrTransientConflict is surfaced.
const appendRetryLimit = 3

// TurnService decides whether a proposed turn may be appended to a story.
type TurnService interface {
	AddTurn(ctx context.Context, storyID, userID, characterID uuid.UUID, content string) (*models.Turn, error)
	ListTurns(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error)
}

type turnServiceImpl struct {
	storyRepo  interfaces.StoryRepository
	turnRepo   interfaces.TurnRepository
	events     messaging.StoryEventPublisher
	storyLocks *keyedMutex
	logger     *zap.Logger
}

// NewTurnService creates a new instance of TurnService.
func NewTurnService(
	storyRepo interfaces.StoryRepository,
	turnRepo interfaces.TurnRepository,
	events messaging.StoryEventPublisher,
	logger *zap.Logger,
) TurnService {
	return &turnServiceImpl{
		storyRepo:  storyRepo,
		turnRepo:   turnRepo,
		events:     events,
		storyLocks: newKeyedMutex(),
		logger:     logger.Named("TurnService"),
	}
}

// AddTurn appends a turn to a story, enforcing the alternation invariant: no
// contributor may author two consecutive turns on the same story. All
// proposals against one story are serialized; proposals against different
// stories proceed in parallel.
func (s *turnServiceImpl) AddTurn(ctx context.Context, storyID, userID, characterID uuid.UUID, content string) (*models.Turn, error) {
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("userID", userID.String()),
		zap.String("characterID", characterID.String()),
	}
	s.logger.Info("Attempting to add turn", logFields...)

	unlock := s.storyLocks.Lock(storyID.String())
	defer unlock()

	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			// An absent story is indistinguishable from a closed one for
			// contributors.
			s.logger.Warn("Story not found for turn", logFields...)
			return nil, ErrStoryLocked
		}
		s.logger.Error("Failed to load story for turn", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}
	if story.IsLocked {
		s.logger.Warn("Story is locked, rejecting turn", logFields...)
		return nil, ErrStoryLocked
	}

	if !rosterContains(story.Characters, characterID) {
		s.logger.Warn("Character not in story roster", logFields...)
		return nil, ErrUnknownCharacter
	}

	for attempt := 0; attempt < appendRetryLimit; attempt++ {
		last, err := s.turnRepo.GetLast(ctx, storyID)
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Error("Failed to read last turn", append(logFields, zap.Error(err))...)
			return nil, ErrInternal
		}
		if last != nil && last.UserID == userID {
			s.logger.Warn("Consecutive turn rejected", logFields...)
			return nil, ErrConsecutiveTurn
		}

		turn := &models.Turn{
			ID:          uuid.New(),
			StoryID:     storyID,
			UserID:      userID,
			CharacterID: characterID,
			Content:     content,
			CreatedAt:   time.Now().UTC(),
		}
		err = s.turnRepo.Append(ctx, turn)
		if err == nil {
			s.publishTurnAdded(ctx, turn)
			s.logger.Info("Turn added successfully", append(logFields, zap.String("turnID", turn.ID.String()))...)
			return turn, nil
		}
		if errors.Is(err, interfaces.ErrTurnConflict) {
			// Another writer appended between the check and our insert.
			// Re-read and re-check; the loser of an author-vs-author race
			// must see ErrConsecutiveTurn, not a retry storm.
			s.logger.Warn("Turn append lost a race, retrying", append(logFields, zap.Int("attempt", attempt+1))...)
			continue
		}
		s.logger.Error("Failed to append turn", append(logFields, zap.Error(err))...)
		return nil, ErrInternal
	}

	s.logger.Warn("Turn append retries exhausted", logFields...)
	return nil, ErrTransientConflict
}

// ListTurns returns a story's turns in narrative order.
func (s *turnServiceImpl) ListTurns(ctx context.Context, storyID uuid.UUID) ([]models.Turn, error) {
	turns, err := s.turnRepo.ListByStoryID(ctx, storyID)
	if err != nil {
		s.logger.Error("Failed to list turns", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	return turns, nil
}

func (s *turnServiceImpl) publishTurnAdded(ctx context.Context, turn *models.Turn) {
	if s.events == nil {
		return
	}
	event := messaging.TurnAddedEvent{
		TurnID:    turn.ID.String(),
		StoryID:   turn.StoryID.String(),
		UserID:    turn.UserID.String(),
		CreatedAt: turn.CreatedAt,
	}
	if err := s.events.PublishTurnAdded(ctx, event); err != nil {
		// Eventing is best-effort; the turn is already committed.
		s.logger.Error("Failed to publish turn.added event", zap.String("turnID", turn.ID.String()), zap.Error(err))
	}
}

func rosterContains(characters []models.Character, id uuid.UUID) bool {
	for _, c := range characters {
		if c.ID == id {
			return true
		}
	}
	return false
}
