package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storychain-server/internal/interfaces"
	"storychain-server/internal/interfaces/mocks"
	"storychain-server/internal/models"
	"storychain-server/internal/service"
)

func TestToggleUpvote(t *testing.T) {
	ctx := context.Background()
	turnID := uuid.New()
	userID := uuid.New()

	t.Run("First toggle adds the upvote", func(t *testing.T) {
		mockUpvoteRepo := new(mocks.UpvoteRepository)
		svc := service.NewUpvoteService(mockUpvoteRepo, zap.NewNop())

		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(false, nil).Once()
		mockUpvoteRepo.On("Add", ctx, turnID, userID).Return(nil).Once()

		upvoted, err := svc.Toggle(ctx, turnID, userID)
		assert.NoError(t, err)
		assert.True(t, upvoted)
		mockUpvoteRepo.AssertExpectations(t)
	})

	t.Run("Second toggle removes the upvote", func(t *testing.T) {
		mockUpvoteRepo := new(mocks.UpvoteRepository)
		svc := service.NewUpvoteService(mockUpvoteRepo, zap.NewNop())

		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(true, nil).Once()
		mockUpvoteRepo.On("Remove", ctx, turnID, userID).Return(nil).Once()

		upvoted, err := svc.Toggle(ctx, turnID, userID)
		assert.NoError(t, err)
		assert.False(t, upvoted)
		mockUpvoteRepo.AssertExpectations(t)
	})

	t.Run("Unknown turn", func(t *testing.T) {
		mockUpvoteRepo := new(mocks.UpvoteRepository)
		svc := service.NewUpvoteService(mockUpvoteRepo, zap.NewNop())

		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(false, nil).Once()
		mockUpvoteRepo.On("Add", ctx, turnID, userID).Return(models.ErrTurnNotFound).Once()

		_, err := svc.Toggle(ctx, turnID, userID)
		assert.ErrorIs(t, err, models.ErrTurnNotFound)
		mockUpvoteRepo.AssertExpectations(t)
	})

	t.Run("Lost insert race is retried", func(t *testing.T) {
		mockUpvoteRepo := new(mocks.UpvoteRepository)
		svc := service.NewUpvoteService(mockUpvoteRepo, zap.NewNop())

		// Another writer created the row between the check and the insert,
		// the retry observes it and removes it.
		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(false, nil).Once()
		mockUpvoteRepo.On("Add", ctx, turnID, userID).Return(interfaces.ErrUpvoteAlreadyExists).Once()
		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(true, nil).Once()
		mockUpvoteRepo.On("Remove", ctx, turnID, userID).Return(nil).Once()

		upvoted, err := svc.Toggle(ctx, turnID, userID)
		assert.NoError(t, err)
		assert.False(t, upvoted)
		mockUpvoteRepo.AssertExpectations(t)
	})

	t.Run("Retries exhausted", func(t *testing.T) {
		mockUpvoteRepo := new(mocks.UpvoteRepository)
		svc := service.NewUpvoteService(mockUpvoteRepo, zap.NewNop())

		mockUpvoteRepo.On("Exists", ctx, turnID, userID).Return(false, nil).Times(3)
		mockUpvoteRepo.On("Add", ctx, turnID, userID).Return(interfaces.ErrUpvoteAlreadyExists).Times(3)

		_, err := svc.Toggle(ctx, turnID, userID)
		assert.ErrorIs(t, err, service.ErrTransientConflict)
		mockUpvoteRepo.AssertExpectations(t)
	})

	t.Run("Even number of toggles returns to the initial state", func(t *testing.T) {
		repo := newFakeUpvoteRepo()
		svc := service.NewUpvoteService(repo, zap.NewNop())

		const toggles = 10
		var wg sync.WaitGroup
		wg.Add(toggles)
		for i := 0; i < toggles; i++ {
			go func() {
				defer wg.Done()
				_, err := svc.Toggle(ctx, turnID, userID)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.False(t, repo.exists(turnID, userID))
	})
}

// fakeUpvoteRepo is an in-memory upvote store with the same uniqueness
// semantics as the real table.
type fakeUpvoteRepo struct {
	mu   sync.Mutex
	rows map[string]struct{}
}

func newFakeUpvoteRepo() *fakeUpvoteRepo {
	return &fakeUpvoteRepo{rows: make(map[string]struct{})}
}

func (r *fakeUpvoteRepo) key(turnID, userID uuid.UUID) string {
	return turnID.String() + ":" + userID.String()
}

func (r *fakeUpvoteRepo) exists(turnID, userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[r.key(turnID, userID)]
	return ok
}

func (r *fakeUpvoteRepo) Add(ctx context.Context, turnID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(turnID, userID)
	if _, ok := r.rows[k]; ok {
		return interfaces.ErrUpvoteAlreadyExists
	}
	r.rows[k] = struct{}{}
	return nil
}

func (r *fakeUpvoteRepo) Remove(ctx context.Context, turnID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(turnID, userID)
	if _, ok := r.rows[k]; !ok {
		return interfaces.ErrUpvoteNotFound
	}
	delete(r.rows, k)
	return nil
}

func (r *fakeUpvoteRepo) Exists(ctx context.Context, turnID, userID uuid.UUID) (bool, error) {
	return r.exists(turnID, userID), nil
}

func (r *fakeUpvoteRepo) CountForTurn(ctx context.Context, turnID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	prefix := turnID.String() + ":"
	for k := range r.rows {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			count++
		}
	}
	return count, nil
}
