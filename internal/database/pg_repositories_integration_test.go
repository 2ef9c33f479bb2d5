package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"storychain-server/internal/database"
	"storychain-server/internal/interfaces"
	"storychain-server/internal/models"
	"storychain-server/pkg/migration"
)

// IntegrationTestSuite runs the repositories against a real PostgreSQL to
// exercise the constraints the services rely on: the (turn_id, user_id)
// primary key and the conditional turn append.
type IntegrationTestSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool

	storyRepo   interfaces.StoryRepository
	turnRepo    interfaces.TurnRepository
	upvoteRepo  interfaces.UpvoteRepository
	commentRepo interfaces.CommentRepository
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	dbPool, err := pgxpool.New(ctx, connStr)
	require.NoError(s.T(), err)
	s.dbPool = dbPool

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: "migrations",
		MigrationsFS:   database.MigrationsFS,
	}, dbPool)
	require.NoError(s.T(), migrator.Up(ctx))

	s.storyRepo = database.NewPgStoryRepository(dbPool, zap.NewNop())
	s.turnRepo = database.NewPgTurnRepository(dbPool, zap.NewNop())
	s.upvoteRepo = database.NewPgUpvoteRepository(dbPool, zap.NewNop())
	s.commentRepo = database.NewPgCommentRepository(dbPool, zap.NewNop())
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *IntegrationTestSuite) createStory(names ...string) *models.Story {
	story := &models.Story{
		ID:        uuid.New(),
		Title:     "Integration Story",
		Content:   "Opening line.",
		UserID:    uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(s.T(), s.storyRepo.Create(context.Background(), story, names))
	return story
}

func (s *IntegrationTestSuite) TestStoryRoundTrip() {
	ctx := context.Background()
	created := s.createStory("Zoe", "Alice", "Mid")

	got, err := s.storyRepo.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Title, got.Title)

	// Roster comes back in first-seen order, not alphabetical.
	s.Require().Len(got.Characters, 3)
	s.Equal("Zoe", got.Characters[0].Name)
	s.Equal("Alice", got.Characters[1].Name)
	s.Equal("Mid", got.Characters[2].Name)
}

func (s *IntegrationTestSuite) TestStoryNotFound() {
	_, err := s.storyRepo.GetByID(context.Background(), uuid.New())
	s.ErrorIs(err, models.ErrStoryNotFound)
}

func (s *IntegrationTestSuite) TestConditionalTurnAppend() {
	ctx := context.Background()
	story := s.createStory("Solo")
	characterID := story.Characters[0].ID
	userOne := uuid.New()
	userTwo := uuid.New()

	makeTurn := func(userID uuid.UUID) *models.Turn {
		return &models.Turn{
			ID:          uuid.New(),
			StoryID:     story.ID,
			UserID:      userID,
			CharacterID: characterID,
			Content:     "turn content",
			CreatedAt:   time.Now().UTC(),
		}
	}

	s.Require().NoError(s.turnRepo.Append(ctx, makeTurn(userOne)))

	// The same author again violates the insert precondition.
	err := s.turnRepo.Append(ctx, makeTurn(userOne))
	s.ErrorIs(err, interfaces.ErrTurnConflict)

	s.Require().NoError(s.turnRepo.Append(ctx, makeTurn(userTwo)))

	last, err := s.turnRepo.GetLast(ctx, story.ID)
	s.Require().NoError(err)
	s.Equal(userTwo, last.UserID)

	turns, err := s.turnRepo.ListByStoryID(ctx, story.ID)
	s.Require().NoError(err)
	s.Require().Len(turns, 2)
	s.Equal(userOne, turns[0].UserID)
	s.Equal(userTwo, turns[1].UserID)
	s.Equal("Solo", turns[0].CharacterName)
}

func (s *IntegrationTestSuite) TestConcurrentAppendsNeverBreakAlternation() {
	ctx := context.Background()
	story := s.createStory("Racer")
	characterID := story.Characters[0].ID
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	const attempts = 30
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		userID := users[i%len(users)]
		go func() {
			defer wg.Done()
			turn := &models.Turn{
				ID:          uuid.New(),
				StoryID:     story.ID,
				UserID:      userID,
				CharacterID: characterID,
				Content:     "racing",
				CreatedAt:   time.Now().UTC(),
			}
			// Conflicts are a legitimate outcome here.
			if err := s.turnRepo.Append(ctx, turn); err != nil {
				require.ErrorIs(s.T(), err, interfaces.ErrTurnConflict)
			}
		}()
	}
	wg.Wait()

	turns, err := s.turnRepo.ListByStoryID(ctx, story.ID)
	s.Require().NoError(err)
	for i := 1; i < len(turns); i++ {
		s.NotEqual(turns[i-1].UserID, turns[i].UserID,
			"consecutive turns by the same author at position %d", i)
	}
}

func (s *IntegrationTestSuite) TestUpvoteUniqueness() {
	ctx := context.Background()
	story := s.createStory("Star")
	turn := &models.Turn{
		ID:          uuid.New(),
		StoryID:     story.ID,
		UserID:      uuid.New(),
		CharacterID: story.Characters[0].ID,
		Content:     "to be upvoted",
		CreatedAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.turnRepo.Append(ctx, turn))

	userID := uuid.New()

	// Concurrent duplicate inserts: exactly one wins on the primary key.
	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			errs <- s.upvoteRepo.Add(ctx, turn.ID, userID)
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicates int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, interfaces.ErrUpvoteAlreadyExists):
			duplicates++
		default:
			s.Require().NoError(err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(writers-1, duplicates)

	count, err := s.upvoteRepo.CountForTurn(ctx, turn.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	exists, err := s.upvoteRepo.Exists(ctx, turn.ID, userID)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.upvoteRepo.Remove(ctx, turn.ID, userID))
	s.ErrorIs(s.upvoteRepo.Remove(ctx, turn.ID, userID), interfaces.ErrUpvoteNotFound)
}

func (s *IntegrationTestSuite) TestUpvoteUnknownTurn() {
	err := s.upvoteRepo.Add(context.Background(), uuid.New(), uuid.New())
	s.ErrorIs(err, models.ErrTurnNotFound)
}

func (s *IntegrationTestSuite) TestFeedPagination() {
	ctx := context.Background()
	// A dedicated page walk would race other suite tests for totals, so only
	// check invariants that hold regardless of concurrent inserts.
	s.createStory("Pager")

	items, total, err := s.storyRepo.ListPage(ctx, 1, 2)
	s.Require().NoError(err)
	s.LessOrEqual(len(items), 2)
	s.GreaterOrEqual(total, int64(1))

	for i := 1; i < len(items); i++ {
		s.False(items[i-1].CreatedAt.Before(items[i].CreatedAt), "feed must be newest first")
	}

	watermark := time.Now().UTC().Add(time.Hour)
	newer, err := s.storyRepo.ListNewerThan(ctx, watermark, 10)
	s.Require().NoError(err)
	s.Empty(newer)
}

func (s *IntegrationTestSuite) TestComments() {
	ctx := context.Background()
	story := s.createStory("Chatty")

	comment := &models.Comment{
		ID:        uuid.New(),
		StoryID:   story.ID,
		UserID:    uuid.New(),
		Content:   "first!",
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.commentRepo.Add(ctx, comment))

	comments, err := s.commentRepo.ListByStoryID(ctx, story.ID)
	s.Require().NoError(err)
	s.Require().Len(comments, 1)
	s.Equal("first!", comments[0].Content)
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
