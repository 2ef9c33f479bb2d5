package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storychain-server/internal/messaging"
)

// Mock StoryEventPublisher
type StoryEventPublisher struct {
	mock.Mock
}

func (m *StoryEventPublisher) PublishStoryCreated(ctx context.Context, event messaging.StoryCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *StoryEventPublisher) PublishTurnAdded(ctx context.Context, event messaging.TurnAddedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
