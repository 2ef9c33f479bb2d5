package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StoryCreatedEvent is emitted after a story and its roster are committed.
type StoryCreatedEvent struct {
	StoryID   string    `json:"story_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnAddedEvent is emitted after a turn append is committed.
type TurnAddedEvent struct {
	TurnID    string    `json:"turn_id"`
	StoryID   string    `json:"story_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StoryEventPublisher defines the interface for publishing story activity
// events to downstream consumers (e.g. a notification service). Publishing is
// best-effort; a failed publish never fails the user operation.
type StoryEventPublisher interface {
	PublishStoryCreated(ctx context.Context, event StoryCreatedEvent) error
	PublishTurnAdded(ctx context.Context, event TurnAddedEvent) error
}

// rabbitMQPublisher implements StoryEventPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQStoryEventPublisher opens a channel on the given connection and
// declares the events queue. The queue parameters must match the consumer's.
func NewRabbitMQStoryEventPublisher(conn *amqp.Connection, queueName string) (StoryEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("event publisher: failed to declare queue %q: %w", queueName, err)
	}

	return &rabbitMQPublisher{channel: ch, queueName: queueName}, nil
}

func (p *rabbitMQPublisher) PublishStoryCreated(ctx context.Context, event StoryCreatedEvent) error {
	return p.publish(ctx, "story.created", event)
}

func (p *rabbitMQPublisher) PublishTurnAdded(ctx context.Context, event TurnAddedEvent) error {
	return p.publish(ctx, "turn.added", event)
}

func (p *rabbitMQPublisher) publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}
