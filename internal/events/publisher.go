package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher defines the interface for publishing result events
type EventPublisher interface {
	PublishResultRecorded(ctx context.Context, event *ResultRecorded) error
	Close() error
}

// ChannelEventBus implements EventPublisher over Watermill's in-process
// GoChannel pub/sub and also hands out subscriptions for consumers.
type ChannelEventBus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewChannelEventBus(logger *slog.Logger) *ChannelEventBus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &ChannelEventBus{
		pubSub: pubSub,
		logger: logger,
	}
}

func (b *ChannelEventBus) PublishResultRecorded(ctx context.Context, event *ResultRecorded) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("result_id", strconv.FormatUint(uint64(event.ResultID), 10))
	msg.Metadata.Set("test_id", strconv.FormatUint(uint64(event.TestID), 10))

	if err := b.pubSub.Publish(ResultRecordedTopic, msg); err != nil {
		b.logger.Error("Failed to publish result event",
			"event_id", event.ID,
			"result_id", event.ResultID,
			"error", err)
		return fmt.Errorf("failed to publish result event: %w", err)
	}

	b.logger.Info("Published result event",
		"event_id", event.ID,
		"result_id", event.ResultID,
		"topic", ResultRecordedTopic)
	return nil
}

// Subscribe returns a channel of messages for a topic.
func (b *ChannelEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *ChannelEventBus) Close() error {
	return b.pubSub.Close()
}

// StartResultLogger consumes result events and writes an audit log line for
// each recorded submission. It returns once the subscription is up.
func StartResultLogger(ctx context.Context, bus *ChannelEventBus) error {
	messages, err := bus.Subscribe(ctx, ResultRecordedTopic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", ResultRecordedTopic, err)
	}

	go func() {
		for msg := range messages {
			var event ResultRecorded
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				bus.logger.Error("Malformed result event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}

			bus.logger.Info("Result recorded",
				"result_id", event.ResultID,
				"student_id", event.StudentID,
				"test_id", event.TestID,
				"score", event.Score,
				"time_expired", event.TimeExpired)
			msg.Ack()
		}
	}()

	return nil
}

// MockEventPublisher is a mock implementation for testing
type MockEventPublisher struct {
	Events []ResultRecorded
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]ResultRecorded, 0)}
}

func (m *MockEventPublisher) PublishResultRecorded(_ context.Context, event *ResultRecorded) error {
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}
