package ledger

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Consumer consumes visit events and persists them to the ledger.
type Consumer struct {
	subscriber message.Subscriber
	repo       Repository
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a new visit-event consumer.
func NewConsumer(subscriber message.Subscriber, repo Repository, logger *zap.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		repo:       repo,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins consuming visit events.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, TopicEntryVisited)
	if err != nil {
		return err
	}

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleEntryVisited(ctx, msg)
		}
	}
}

func (c *Consumer) handleEntryVisited(ctx context.Context, msg *message.Message) {
	var event EntryVisitedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal entry visited event",
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	visit := &VisitEvent{
		EntryID:   event.EntryID,
		VisitorID: event.VisitorID,
		VisitedAt: event.VisitedAt,
	}

	if err := c.repo.Append(ctx, visit); err != nil {
		c.logger.Error("failed to append visit event",
			zap.String("entry_id", event.EntryID.String()),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()

	c.logger.Debug("recorded visit",
		zap.String("entry_id", event.EntryID.String()),
	)
}

// Shutdown stops the consumer and waits for in-flight messages to complete.
func (c *Consumer) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
