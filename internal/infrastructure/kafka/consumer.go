package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads the journal topic as part of a consumer group. Offsets are
// committed after the handler has had its attempts, so a crash mid-message
// redelivers it.
type Consumer struct {
	reader      *kafka.Reader
	maxAttempts int
	backoff     time.Duration
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  500 * time.Millisecond,
	})
	return &Consumer{reader: reader, maxAttempts: 3, backoff: time.Second}
}

// Consume blocks until ctx is cancelled
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Error fetching message: %v", err)
			if !sleep(ctx, c.backoff) {
				return ctx.Err()
			}
			continue
		}

		c.handle(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Printf("[Kafka] Error committing offset %d: %v", msg.Offset, err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return
		}
		log.Printf("[Kafka] Handler failed for offset %d (attempt %d/%d): %v", msg.Offset, attempt, c.maxAttempts, err)
		if !sleep(ctx, c.backoff*time.Duration(attempt)) {
			return
		}
	}
	log.Printf("[Kafka] Giving up on offset %d key %s", msg.Offset, msg.Key)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
