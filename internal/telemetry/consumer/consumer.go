// Package consumer forwards lifecycle events from the Kafka topic to Loki.
package consumer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Pusher ships one raw event. *loki.Client implements it.
type Pusher interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

// Consumer reads events and pushes them one at a time. An event Loki rejects is logged and
// committed anyway so one bad record cannot stall the partition.
type Consumer struct {
	reader MessageReader
	pusher Pusher
	logger *zap.Logger
}

// New returns a Consumer.
func New(reader MessageReader, pusher Pusher, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: reader, pusher: pusher, logger: logger}
}

// NewKafkaReader returns a group reader for topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// Run consumes until ctx is done. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("worker: kafka fetch failed", zap.Error(err))
			continue
		}
		c.handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("worker: kafka commit failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	if err := c.pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
		c.logger.Warn("worker: loki push failed",
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
	}
}
