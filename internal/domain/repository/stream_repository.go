package repository

import (
	"context"

	"github.com/notemap-service/internal/domain"
)

// StreamRepository is the post event feed on Redis Streams. The ingest
// worker consumes submissions through a consumer group; map sessions tail
// the change feed without one.
type StreamRepository interface {
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch reads up to count pending messages for the consumer,
	// blocking briefly when the stream is empty.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	AckMessage(ctx context.Context, stream, group, messageID string) error

	PublishToStream(ctx context.Context, stream string, data interface{}) error

	// Tail streams every entry appended after the call. The returned
	// channel closes when ctx is cancelled.
	Tail(ctx context.Context, stream string) (<-chan domain.StreamMessage, error)
}
