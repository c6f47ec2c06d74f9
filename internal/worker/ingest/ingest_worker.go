package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/notemap-service/internal/domain"
	"github.com/notemap-service/internal/domain/repository"
	"github.com/notemap-service/internal/pkg/validator"
	"github.com/notemap-service/internal/worker"
	"go.uber.org/zap"
)

const emptyQueueSleep = 100 * time.Millisecond

// IngestWorker consumes post submissions published by the form subsystem,
// validates their shape at the boundary, stores them with a server-assigned
// id and timestamp, and announces the change on the events stream.
// Submissions that fail validation are quarantined, never stored.
type IngestWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	postRepo     repository.PostRepository
	cacheRepo    repository.CacheRepository
	consumerName string
	maxBatchSize int
}

func NewIngestWorker(
	streamRepo repository.StreamRepository,
	postRepo repository.PostRepository,
	cacheRepo repository.CacheRepository,
	consumerGroup string,
	maxBatchSize int,
	logger *zap.Logger,
) *IngestWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &IngestWorker{
		BaseWorker:   worker.NewBaseWorker("post-ingest", consumerGroup, logger),
		streamRepo:   streamRepo,
		postRepo:     postRepo,
		cacheRepo:    cacheRepo,
		consumerName: consumerName,
		maxBatchSize: maxBatchSize,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting IngestWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", w.maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPostsSubmitted, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch reads and handles a batch of submissions, returning how many
// messages were consumed.
func (w *IngestWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPostsSubmitted,
		w.ConsumerGroup(),
		w.consumerName,
		w.maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger := w.Logger()
	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	for _, msg := range messages {
		if err := w.handleMessage(ctx, msg); err != nil {
			// Leave the message pending for redelivery.
			logger.Error("Failed to handle submission",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}

		if err := w.streamRepo.AckMessage(ctx, domain.StreamPostsSubmitted, w.ConsumerGroup(), msg.ID); err != nil {
			logger.Error("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}

	return len(messages), nil
}

func (w *IngestWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) error {
	logger := w.Logger()

	submission, err := ParseSubmission([]byte(msg.Data))
	if err != nil {
		// Shape-invalid records are quarantined, acked and never stored.
		logger.Warn("Quarantining invalid submission",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return w.quarantine(ctx, msg, err)
	}

	if submission.RiskLevel != "" && submission.Category != domain.CategoryDanger {
		// Leftover risk level from a category change in the form. Stored
		// as-is; readers ignore it for non-danger posts.
		logger.Warn("Risk level present on non-danger post",
			zap.String("category", submission.Category),
			zap.String("risk_level", submission.RiskLevel))
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		Message:   submission.Message,
		Category:  submission.Category,
		RiskLevel: submission.RiskLevel,
		Location:  submission.Location,
		ImageURL:  submission.ImageURL,
		GoodCount: 0,
		CreatedAt: time.Now().UTC(),
	}

	if _, ok := post.Position(); !ok {
		// MalformedLocation is recoverable: the post is stored and
		// readable, it just never renders on the map.
		logger.Info("Storing post with unnormalizable location",
			zap.String("post_id", post.ID))
	}

	if err := w.postRepo.Create(ctx, post); err != nil {
		return fmt.Errorf("store post: %w", err)
	}

	if err := w.cacheRepo.InvalidatePostLists(ctx); err != nil {
		logger.Warn("Failed to invalidate post list cache", zap.Error(err))
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamPostsEvents, domain.PostEvent{
		Type:   domain.EventPostCreated,
		PostID: post.ID,
	}); err != nil {
		logger.Warn("Failed to publish created event", zap.Error(err))
	}

	logger.Info("Post ingested",
		zap.String("post_id", post.ID),
		zap.String("category", post.Category))
	return nil
}

func (w *IngestWorker) quarantine(ctx context.Context, msg domain.StreamMessage, cause error) error {
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamPostsQuarantine, domain.QuarantinedPost{
		Reason: cause.Error(),
		Raw:    msg.Data,
	}); err != nil {
		return fmt.Errorf("quarantine submission: %w", err)
	}
	return nil
}

// ParseSubmission decodes and validates a submitted post payload.
func ParseSubmission(data []byte) (*domain.SubmittedPost, error) {
	var submission domain.SubmittedPost
	if err := unmarshalStrict(data, &submission); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	if err := validator.Validate(&submission); err != nil {
		return nil, fmt.Errorf("validate submission: %w", err)
	}
	return &submission, nil
}
