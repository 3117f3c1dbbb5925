package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/observability"
	"github.com/TemirB/erp-order-bridge/internal/pkg/retry"
)

//go:generate mockgen -source internal/application/handler/handler.go -destination=internal/application/handler/handler_mock_test.go -package=handler

var ErrResults = errors.New("results not delivered")

type Service interface {
	SubmitBatch(ctx context.Context, subs []domain.Submission) []domain.ItemResult
}

type ResultWriter interface {
	WriteResults(ctx context.Context, results []domain.ItemResult) error
}

type Handler struct {
	service     Service
	results     ResultWriter
	logger      *zap.Logger
	metrics     observability.Metrics
	retryPolicy config.Retry
}

func NewHandler(service Service, results ResultWriter, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	return &Handler{
		service:     service,
		results:     results,
		logger:      logger,
		metrics:     metrics,
		retryPolicy: retryPolicy,
	}
}

// Handle is called by the consumer for one message. A nil return commits
// the offset. Malformed batches are logged and committed; they would fail
// the same way on every redelivery. Undelivered results are not committed;
// the consumer hands the same message back and the ledger answers the replay.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	t0 := time.Now()
	log := h.logger.With(
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	)

	subs, err := domain.DecodeBatch(message.Value)
	if err != nil {
		log.Error("bad batch, skipping", zap.Error(err), zap.Int("value_bytes", len(message.Value)))
		h.metrics.ObserveKafka(observability.MsSince(t0), false)
		return nil
	}

	results := h.service.SubmitBatch(ctx, subs)

	if err := retry.Do(ctx, h.retryPolicy, func() error {
		return h.results.WriteResults(ctx, results)
	}); err != nil {
		log.Error("writing results failed after retries", zap.Error(err), zap.Int("items", len(results)))
		h.metrics.ObserveKafka(observability.MsSince(t0), false)
		return fmt.Errorf("%w: %v", ErrResults, err)
	}

	h.metrics.ObserveKafka(observability.MsSince(t0), true)
	log.Info("batch processed",
		zap.Int("items", len(results)),
		zap.Int("key_bytes", len(message.Key)),
		zap.Int("value_bytes", len(message.Value)),
	)
	return nil
}
