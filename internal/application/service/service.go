// Package service coordinates one batch of submissions through the ledger,
// resolution and the ERP create. Every item ends with exactly one result;
// a failing item never affects its neighbours.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/application/orchestrator"
	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/ledger"
	"github.com/TemirB/erp-order-bridge/internal/observability"
	"github.com/TemirB/erp-order-bridge/internal/pkg/breaker"
	"github.com/TemirB/erp-order-bridge/internal/pkg/pool"
	"github.com/TemirB/erp-order-bridge/internal/pkg/retry"
)

//go:generate mockgen -source internal/application/service/service.go -destination=internal/application/service/service_mock_test.go -package=service

type Ledger interface {
	TryBegin(ctx context.Context, key domain.OrderKey, payloadHash string) (domain.BeginResult, error)
	MarkCreated(ctx context.Context, key domain.OrderKey, docID, docNumber int) error
	MarkFailed(ctx context.Context, key domain.OrderKey, message string) error
	MarkUnconfirmed(ctx context.Context, key domain.OrderKey, docID *int, message string) error
	Reconcile(ctx context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error)
	GetStatus(ctx context.Context, key domain.OrderKey) (domain.LedgerRecord, error)
	List(ctx context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error)
	Ping(ctx context.Context) error
}

type Resolver interface {
	Resolve(ctx context.Context, sub domain.Submission) (domain.ResolvedContext, error)
}

type Orchestrator interface {
	Create(ctx context.Context, sub domain.Submission, rc domain.ResolvedContext) (orchestrator.Created, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type BreakerState interface {
	Stats() breaker.Stats
}

type Settings struct {
	BatchWorkers int
	Retry        config.Retry
}

type Service struct {
	ledger    Ledger
	resolver  Resolver
	orch      Orchestrator
	publisher Publisher
	breaker   BreakerState
	settings  Settings
	logger    *zap.Logger
	metrics   observability.Metrics
	now       func() time.Time
}

func NewService(
	ledger Ledger,
	resolver Resolver,
	orch Orchestrator,
	publisher Publisher,
	brk BreakerState,
	settings Settings,
	logger *zap.Logger,
	metrics observability.Metrics,
) *Service {
	return &Service{
		ledger:    ledger,
		resolver:  resolver,
		orch:      orch,
		publisher: publisher,
		breaker:   brk,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SubmitBatch returns one result per submission, in submission order.
func (s *Service) SubmitBatch(ctx context.Context, subs []domain.Submission) []domain.ItemResult {
	results := make([]domain.ItemResult, len(subs))
	pool.Map(s.settings.BatchWorkers, len(subs), func(i int) {
		results[i] = s.Submit(ctx, subs[i])
	})
	return results
}

// Submit runs one submission end to end.
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (res domain.ItemResult) {
	t0 := time.Now()
	key := sub.Key()
	sub.ExternalOrderID, sub.InstanceID = key.ExternalOrderID, key.InstanceID
	res = domain.ItemResult{ExternalOrderID: key.ExternalOrderID, InstanceID: key.InstanceID}
	log := s.logger.With(
		zap.String("external_order_id", sub.ExternalOrderID),
		zap.String("instance_id", sub.InstanceID),
	)
	// Finalize writes must land even if the caller has gone away.
	fctx := context.WithoutCancel(ctx)
	started := false

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("internal error: %v", r)
			log.Error("panic while processing item", zap.Any("panic", r), zap.Stack("stack"))
			if started {
				s.markFailed(fctx, log, res, msg)
			}
			res = fail(res, domain.CodeError, msg)
		}
		s.metrics.ObserveItem(string(res.Code), observability.MsSince(t0))
	}()

	st := time.Now()
	err := Validate(sub)
	var hash string
	if err == nil {
		hash, err = domain.PayloadHash(sub)
	}
	s.metrics.ObserveStage(StageValidate, err == nil, observability.MsSince(st))
	if err != nil {
		log.Info("submission rejected", zap.Error(err))
		return fail(res, domain.CodeValidation, err.Error())
	}
	res.PayloadHash = hash

	st = time.Now()
	begin, err := s.ledger.TryBegin(ctx, key, hash)
	s.metrics.ObserveStage(StageBegin, err == nil, observability.MsSince(st))
	if err != nil {
		log.Error("ledger begin failed", zap.Error(err))
		return fail(res, domain.CodeError, "ledger unavailable: "+err.Error())
	}

	rec := begin.Record
	switch begin.Code {
	case domain.DuplicateCreated:
		log.Info("duplicate of created order", zap.Intp("doc_id", rec.DocID))
		res.OK, res.Code = true, domain.CodeDuplicate
		res.DocID, res.DocNumber = rec.DocID, rec.DocNumber
		return res
	case domain.InProgress:
		return fail(res, domain.CodeInProgress, "order is already being processed")
	case domain.ConflictHash:
		log.Warn("payload differs from the accepted submission", zap.String("stored_hash", rec.PayloadHash))
		return fail(res, domain.CodeConflict, "order was already submitted with a different payload")
	case domain.Unconfirmed:
		res.DocID = rec.DocID
		return fail(res, domain.CodeUnconfirmed,
			"outcome of a previous attempt is unknown; reconcile before retrying: "+rec.ErrorMessage)
	}
	started = true

	st = time.Now()
	rc, err := s.resolver.Resolve(ctx, sub)
	s.metrics.ObserveStage(StageResolve, err == nil, observability.MsSince(st))
	if err != nil {
		log.Info("resolution failed", zap.Error(err))
		s.markFailed(fctx, log, res, err.Error())
		return fail(res, domain.CodeValidation, err.Error())
	}
	res.Resolved = &rc
	res.Warnings = append(res.Warnings, rc.Warnings...)

	st = time.Now()
	created, err := s.orch.Create(ctx, sub, rc)
	s.metrics.ObserveStage(StageCreate, err == nil, observability.MsSince(st))
	if err != nil {
		if domain.KindOf(err) == domain.KindSplitBrain {
			var docID *int
			if created.DocID != 0 {
				docID = domain.IntPtr(created.DocID)
			}
			res.DocID = docID
			s.markUnconfirmed(fctx, log, res, docID, err.Error())
			return fail(res, domain.CodeUnconfirmed, err.Error())
		}
		s.markFailed(fctx, log, res, err.Error())
		return fail(res, domain.CodeError, err.Error())
	}

	res.OK, res.Code = true, domain.CodeCreated
	res.DocID, res.DocNumber = domain.IntPtr(created.DocID), domain.IntPtr(created.DocNumber)

	st = time.Now()
	err = retry.Do(fctx, s.settings.Retry, func() error {
		err := s.ledger.MarkCreated(fctx, key, created.DocID, created.DocNumber)
		if errors.Is(err, ledger.ErrInvalidTransition) {
			return retry.Permanent(err)
		}
		return err
	})
	s.metrics.ObserveStage(StageFinalize, err == nil, observability.MsSince(st))
	if err != nil {
		// The order exists in the ERP. Reporting it failed would invite a duplicate.
		log.Error("ledger not updated after create", zap.Int("doc_id", created.DocID), zap.Error(err))
		s.markUnconfirmed(fctx, log, res, res.DocID, "created in ERP but ledger write failed: "+err.Error())
		res.Warnings = append(res.Warnings, "order created but the ledger could not be updated; status is UNCONFIRMED until reconciled")
		return res
	}

	s.publish(fctx, log, res, domain.EventCreated, domain.StatusCreated, "")
	return res
}

func fail(res domain.ItemResult, code domain.ResultCode, msg string) domain.ItemResult {
	res.OK = false
	res.Code = code
	res.Message = msg
	return res
}

// markFailed is best effort: a lost FAILED mark leaves the key PROCESSING,
// which only delays a retry.
func (s *Service) markFailed(ctx context.Context, log *zap.Logger, res domain.ItemResult, msg string) {
	if err := s.ledger.MarkFailed(ctx, res.Key(), msg); err != nil {
		log.Error("ledger mark failed did not persist", zap.Error(err))
		return
	}
	s.publish(ctx, log, res, domain.EventFailed, domain.StatusFailed, msg)
}

func (s *Service) markUnconfirmed(ctx context.Context, log *zap.Logger, res domain.ItemResult, docID *int, msg string) {
	log.Warn("order outcome unconfirmed", zap.Intp("doc_id", docID), zap.String("reason", msg))
	if err := s.ledger.MarkUnconfirmed(ctx, res.Key(), docID, msg); err != nil {
		log.Error("ledger mark unconfirmed did not persist", zap.Error(err))
		return
	}
	res.DocID = docID
	s.publish(ctx, log, res, domain.EventUnconfirmed, domain.StatusUnconfirmed, msg)
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, res domain.ItemResult, typ domain.EventType, status domain.Status, msg string) {
	ev := domain.Event{
		ID:              uuid.NewString(),
		Type:            typ,
		ExternalOrderID: res.ExternalOrderID,
		InstanceID:      res.InstanceID,
		PayloadHash:     res.PayloadHash,
		Status:          status,
		DocID:           res.DocID,
		DocNumber:       res.DocNumber,
		Message:         msg,
		OccurredAt:      s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Warn("event publish failed", zap.String("event_type", string(typ)), zap.Error(err))
	}
}

func (s *Service) GetStatus(ctx context.Context, key domain.OrderKey) (domain.LedgerRecord, error) {
	rec, err := s.ledger.GetStatus(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("ledger status read failed", zap.Stringer("key", key), zap.Error(err))
	}
	return rec, err
}

func (s *Service) List(ctx context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error) {
	return s.ledger.List(ctx, status, limit)
}

// Reconcile settles an UNCONFIRMED key after an operator checked the ERP.
// With both ids the key becomes CREATED; with neither it becomes FAILED.
func (s *Service) Reconcile(ctx context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error) {
	rec, err := s.ledger.Reconcile(ctx, key, docID, docNumber)
	if err != nil {
		return rec, err
	}
	log := s.logger.With(
		zap.String("external_order_id", key.ExternalOrderID),
		zap.String("instance_id", key.InstanceID),
	)
	log.Info("order reconciled", zap.String("status", string(rec.Status)), zap.Intp("doc_id", rec.DocID))

	res := domain.ItemResult{
		ExternalOrderID: key.ExternalOrderID,
		InstanceID:      key.InstanceID,
		PayloadHash:     rec.PayloadHash,
		DocID:           rec.DocID,
		DocNumber:       rec.DocNumber,
	}
	s.publish(ctx, log, res, domain.EventReconciled, rec.Status, rec.ErrorMessage)
	return rec, nil
}

type Health struct {
	Ledger string `json:"ledger"`
	ERP    string `json:"erp"`
}

func (s *Service) Health(ctx context.Context) Health {
	h := Health{Ledger: "ok", ERP: "unknown"}
	if err := s.ledger.Ping(ctx); err != nil {
		h.Ledger = "unavailable: " + err.Error()
	}
	if s.breaker != nil {
		h.ERP = "breaker " + s.breaker.Stats().State
	}
	return h
}
