// Package orchestrator performs the external create for one resolved
// submission and classifies how it ended. It never retries.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/domain"
	"github.com/TemirB/erp-order-bridge/internal/erp"
	"github.com/TemirB/erp-order-bridge/internal/observability"
)

//go:generate mockgen -source internal/application/orchestrator/orchestrator.go -destination=internal/application/orchestrator/orchestrator_mock_test.go -package=orchestrator

// ERP comment fields hold at most 254 characters.
const maxComments = 254

type brk interface {
	Allow() error
	Success()
	Failure()
}

type Orchestrator struct {
	connector erp.Connector
	breaker   brk
	logger    *zap.Logger
	metrics   observability.Metrics
}

func New(connector erp.Connector, breaker brk, logger *zap.Logger, metrics observability.Metrics) *Orchestrator {
	return &Orchestrator{
		connector: connector,
		breaker:   breaker,
		logger:    logger,
		metrics:   metrics,
	}
}

// Created carries the ERP identifiers. DocID is also set on a split-brain
// error when the add succeeded but its number could not be read back.
type Created struct {
	DocID     int
	DocNumber int
}

func (o *Orchestrator) Create(ctx context.Context, sub domain.Submission, rc domain.ResolvedContext) (Created, error) {
	var out Created
	log := o.logger.With(
		zap.String("external_order_id", sub.ExternalOrderID),
		zap.String("instance_id", sub.InstanceID),
	)

	doc, err := BuildDocument(sub, rc)
	if err != nil {
		return out, domain.E(domain.KindValidation, "build document", err)
	}

	if err := o.breaker.Allow(); err != nil {
		log.Warn("erp breaker open, not connecting", zap.Error(err))
		return out, domain.E(domain.KindConnectivity, "connect", err)
	}

	t0 := time.Now()
	sess, err := o.connector.Connect(ctx)
	o.metrics.ObserveStage("erp_connect", err == nil, observability.MsSince(t0))
	if err != nil {
		o.breaker.Failure()
		log.Error("erp connect failed", zap.Error(err))
		return out, domain.E(domain.KindConnectivity, "connect", err)
	}
	defer func() {
		// The caller may already be gone; logout must still go out.
		if cerr := sess.Close(context.WithoutCancel(ctx)); cerr != nil {
			log.Warn("erp session close failed", zap.Error(cerr))
		}
	}()

	t0 = time.Now()
	docID, err := sess.AddOrder(ctx, doc)
	o.metrics.ObserveStage("erp_add", err == nil, observability.MsSince(t0))
	if err != nil {
		var rej *erp.Rejection
		switch {
		case errors.As(err, &rej):
			o.breaker.Success()
			log.Warn("erp rejected order", zap.String("erp_code", rej.Code), zap.String("erp_message", rej.Message))
			return out, domain.E(domain.KindBusinessRejection, "add order", err)
		case errors.Is(err, erp.ErrAmbiguous):
			o.breaker.Failure()
			log.Error("erp add outcome unknown", zap.Error(err))
			return out, domain.E(domain.KindSplitBrain, "add order", err)
		default:
			o.breaker.Failure()
			log.Error("erp add failed", zap.Error(err))
			return out, domain.E(domain.KindConnectivity, "add order", err)
		}
	}
	o.breaker.Success()
	out.DocID = docID

	t0 = time.Now()
	num, err := sess.DocNumber(ctx, docID)
	o.metrics.ObserveStage("erp_docnum", err == nil, observability.MsSince(t0))
	if err != nil {
		log.Error("order created but doc number unreadable", zap.Int("doc_id", docID), zap.Error(err))
		return out, domain.E(domain.KindSplitBrain, "read doc number",
			fmt.Errorf("document %d created: %w", docID, err))
	}
	out.DocNumber = num

	log.Info("erp order created", zap.Int("doc_id", docID), zap.Int("doc_number", num))
	return out, nil
}

// BuildDocument maps a submission and its resolution onto an ERP sales order.
func BuildDocument(sub domain.Submission, rc domain.ResolvedContext) (erp.Document, error) {
	date, err := domain.ParseOrderDate(sub.Order.Date)
	if err != nil {
		return erp.Document{}, err
	}
	doc := erp.Document{
		CustomerCode: rc.CustomerCode,
		SellerCode:   rc.SellerCode,
		Date:         date,
		Reference:    sub.ExternalOrderID,
		Comments:     comments(sub),
		Lines:        make([]erp.DocumentLine, 0, len(sub.Order.Lines)),
	}
	for _, l := range sub.Order.Lines {
		whs := strings.TrimSpace(l.WarehouseCode)
		if whs == "" {
			whs = rc.WarehouseCode
		}
		doc.Lines = append(doc.Lines, erp.DocumentLine{
			ItemCode:        strings.TrimSpace(l.ProductID),
			Quantity:        l.Quantity,
			UnitPrice:       l.Price,
			DiscountPercent: l.Discount,
			WarehouseCode:   whs,
		})
	}
	return doc, nil
}

func comments(sub domain.Submission) string {
	c := sub.Order.Customer
	s := fmt.Sprintf("erp-order-bridge %s/%s | customer: %s | id: %s | phone: %s",
		sub.ExternalOrderID, sub.InstanceID,
		strings.TrimSpace(c.Name), strings.TrimSpace(c.ID), strings.TrimSpace(c.Phone))
	if utf8.RuneCountInString(s) <= maxComments {
		return s
	}
	return string([]rune(s)[:maxComments])
}
