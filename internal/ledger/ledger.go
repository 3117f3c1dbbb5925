// Package ledger records the lifecycle of every order key and arbitrates
// concurrent attempts on the same key.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid ledger transition")

// Store is implemented by every ledger backend. TryBegin is the only call
// that serializes on a key; the lock never outlives the call.
type Store interface {
	TryBegin(ctx context.Context, key domain.OrderKey, payloadHash string) (domain.BeginResult, error)
	MarkCreated(ctx context.Context, key domain.OrderKey, docID, docNumber int) error
	MarkFailed(ctx context.Context, key domain.OrderKey, message string) error
	MarkUnconfirmed(ctx context.Context, key domain.OrderKey, docID *int, message string) error
	Reconcile(ctx context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error)
	GetStatus(ctx context.Context, key domain.OrderKey) (domain.LedgerRecord, error)
	List(ctx context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// maxErrorLen bounds stored error messages.
const maxErrorLen = 4000

func newRecord(key domain.OrderKey, hash string, now time.Time) domain.LedgerRecord {
	return domain.LedgerRecord{
		Key:                 key,
		Status:              domain.StatusProcessing,
		PayloadHash:         hash,
		ProcessingStartedAt: now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// decide applies the begin decision table to an existing record and
// reports whether rec was changed and must be written back.
func decide(rec *domain.LedgerRecord, hash string, now time.Time, lease time.Duration) (domain.BeginCode, bool) {
	if rec.PayloadHash != hash {
		return domain.ConflictHash, false
	}

	switch rec.Status {
	case domain.StatusCreated:
		return domain.DuplicateCreated, false
	case domain.StatusUnconfirmed:
		return domain.Unconfirmed, false
	case domain.StatusProcessing:
		if lease <= 0 || now.Sub(rec.ProcessingStartedAt) < lease {
			return domain.InProgress, false
		}
		restart(rec, now)
		return domain.Started, true
	case domain.StatusFailed:
		restart(rec, now)
		return domain.Started, true
	default:
		return domain.InProgress, false
	}
}

func restart(rec *domain.LedgerRecord, now time.Time) {
	rec.Status = domain.StatusProcessing
	rec.ErrorMessage = ""
	rec.ProcessingStartedAt = now
	rec.UpdatedAt = now
}

func applyCreated(rec *domain.LedgerRecord, docID, docNumber int, now time.Time) (bool, error) {
	switch rec.Status {
	case domain.StatusProcessing:
	case domain.StatusCreated:
		if sameInt(rec.DocID, docID) && sameInt(rec.DocNumber, docNumber) {
			return false, nil
		}
		return false, transitionErr(rec, domain.StatusCreated)
	default:
		return false, transitionErr(rec, domain.StatusCreated)
	}
	rec.Status = domain.StatusCreated
	rec.DocID = domain.IntPtr(docID)
	rec.DocNumber = domain.IntPtr(docNumber)
	rec.ErrorMessage = ""
	rec.UpdatedAt = now
	return true, nil
}

func applyFailed(rec *domain.LedgerRecord, message string, now time.Time) (bool, error) {
	if rec.Status != domain.StatusProcessing {
		return false, transitionErr(rec, domain.StatusFailed)
	}
	rec.Status = domain.StatusFailed
	rec.ErrorMessage = truncate(message)
	rec.UpdatedAt = now
	return true, nil
}

func applyUnconfirmed(rec *domain.LedgerRecord, docID *int, message string, now time.Time) (bool, error) {
	if rec.Status != domain.StatusProcessing && rec.Status != domain.StatusCreated {
		return false, transitionErr(rec, domain.StatusUnconfirmed)
	}
	if rec.Status == domain.StatusCreated {
		// The create was already recorded; nothing is unconfirmed.
		return false, nil
	}
	rec.Status = domain.StatusUnconfirmed
	rec.DocID = docID
	rec.ErrorMessage = truncate(message)
	rec.UpdatedAt = now
	return true, nil
}

// applyReconcile resolves an UNCONFIRMED record: with both ids it becomes
// CREATED, with none it becomes FAILED so the order can be resubmitted.
func applyReconcile(rec *domain.LedgerRecord, docID, docNumber *int, now time.Time) error {
	if rec.Status != domain.StatusUnconfirmed {
		return transitionErr(rec, "reconciled")
	}
	switch {
	case docID != nil && docNumber != nil:
		rec.Status = domain.StatusCreated
		rec.DocID = domain.IntPtr(*docID)
		rec.DocNumber = domain.IntPtr(*docNumber)
		rec.ErrorMessage = ""
	case docID == nil && docNumber == nil:
		rec.Status = domain.StatusFailed
		rec.DocID = nil
		rec.DocNumber = nil
		rec.ErrorMessage = "reconciled: not present in ERP"
	default:
		return fmt.Errorf("%w: docId and docNumber must be given together", ErrInvalidTransition)
	}
	rec.UpdatedAt = now
	return nil
}

func transitionErr(rec *domain.LedgerRecord, to domain.Status) error {
	return fmt.Errorf("%w: %s is %s, cannot become %s", ErrInvalidTransition, rec.Key, rec.Status, to)
}

func sameInt(p *int, v int) bool { return p != nil && *p == v }

// truncate bounds s to maxErrorLen bytes of valid UTF-8. Postgres rejects
// invalid sequences in TEXT, and a rejected MarkFailed would strand the key.
func truncate(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if len(s) <= maxErrorLen {
		return s
	}
	cut := maxErrorLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
