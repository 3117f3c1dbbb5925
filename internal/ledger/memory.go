package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

// Memory is a process-local Store for tests and single-node sandboxes.
type Memory struct {
	mu      sync.Mutex
	records map[domain.OrderKey]domain.LedgerRecord
	lease   time.Duration
	now     func() time.Time
}

func NewMemory(lease time.Duration) *Memory {
	return &Memory{
		records: make(map[domain.OrderKey]domain.LedgerRecord),
		lease:   lease,
		now:     time.Now,
	}
}

func (m *Memory) TryBegin(ctx context.Context, key domain.OrderKey, payloadHash string) (domain.BeginResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BeginResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	rec, ok := m.records[key]
	if !ok {
		rec = newRecord(key, payloadHash, now)
		m.records[key] = rec
		return domain.BeginResult{Code: domain.Started, Record: rec}, nil
	}

	code, changed := decide(&rec, payloadHash, now, m.lease)
	if changed {
		m.records[key] = rec
	}
	return domain.BeginResult{Code: code, Record: rec}, nil
}

func (m *Memory) mutate(key domain.OrderKey, fn func(rec *domain.LedgerRecord, now time.Time) error) (domain.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return domain.LedgerRecord{}, domain.ErrNotFound
	}
	if err := fn(&rec, m.now().UTC()); err != nil {
		return domain.LedgerRecord{}, err
	}
	m.records[key] = rec
	return rec, nil
}

func (m *Memory) MarkCreated(_ context.Context, key domain.OrderKey, docID, docNumber int) error {
	_, err := m.mutate(key, func(rec *domain.LedgerRecord, now time.Time) error {
		_, err := applyCreated(rec, docID, docNumber, now)
		return err
	})
	return err
}

func (m *Memory) MarkFailed(_ context.Context, key domain.OrderKey, message string) error {
	_, err := m.mutate(key, func(rec *domain.LedgerRecord, now time.Time) error {
		_, err := applyFailed(rec, message, now)
		return err
	})
	return err
}

func (m *Memory) MarkUnconfirmed(_ context.Context, key domain.OrderKey, docID *int, message string) error {
	_, err := m.mutate(key, func(rec *domain.LedgerRecord, now time.Time) error {
		_, err := applyUnconfirmed(rec, docID, message, now)
		return err
	})
	return err
}

func (m *Memory) Reconcile(_ context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error) {
	return m.mutate(key, func(rec *domain.LedgerRecord, now time.Time) error {
		return applyReconcile(rec, docID, docNumber, now)
	})
}

func (m *Memory) GetStatus(_ context.Context, key domain.OrderKey) (domain.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return domain.LedgerRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (m *Memory) List(_ context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error) {
	m.mu.Lock()
	out := make([]domain.LedgerRecord, 0)
	for _, rec := range m.records {
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
