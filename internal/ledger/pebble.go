package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

const (
	pebblePrefix = "ledger/"
	stripes      = 64
)

// Pebble is an embedded single-node Store. Writes on one key are
// serialized by a striped mutex; distinct keys rarely contend.
type Pebble struct {
	db     *pebble.DB
	locks  [stripes]sync.Mutex
	lease  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func OpenPebble(dir string, lease time.Duration, logger *zap.Logger) (*Pebble, error) {
	return openPebble(filepath.Clean(dir), &pebble.Options{}, lease, logger)
}

// OpenPebbleInMemory backs the store with an in-memory filesystem.
func OpenPebbleInMemory(lease time.Duration, logger *zap.Logger) (*Pebble, error) {
	return openPebble("", &pebble.Options{FS: vfs.NewMem()}, lease, logger)
}

func openPebble(dir string, opts *pebble.Options, lease time.Duration, logger *zap.Logger) (*Pebble, error) {
	d, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &Pebble{db: d, lease: lease, logger: logger, now: time.Now}, nil
}

func (p *Pebble) Close() error { return p.db.Close() }

func (p *Pebble) Ping(context.Context) error {
	_, closer, err := p.db.Get([]byte(pebblePrefix))
	if err == nil {
		return closer.Close()
	}
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	return err
}

func pebbleKey(key domain.OrderKey) []byte {
	return []byte(pebblePrefix + key.ExternalOrderID + "\x00" + key.InstanceID)
}

func (p *Pebble) lock(key domain.OrderKey) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write(pebbleKey(key))
	return &p.locks[h.Sum32()%stripes]
}

func (p *Pebble) load(key domain.OrderKey) (domain.LedgerRecord, bool, error) {
	v, closer, err := p.db.Get(pebbleKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return domain.LedgerRecord{}, false, nil
	}
	if err != nil {
		return domain.LedgerRecord{}, false, err
	}
	defer closer.Close()

	var rec domain.LedgerRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return domain.LedgerRecord{}, false, fmt.Errorf("decode ledger record %s: %w", key, err)
	}
	return rec, true, nil
}

func (p *Pebble) store(rec domain.LedgerRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.db.Set(pebbleKey(rec.Key), b, pebble.Sync)
}

func (p *Pebble) TryBegin(ctx context.Context, key domain.OrderKey, payloadHash string) (domain.BeginResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BeginResult{}, err
	}
	mu := p.lock(key)
	mu.Lock()
	defer mu.Unlock()

	now := p.now().UTC()
	rec, ok, err := p.load(key)
	if err != nil {
		return domain.BeginResult{}, err
	}
	if !ok {
		rec = newRecord(key, payloadHash, now)
		if err := p.store(rec); err != nil {
			return domain.BeginResult{}, err
		}
		return domain.BeginResult{Code: domain.Started, Record: rec}, nil
	}

	code, changed := decide(&rec, payloadHash, now, p.lease)
	if changed {
		if err := p.store(rec); err != nil {
			return domain.BeginResult{}, err
		}
	}
	return domain.BeginResult{Code: code, Record: rec}, nil
}

func (p *Pebble) mutate(key domain.OrderKey, fn func(rec *domain.LedgerRecord, now time.Time) (bool, error)) (domain.LedgerRecord, error) {
	mu := p.lock(key)
	mu.Lock()
	defer mu.Unlock()

	rec, ok, err := p.load(key)
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	if !ok {
		return domain.LedgerRecord{}, domain.ErrNotFound
	}
	changed, err := fn(&rec, p.now().UTC())
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	if changed {
		if err := p.store(rec); err != nil {
			return domain.LedgerRecord{}, err
		}
	}
	return rec, nil
}

func (p *Pebble) MarkCreated(_ context.Context, key domain.OrderKey, docID, docNumber int) error {
	_, err := p.mutate(key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyCreated(rec, docID, docNumber, now)
	})
	return err
}

func (p *Pebble) MarkFailed(_ context.Context, key domain.OrderKey, message string) error {
	_, err := p.mutate(key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyFailed(rec, message, now)
	})
	return err
}

func (p *Pebble) MarkUnconfirmed(_ context.Context, key domain.OrderKey, docID *int, message string) error {
	_, err := p.mutate(key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyUnconfirmed(rec, docID, message, now)
	})
	return err
}

func (p *Pebble) Reconcile(_ context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error) {
	rec, err := p.mutate(key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return true, applyReconcile(rec, docID, docNumber, now)
	})
	if err == nil {
		p.logger.Info("ledger record reconciled",
			zap.String("external_order_id", key.ExternalOrderID),
			zap.String("instance_id", key.InstanceID),
			zap.String("status", string(rec.Status)),
		)
	}
	return rec, err
}

func (p *Pebble) GetStatus(_ context.Context, key domain.OrderKey) (domain.LedgerRecord, error) {
	rec, ok, err := p.load(key)
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	if !ok {
		return domain.LedgerRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (p *Pebble) List(ctx context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebblePrefix),
		UpperBound: []byte("ledger0"),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []domain.LedgerRecord
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec domain.LedgerRecord
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			p.logger.Warn("skipping undecodable ledger record", zap.ByteString("key", it.Key()), zap.Error(err))
			continue
		}
		if status == "" || rec.Status == status {
			out = append(out, rec)
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
