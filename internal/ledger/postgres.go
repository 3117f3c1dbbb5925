package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const columns = `external_order_id, instance_id, status, payload_hash, doc_id, doc_number,
	COALESCE(error_message, ''), processing_started_at, created_at, updated_at`

// Postgres keeps the ledger in one table. TryBegin runs the decision table
// inside a transaction holding a row lock on the key only.
type Postgres struct {
	pool   *pgxpool.Pool
	cfg    config.Ledger
	logger *zap.Logger
	now    func() time.Time
}

func NewPostgres(pool *pgxpool.Pool, cfg config.Ledger, logger *zap.Logger) *Postgres {
	return &Postgres{pool: pool, cfg: cfg, logger: logger, now: time.Now}
}

func (s *Postgres) qt() string {
	return pgx.Identifier{s.cfg.Schema, s.cfg.Table}.Sanitize()
}

// Migrate creates the schema and ledger table when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	ddl := strings.NewReplacer(
		"{{schema}}", pgx.Identifier{s.cfg.Schema}.Sanitize(),
		"{{table}}", s.qt(),
		"{{name}}", s.cfg.Table,
	).Replace(schemaSQL)

	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	s.logger.Info("ledger schema ready", zap.String("table", s.qt()))
	return nil
}

func (s *Postgres) TryBegin(ctx context.Context, key domain.OrderKey, payloadHash string) (domain.BeginResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.BeginResult{}, err
	}
	defer tx.Rollback(ctx)

	now := s.now().UTC()
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (external_order_id, instance_id, status, payload_hash, processing_started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5, $5)
		ON CONFLICT (external_order_id, instance_id) DO NOTHING
	`, s.qt()), key.ExternalOrderID, key.InstanceID, string(domain.StatusProcessing), payloadHash, now)
	if err != nil {
		return domain.BeginResult{}, err
	}

	if tag.RowsAffected() == 1 {
		if err := tx.Commit(ctx); err != nil {
			return domain.BeginResult{}, err
		}
		return domain.BeginResult{Code: domain.Started, Record: newRecord(key, payloadHash, now)}, nil
	}

	rec, err := scanRecord(tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE external_order_id = $1 AND instance_id = $2
		FOR UPDATE
	`, columns, s.qt()), key.ExternalOrderID, key.InstanceID))
	if err != nil {
		return domain.BeginResult{}, err
	}

	code, changed := decide(&rec, payloadHash, now, s.cfg.Lease)
	if changed {
		if err := s.write(ctx, tx, rec); err != nil {
			return domain.BeginResult{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.BeginResult{}, err
	}

	if code == domain.Started && s.cfg.Lease > 0 {
		s.logger.Debug("ledger record restarted",
			zap.String("external_order_id", key.ExternalOrderID),
			zap.String("instance_id", key.InstanceID),
		)
	}
	return domain.BeginResult{Code: code, Record: rec}, nil
}

func (s *Postgres) write(ctx context.Context, tx pgx.Tx, rec domain.LedgerRecord) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET
		  status = $3,
		  doc_id = $4,
		  doc_number = $5,
		  error_message = NULLIF($6, ''),
		  processing_started_at = $7,
		  updated_at = $8
		WHERE external_order_id = $1 AND instance_id = $2
	`, s.qt()),
		rec.Key.ExternalOrderID, rec.Key.InstanceID, string(rec.Status), rec.DocID, rec.DocNumber,
		rec.ErrorMessage, rec.ProcessingStartedAt, rec.UpdatedAt,
	)
	return err
}

// mutate loads the record under a row lock, applies fn and writes it back.
func (s *Postgres) mutate(ctx context.Context, key domain.OrderKey, fn func(rec *domain.LedgerRecord, now time.Time) (bool, error)) (domain.LedgerRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	defer tx.Rollback(ctx)

	rec, err := scanRecord(tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE external_order_id = $1 AND instance_id = $2
		FOR UPDATE
	`, columns, s.qt()), key.ExternalOrderID, key.InstanceID))
	if err != nil {
		return domain.LedgerRecord{}, err
	}

	changed, err := fn(&rec, s.now().UTC())
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	if changed {
		if err := s.write(ctx, tx, rec); err != nil {
			return domain.LedgerRecord{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.LedgerRecord{}, err
	}
	return rec, nil
}

func (s *Postgres) MarkCreated(ctx context.Context, key domain.OrderKey, docID, docNumber int) error {
	_, err := s.mutate(ctx, key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyCreated(rec, docID, docNumber, now)
	})
	return err
}

func (s *Postgres) MarkFailed(ctx context.Context, key domain.OrderKey, message string) error {
	_, err := s.mutate(ctx, key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyFailed(rec, message, now)
	})
	return err
}

func (s *Postgres) MarkUnconfirmed(ctx context.Context, key domain.OrderKey, docID *int, message string) error {
	_, err := s.mutate(ctx, key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return applyUnconfirmed(rec, docID, message, now)
	})
	return err
}

func (s *Postgres) Reconcile(ctx context.Context, key domain.OrderKey, docID, docNumber *int) (domain.LedgerRecord, error) {
	return s.mutate(ctx, key, func(rec *domain.LedgerRecord, now time.Time) (bool, error) {
		return true, applyReconcile(rec, docID, docNumber, now)
	})
}

func (s *Postgres) GetStatus(ctx context.Context, key domain.OrderKey) (domain.LedgerRecord, error) {
	return scanRecord(s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE external_order_id = $1 AND instance_id = $2
	`, columns, s.qt()), key.ExternalOrderID, key.InstanceID))
}

func (s *Postgres) List(ctx context.Context, status domain.Status, limit int) ([]domain.LedgerRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE ($1 = '' OR status = $1)
		ORDER BY updated_at DESC
		LIMIT $2
	`, columns, s.qt()), string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Postgres) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close is a no-op; the pool is owned by the caller.
func (s *Postgres) Close() error { return nil }

func scanRecord(row pgx.Row) (domain.LedgerRecord, error) {
	var (
		rec    domain.LedgerRecord
		status string
	)
	err := row.Scan(
		&rec.Key.ExternalOrderID, &rec.Key.InstanceID, &status, &rec.PayloadHash,
		&rec.DocID, &rec.DocNumber, &rec.ErrorMessage,
		&rec.ProcessingStartedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LedgerRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.LedgerRecord{}, err
	}
	rec.Status = domain.Status(status)
	return rec, nil
}
