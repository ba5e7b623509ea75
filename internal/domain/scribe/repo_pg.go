package scribe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medscribe/scribe/internal/platform/db"
)

type historyRepoPG struct {
	pool  *pgxpool.Pool
	table string
}

// NewHistoryRepoPG returns a repository over table, creating the table if it
// does not exist yet.
func NewHistoryRepoPG(ctx context.Context, pool *pgxpool.Pool, table string) (HistoryRepository, error) {
	r := &historyRepoPG{pool: pool, table: pgx.Identifier{table}.Sanitize()}
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *historyRepoPG) ensureTable(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			patient_id TEXT NOT NULL,
			transcript TEXT NOT NULL,
			soap_note TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)`, r.table))
	if err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

const historyCols = `id, patient_id, transcript, soap_note, recorded_at`

func (r *historyRepoPG) scanNote(row pgx.Row) (*NoteRecord, error) {
	var (
		n  NoteRecord
		id uuid.UUID
	)
	if err := row.Scan(&id, &n.PatientID, &n.Transcript, &n.SOAPNote, &n.Timestamp); err != nil {
		return nil, err
	}
	n.ID = id.String()
	n.Timestamp = n.Timestamp.UTC()
	return &n, nil
}

func (r *historyRepoPG) Append(ctx context.Context, n *NoteRecord) error {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `INSERT INTO `+r.table+` (`+historyCols+`) VALUES ($1,$2,$3,$4,$5)`,
		id, n.PatientID, n.Transcript, n.SOAPNote, n.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	n.ID = id.String()
	return nil
}

func (r *historyRepoPG) AppendMany(ctx context.Context, ns []*NoteRecord) error {
	if len(ns) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(ns))
	batch := &pgx.Batch{}
	for i, n := range ns {
		ids[i] = uuid.New()
		batch.Queue(`INSERT INTO `+r.table+` (`+historyCols+`) VALUES ($1,$2,$3,$4,$5)`,
			ids[i], n.PatientID, n.Transcript, n.SOAPNote, n.Timestamp.UTC())
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert notes: %w", err)
	}
	for i, n := range ns {
		n.ID = ids[i].String()
	}
	return nil
}

func (r *historyRepoPG) ListAll(ctx context.Context) ([]*NoteRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+historyCols+` FROM `+r.table+` ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()
	items := []*NoteRecord{}
	for rows.Next() {
		n, err := r.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return items, nil
}

func (r *historyRepoPG) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+r.table).Scan(&total); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return total, nil
}

func (r *historyRepoPG) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Stats exposes pool statistics for the health endpoint.
func (r *historyRepoPG) Stats() *db.PoolStats {
	return db.GetPoolStats(r.pool)
}

func (r *historyRepoPG) Close(_ context.Context) error {
	r.pool.Close()
	return nil
}
