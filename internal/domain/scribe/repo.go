package scribe

import (
	"context"
)

// HistoryRepository is the append-only log of generated notes.
type HistoryRepository interface {
	// Append inserts r and sets r.ID to the store-assigned identifier.
	Append(ctx context.Context, r *NoteRecord) error
	AppendMany(ctx context.Context, rs []*NoteRecord) error
	// ListAll returns every record, most recent first.
	ListAll(ctx context.Context) ([]*NoteRecord, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
