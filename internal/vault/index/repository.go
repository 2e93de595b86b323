// Package index maintains the local convenience index of completed
// uploads. The index is a listing aid, not a capability store: losing it
// orphans nothing, since every issued token remains self-contained.
package index

import (
	"context"
	"time"
)

// Record kinds.
const (
	KindObject = "object"
	KindFolder = "folder"
)

// Record describes one completed upload.
type Record struct {
	ID         string
	CreatedAt  time.Time
	Name       string
	ObjectID   string
	Key        []byte
	Nonce      []byte
	PlainSize  int64
	CipherSize int64
	Digest     string
	Kind       string
}

// Repository persists index records. Insert happens once per completed
// upload; concurrent inserts must not interleave partial records: the
// SQLite implementation relies on single-statement writes for that.
type Repository interface {
	Insert(ctx context.Context, r *Record) error
	GetAll(ctx context.Context) ([]*Record, error)
	GetByObjectID(ctx context.Context, objectID string) (*Record, error)
}
