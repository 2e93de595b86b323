// Package anchor implements the write-once integrity-anchor registry:
// a mapping of period id to root hash with two interchangeable backends,
// an on-chain ledger and a local append-only journal.
//
// A period moves from unanchored to anchored exactly once; there is no
// further transition. Backend selection is static startup configuration,
// never runtime negotiation.
package anchor

import (
	"context"
	"time"
)

// Backend sources recorded on anchors and verifications.
const (
	SourceOnChain     = "on_chain"
	SourceLocalLedger = "local_ledger"
)

// Verification reasons for a failed check.
const (
	ReasonNoRecord     = "no record for period"
	ReasonHashMismatch = "hash mismatch"
)

// Record is one registered anchor.
type Record struct {
	PeriodID   string    `json:"period_id"`
	RootHash   string    `json:"root_hash"`
	AnchoredAt time.Time `json:"anchored_at"`
	Source     string    `json:"source"`
	TxDigest   string    `json:"tx_digest,omitempty"`
}

// Verification is the outcome of comparing a claimed root hash against the
// registered one. Verify never has side effects.
type Verification struct {
	Verified   bool   `json:"verified"`
	Source     string `json:"source"`
	Reason     string `json:"reason,omitempty"`
	StoredHash string `json:"stored_hash,omitempty"`
}

// Registry is implemented identically by both backends so callers stay
// backend-agnostic.
//
// Anchor returns common.ErrAlreadyAnchored if the period already has a
// record and common.ErrUnauthorized when the ledger rejects the writer.
// Transport failures pass through as common.ErrStorageUnavailable; the
// registry adds no timeout of its own.
type Registry interface {
	Anchor(ctx context.Context, periodID, rootHash string) (*Record, error)
	Verify(ctx context.Context, periodID, rootHash string) (*Verification, error)
	List(ctx context.Context, limit int) ([]Record, error)
}
