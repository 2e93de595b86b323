package anchor

import (
	"context"
	"fmt"
	"time"

	"github.com/scampozano/deepurge/internal/common"
)

// Ledger is the collaborator interface the on-chain backend needs from the
// JSON-RPC client: one write call that the ledger rejects for non-owners
// and duplicate keys, and one read call returning the stored hash.
type Ledger interface {
	AnchorReport(ctx context.Context, periodID, rootHash string) (txDigest string, err error)
	RegistryEntry(ctx context.Context, periodID string) (storedHash string, found bool, err error)
}

// ChainRegistry anchors against an external on-chain ledger. The ledger is
// the final arbiter of per-period uniqueness and of write authorization;
// this registry only pre-checks existence and passes ledger errors through
// unchanged.
type ChainRegistry struct {
	ledger Ledger
}

func NewChainRegistry(ledger Ledger) *ChainRegistry {
	return &ChainRegistry{ledger: ledger}
}

func (r *ChainRegistry) Anchor(ctx context.Context, periodID, rootHash string) (*Record, error) {
	// Existence check first so a duplicate is reported without spending
	// gas. A race with another writer is possible; the ledger settles it.
	_, found, err := r.ledger.RegistryEntry(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("period %s: %w", periodID, common.ErrAlreadyAnchored)
	}

	digest, err := r.ledger.AnchorReport(ctx, periodID, rootHash)
	if err != nil {
		return nil, err
	}

	return &Record{
		PeriodID:   periodID,
		RootHash:   rootHash,
		AnchoredAt: time.Now().UTC(),
		Source:     SourceOnChain,
		TxDigest:   digest,
	}, nil
}

func (r *ChainRegistry) Verify(ctx context.Context, periodID, rootHash string) (*Verification, error) {
	stored, found, err := r.ledger.RegistryEntry(ctx, periodID)
	if err != nil {
		return nil, err
	}

	if !found {
		return &Verification{Verified: false, Source: SourceOnChain, Reason: ReasonNoRecord}, nil
	}

	if stored != rootHash {
		return &Verification{
			Verified:   false,
			Source:     SourceOnChain,
			Reason:     ReasonHashMismatch,
			StoredHash: stored,
		}, nil
	}

	return &Verification{Verified: true, Source: SourceOnChain, StoredHash: stored}, nil
}

// List is not supported by the on-chain backend: the registry object only
// exposes keyed lookups through the RPC surface this client uses.
func (r *ChainRegistry) List(ctx context.Context, limit int) ([]Record, error) {
	return nil, fmt.Errorf("listing on-chain anchors: %w", common.ErrInternal)
}
