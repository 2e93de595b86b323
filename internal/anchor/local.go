package anchor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/scampozano/deepurge/internal/common"
)

// LocalLedger is the file-backed registry: an append-only JSON journal,
// write-once per period id. It needs only local file-write access.
type LocalLedger struct {
	mu      sync.Mutex
	path    string
	anchors []Record
}

type journal struct {
	Anchors []Record `json:"anchors"`
}

// NewLocalLedger opens (or initializes) the journal at path. A missing
// file means an empty ledger; a corrupt file is an error rather than a
// silent reset, since the journal is the integrity record itself.
func NewLocalLedger(path string) (*LocalLedger, error) {
	l := &LocalLedger{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var j journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	l.anchors = j.Anchors
	return l, nil
}

func (l *LocalLedger) Anchor(_ context.Context, periodID, rootHash string) (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.anchors {
		if r.PeriodID == periodID {
			return nil, fmt.Errorf("period %s: %w", periodID, common.ErrAlreadyAnchored)
		}
	}

	rec := Record{
		PeriodID:   periodID,
		RootHash:   rootHash,
		AnchoredAt: time.Now().UTC(),
		Source:     SourceLocalLedger,
	}

	l.anchors = append(l.anchors, rec)
	if err := l.save(); err != nil {
		l.anchors = l.anchors[:len(l.anchors)-1]
		return nil, err
	}

	return &rec, nil
}

func (l *LocalLedger) Verify(_ context.Context, periodID, rootHash string) (*Verification, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range l.anchors {
		if r.PeriodID == periodID {
			if r.RootHash == rootHash {
				return &Verification{Verified: true, Source: SourceLocalLedger, StoredHash: r.RootHash}, nil
			}
			return &Verification{
				Verified:   false,
				Source:     SourceLocalLedger,
				Reason:     ReasonHashMismatch,
				StoredHash: r.RootHash,
			}, nil
		}
	}

	return &Verification{Verified: false, Source: SourceLocalLedger, Reason: ReasonNoRecord}, nil
}

func (l *LocalLedger) List(_ context.Context, limit int) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.anchors)
	if limit > 0 && limit < n {
		n = limit
	}

	// newest last in the journal; return the tail
	out := make([]Record, n)
	copy(out, l.anchors[len(l.anchors)-n:])
	return out, nil
}

// save writes the journal through a temp file and rename, so a crash can
// never leave a half-written ledger behind.
func (l *LocalLedger) save() error {
	data, err := json.MarshalIndent(journal{Anchors: l.anchors}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
