package anchor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/scampozano/deepurge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*LocalLedger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "anchor_ledger.json")
	l, err := NewLocalLedger(path)
	require.NoError(t, err)
	return l, path
}

func TestLocalLedger_AnchorAndVerify(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	rec, err := l.Anchor(ctx, "2026-02-09", "aabbcc")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09", rec.PeriodID)
	assert.Equal(t, SourceLocalLedger, rec.Source)
	assert.False(t, rec.AnchoredAt.IsZero())

	v, err := l.Verify(ctx, "2026-02-09", "aabbcc")
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, SourceLocalLedger, v.Source)
	assert.Empty(t, v.Reason)
}

func TestLocalLedger_SecondAnchorRejected(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Anchor(ctx, "2026-02-09", "h1")
	require.NoError(t, err)

	_, err = l.Anchor(ctx, "2026-02-09", "h1")
	assert.ErrorIs(t, err, common.ErrAlreadyAnchored)

	// even with a different hash the period stays write-once
	_, err = l.Anchor(ctx, "2026-02-09", "h2")
	assert.ErrorIs(t, err, common.ErrAlreadyAnchored)
}

func TestLocalLedger_VerifyMismatch(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Anchor(ctx, "2026-02-09", "deadbeef")
	require.NoError(t, err)

	v, err := l.Verify(ctx, "2026-02-09", "deadbeeF")
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, ReasonHashMismatch, v.Reason)
	assert.Equal(t, "deadbeef", v.StoredHash)
}

func TestLocalLedger_VerifyNoRecord(t *testing.T) {
	l, _ := newTestLedger(t)

	v, err := l.Verify(context.Background(), "1999-01-01", "anything")
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Equal(t, ReasonNoRecord, v.Reason)
}

func TestLocalLedger_PersistsAcrossReopen(t *testing.T) {
	l, path := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Anchor(ctx, "2026-02-09", "cafe")
	require.NoError(t, err)

	reopened, err := NewLocalLedger(path)
	require.NoError(t, err)

	v, err := reopened.Verify(ctx, "2026-02-09", "cafe")
	require.NoError(t, err)
	assert.True(t, v.Verified)

	_, err = reopened.Anchor(ctx, "2026-02-09", "cafe")
	assert.ErrorIs(t, err, common.ErrAlreadyAnchored)
}

func TestLocalLedger_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchor_ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o660))

	_, err := NewLocalLedger(path)
	assert.Error(t, err, "a corrupt integrity journal must not be silently reset")
}

func TestLocalLedger_JournalShapeOnDisk(t *testing.T) {
	l, path := newTestLedger(t)

	_, err := l.Anchor(context.Background(), "2026-02-09", "abc123")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var j struct {
		Anchors []Record `json:"anchors"`
	}
	require.NoError(t, json.Unmarshal(data, &j))
	require.Len(t, j.Anchors, 1)
	assert.Equal(t, "abc123", j.Anchors[0].RootHash)
}

func TestLocalLedger_List(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	for _, p := range []string{"2026-02-01", "2026-02-02", "2026-02-03"} {
		_, err := l.Anchor(ctx, p, "h-"+p)
		require.NoError(t, err)
	}

	all, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	tail, err := l.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "2026-02-02", tail[0].PeriodID)
	assert.Equal(t, "2026-02-03", tail[1].PeriodID)
}

func TestLocalLedger_ConcurrentAnchors(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Anchor(ctx, "2026-02-09", "h")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, common.ErrAlreadyAnchored):
			dup++
		}
	}
	assert.Equal(t, 1, ok, "exactly one concurrent anchor may win")
	assert.Equal(t, len(errs)-1, dup)
}
