package hashx

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_KnownVector(t *testing.T) {
	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	assert.Equal(t, want, Fingerprint([]byte("hello")).String())
}

func TestAggregate_DeterministicAndOrderSensitive(t *testing.T) {
	a := Fingerprint([]byte("a"))
	b := Fingerprint([]byte("b"))
	c := Fingerprint([]byte("c"))

	seq := []Digest{a, b, c}
	rev := []Digest{c, b, a}

	assert.Equal(t, Aggregate(seq), Aggregate(seq))
	assert.NotEqual(t, Aggregate(seq), Aggregate(rev), "reordering must change the root")
}

func TestAggregate_MatchesManualChain(t *testing.T) {
	a := Fingerprint([]byte("a"))
	b := Fingerprint([]byte("b"))

	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])

	var want Digest
	copy(want[:], h.Sum(nil))

	assert.Equal(t, want, Aggregate([]Digest{a, b}))
}

func TestAggregate_EmptySequenceIsEmptyHash(t *testing.T) {
	// sha256("")
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	assert.Equal(t, want, Aggregate(nil).String())
	assert.Equal(t, want, Aggregate([]Digest{}).String())
}

func TestAggregate_SingleElement(t *testing.T) {
	a := Fingerprint([]byte("only"))
	want := Fingerprint(a[:])
	assert.Equal(t, want, Aggregate([]Digest{a}))
}

func TestParseDigest_RoundTrip(t *testing.T) {
	d := Fingerprint([]byte("round trip"))

	got, err := ParseDigest(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestParseDigest_Invalid(t *testing.T) {
	_, err := ParseDigest("zzzz")
	assert.Error(t, err)

	_, err = ParseDigest("abcd")
	assert.Error(t, err, "hex of wrong length must be rejected")
}

func TestFingerprintCanonical_FieldOrderIndependent(t *testing.T) {
	d1, err := FingerprintCanonical(map[string]any{
		"date":        "2026-02-12",
		"total_files": 42,
		"categories":  map[string]any{"Documents": 15, "Images": 12},
	})
	require.NoError(t, err)

	d2, err := FingerprintCanonical(map[string]any{
		"categories":  map[string]any{"Images": 12, "Documents": 15},
		"total_files": 42,
		"date":        "2026-02-12",
	})
	require.NoError(t, err)

	assert.Equal(t, d1, d2)

	d3, err := FingerprintCanonical(map[string]any{
		"date":        "2026-02-13",
		"total_files": 42,
		"categories":  map[string]any{"Documents": 15, "Images": 12},
	})
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)
}

func TestFingerprintCanonical_StructAndMapAgree(t *testing.T) {
	type report struct {
		Date       string `json:"date"`
		TotalFiles int    `json:"total_files"`
	}

	d1, err := FingerprintCanonical(report{Date: "2026-02-12", TotalFiles: 3})
	require.NoError(t, err)

	d2, err := FingerprintCanonical(map[string]any{"total_files": 3, "date": "2026-02-12"})
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestFingerprintCanonical_NoHTMLEscaping(t *testing.T) {
	d, err := FingerprintCanonical(map[string]any{"tag": "<a&b>"})
	require.NoError(t, err)

	// the canonical form keeps <, > and & literal
	want := Fingerprint([]byte(`{"tag":"<a&b>"}`))
	assert.Equal(t, want, d)
}

func TestFingerprintCanonical_KnownVector(t *testing.T) {
	d, err := FingerprintCanonical(map[string]any{
		"total_files": 2,
		"date":        "2026-02-12",
	})
	require.NoError(t, err)

	want := Fingerprint([]byte(`{"date":"2026-02-12","total_files":2}`))
	assert.Equal(t, want, d)
}
