// Package hashx implements content fingerprinting and ordered root-hash
// aggregation for the vault and the anchor registry.
//
// Aggregation is a single SHA-256 pass over the concatenated digest bytes
// in sequence order, not a Merkle tree: no inclusion proofs are required,
// and two implementations agree as long as they sort entries by relative
// path before aggregating.
package hashx

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Size is the digest width in bytes.
const Size = sha256.Size

// Digest is a fixed-width SHA-256 content fingerprint.
type Digest [Size]byte

// Fingerprint returns the SHA-256 digest of b.
func Fingerprint(b []byte) Digest {
	return sha256.Sum256(b)
}

// Aggregate reduces an ordered sequence of digests to a single root digest.
// It is deterministic and order-sensitive: the same digests in the same
// order always yield the same root, and reordering changes it. An empty
// sequence aggregates to the digest of empty input.
func Aggregate(digests []Digest) Digest {
	h := sha256.New()
	for _, d := range digests {
		h.Write(d[:])
	}

	var root Digest
	copy(root[:], h.Sum(nil))
	return root
}

// FingerprintCanonical hashes an arbitrary value through its canonical JSON
// form: object keys sorted, no insignificant whitespace. Two structurally
// equal reports always produce the same digest regardless of field order.
func FingerprintCanonical(v any) (Digest, error) {
	canonical, err := canonicalJSON(v)
	if err != nil {
		return Digest{}, fmt.Errorf("canonicalize: %w", err)
	}
	return Fingerprint(canonical), nil
}

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest decodes a 64-character hex string into a Digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(b) != Size {
		return d, fmt.Errorf("invalid digest length %d", len(b))
	}
	copy(d[:], b)
	return d, nil
}

// canonicalJSON renders v as compact JSON with all object keys sorted.
// The round-trip through any-typed values turns struct fields into map
// keys, which encoding/json emits in sorted order. HTML escaping is
// disabled so digests line up with canonical encoders that keep <, >
// and & literal.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := marshalNoEscape(v)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	return marshalNoEscape(decoded)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encode appends a newline, which is not part of the canonical form
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
