package vault

import (
	"fmt"
	"strings"

	"github.com/scampozano/deepurge/internal/hashx"
)

// ManifestEntry locates and decrypts one file of a synced folder. The
// digest is the plaintext fingerprint, which doubles as the file's
// contribution to the folder's root hash.
type ManifestEntry struct {
	RelativePath string `json:"relative_path"`
	ObjectID     string `json:"object_id"`
	DigestHex    string `json:"digest_hex"`
	NonceHex     string `json:"nonce_hex"`
	Size         int64  `json:"size"`
}

// FolderManifest is the batch unit for directory sync. Entries are ordered
// lexicographically by relative path; the root hash aggregates the
// per-file digests in exactly that order.
//
// The manifest is complete only when every entry succeeded. It is stored
// encrypted under the folder's shared key, so the blob store learns
// neither file names nor per-file digests.
type FolderManifest struct {
	Type       string          `json:"type"`
	FolderName string          `json:"folder_name"`
	FileCount  int             `json:"file_count"`
	RootHash   string          `json:"root_hash"`
	Entries    []ManifestEntry `json:"files"`
}

// ManifestType tags the manifest container format.
const ManifestType = "vault_folder"

// ComputeRootHash re-derives the root hash from the manifest's entries in
// their stored order. Verification recomputes this independently and
// compares it with the RootHash field.
func (m *FolderManifest) ComputeRootHash() (hashx.Digest, error) {
	digests := make([]hashx.Digest, len(m.Entries))
	for i, e := range m.Entries {
		d, err := hashx.ParseDigest(e.DigestHex)
		if err != nil {
			return hashx.Digest{}, fmt.Errorf("entry %s: %w", e.RelativePath, err)
		}
		digests[i] = d
	}
	return hashx.Aggregate(digests), nil
}

// PartialFailureError reports a folder sync in which some files failed.
// Files uploaded before the failure remain valid and independently
// retrievable; no rollback is attempted. The manifest is never uploaded.
type PartialFailureError struct {
	FailedPaths []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("folder sync incomplete: %d files failed: %s",
		len(e.FailedPaths), strings.Join(e.FailedPaths, ", "))
}
