package vault

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scampozano/deepurge/internal/common"
	"github.com/scampozano/deepurge/internal/cryptox"
	"github.com/scampozano/deepurge/internal/filex"
	"github.com/scampozano/deepurge/internal/hashx"
	"github.com/scampozano/deepurge/internal/sharetoken"
	"github.com/scampozano/deepurge/internal/vault/index"
)

// SyncFolder encrypts and uploads every regular file under root with one
// shared key, aggregates the per-file plaintext digests into a root hash,
// uploads the encrypted manifest and returns it together with a single
// access token covering the whole folder.
//
// The entry order is fixed lexicographically by relative path before any
// upload begins; per-file work runs concurrently, but results land at
// their entry's position, so aggregation never depends on completion
// order. Each file's nonce is derived from its position under the shared
// key, which makes nonce reuse impossible by construction.
//
// On partial failure the returned error is a *PartialFailureError naming
// the failed relative paths; files uploaded before the failure stay valid
// and independently retrievable, and the manifest is never uploaded.
func (s *Service) SyncFolder(ctx context.Context, root string) (*FolderManifest, sharetoken.Token, error) {
	paths, err := filex.ListRegularFiles(root)
	if err != nil {
		return nil, sharetoken.Token{}, fmt.Errorf("enumerate %s: %w", root, err)
	}

	sharedKey, err := cryptox.GenerateKey()
	if err != nil {
		return nil, sharetoken.Token{}, fmt.Errorf("generate folder key: %w", err)
	}

	entries := make([]ManifestEntry, len(paths))
	failures := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i], failures[i] = s.syncOne(ctx, root, paths[i], sharedKey, uint32(i))
			}
		}()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// abandon: uploaded objects stay valid, manifest is never built
			for j := i; j < len(paths); j++ {
				failures[j] = ctx.Err()
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	var failed []string
	for i, ferr := range failures {
		if ferr != nil {
			s.log.Warn(ctx, "folder entry failed", "path", paths[i], "error", ferr.Error())
			failed = append(failed, paths[i])
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return nil, sharetoken.Token{}, &PartialFailureError{FailedPaths: failed}
	}

	digests := make([]hashx.Digest, len(entries))
	var totalSize int64
	for i, e := range entries {
		d, derr := hashx.ParseDigest(e.DigestHex)
		if derr != nil {
			return nil, sharetoken.Token{}, derr
		}
		digests[i] = d
		totalSize += e.Size
	}
	rootHash := hashx.Aggregate(digests)

	manifest := &FolderManifest{
		Type:       ManifestType,
		FolderName: filepath.Base(root),
		FileCount:  len(entries),
		RootHash:   rootHash.String(),
		Entries:    entries,
	}

	token, err := s.uploadManifest(ctx, manifest, sharedKey, totalSize)
	if err != nil {
		return nil, sharetoken.Token{}, err
	}

	s.log.Info(ctx, "folder synced",
		"folder", manifest.FolderName, "files", manifest.FileCount,
		"root_hash", manifest.RootHash, "manifest_id", token.ObjectID)

	return manifest, token, nil
}

// syncOne processes the entry at the given fixed position: read,
// fingerprint, encrypt at the position-derived nonce, upload.
func (s *Service) syncOne(ctx context.Context, root, relPath string, key []byte, pos uint32) (ManifestEntry, error) {
	if err := ctx.Err(); err != nil {
		return ManifestEntry{}, err
	}

	plaintext, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("read %s: %w", relPath, err)
	}

	digest := hashx.Fingerprint(plaintext)

	ciphertext, nonce, err := cryptox.EncryptAt(plaintext, key, pos)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("encrypt %s: %w", relPath, err)
	}

	objectID, err := s.store.Upload(ctx, ciphertext)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("upload %s: %w", relPath, err)
	}

	return ManifestEntry{
		RelativePath: relPath,
		ObjectID:     objectID,
		DigestHex:    digest.String(),
		NonceHex:     hex.EncodeToString(nonce),
		Size:         int64(len(plaintext)),
	}, nil
}

// uploadManifest encrypts the manifest under the shared key at the index
// one past the last entry and uploads it; the returned token names the
// manifest blob and carries the shared key.
func (s *Service) uploadManifest(ctx context.Context, m *FolderManifest, key []byte, totalSize int64) (sharetoken.Token, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("marshal manifest: %w", err)
	}

	ciphertext, nonce, err := cryptox.EncryptAt(raw, key, uint32(len(m.Entries)))
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("encrypt manifest: %w", err)
	}

	manifestID, err := s.store.Upload(ctx, ciphertext)
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("upload manifest: %w", err)
	}

	s.recordUpload(ctx, &index.Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Name:       m.FolderName,
		ObjectID:   manifestID,
		Key:        key,
		Nonce:      nonce,
		PlainSize:  totalSize,
		CipherSize: int64(len(ciphertext)),
		Digest:     m.RootHash,
		Kind:       index.KindFolder,
	})

	return sharetoken.Token{ObjectID: manifestID, Key: key, Nonce: nonce, Name: m.FolderName}, nil
}

// RetrieveFolder downloads and decrypts a synced folder below destDir
// using its folder token. Every file's plaintext digest is checked against
// the manifest entry, and the recomputed root hash against the manifest's
// stored one; any disagreement fails closed.
func (s *Service) RetrieveFolder(ctx context.Context, t sharetoken.Token, destDir string) (*FolderManifest, error) {
	manifest, err := s.retrieveManifest(ctx, t)
	if err != nil {
		return nil, err
	}

	for _, e := range manifest.Entries {
		if err := s.retrieveEntry(ctx, t.Key, e, destDir); err != nil {
			return nil, err
		}
	}

	recomputed, err := manifest.ComputeRootHash()
	if err != nil {
		return nil, fmt.Errorf("manifest digests: %w", common.ErrFormat)
	}
	if recomputed.String() != manifest.RootHash {
		return nil, fmt.Errorf("root hash mismatch: %w", common.ErrAuthFailure)
	}

	return manifest, nil
}

func (s *Service) retrieveManifest(ctx context.Context, t sharetoken.Token) (*FolderManifest, error) {
	raw, err := s.RetrieveObject(ctx, t)
	if err != nil {
		return nil, err
	}

	var manifest FolderManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", common.ErrFormat)
	}
	if manifest.Type != ManifestType {
		return nil, fmt.Errorf("not a folder manifest: %w", common.ErrFormat)
	}

	return &manifest, nil
}

func (s *Service) retrieveEntry(ctx context.Context, key []byte, e ManifestEntry, destDir string) error {
	ciphertext, err := s.store.Download(ctx, e.ObjectID)
	if err != nil {
		return fmt.Errorf("download %s: %w", e.RelativePath, err)
	}

	nonce, err := hex.DecodeString(e.NonceHex)
	if err != nil {
		return fmt.Errorf("entry %s nonce: %w", e.RelativePath, common.ErrFormat)
	}

	plaintext, err := cryptox.Decrypt(ciphertext, key, nonce)
	if err != nil {
		return fmt.Errorf("decrypt %s: %w", e.RelativePath, err)
	}

	if hashx.Fingerprint(plaintext).String() != e.DigestHex {
		return fmt.Errorf("digest mismatch for %s: %w", e.RelativePath, common.ErrAuthFailure)
	}

	if _, err := filex.WriteFileUnder(destDir, e.RelativePath, plaintext); err != nil {
		return err
	}
	return nil
}
