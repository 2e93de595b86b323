// Package vault orchestrates the encrypt-then-upload and download-then-decrypt
// pipelines for single objects and for whole folders, and keeps the local
// convenience index of completed uploads.
//
// The blob store only ever receives ciphertext; every secret needed for
// recovery travels inside the returned access token.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scampozano/deepurge/internal/blobstore"
	"github.com/scampozano/deepurge/internal/cryptox"
	"github.com/scampozano/deepurge/internal/filex"
	"github.com/scampozano/deepurge/internal/hashx"
	"github.com/scampozano/deepurge/internal/logging"
	"github.com/scampozano/deepurge/internal/sharetoken"
	"github.com/scampozano/deepurge/internal/vault/index"
)

// Service is the vault store. All operations are synchronous
// request/response units; there is no background scheduler here.
type Service struct {
	store   blobstore.Store
	repo    index.Repository
	log     logging.Logger
	workers int
}

// NewService wires the vault over a blob store and an index repository.
// workers bounds per-file parallelism during folder sync; values below 1
// fall back to a small default.
func NewService(store blobstore.Store, repo index.Repository, log logging.Logger, workers int) *Service {
	if workers < 1 {
		workers = 4
	}
	return &Service{store: store, repo: repo, log: log, workers: workers}
}

// StoreObject encrypts plaintext under a fresh random key, uploads the
// ciphertext and returns the self-contained access token. The local index
// gains one record for listing purposes.
func (s *Service) StoreObject(ctx context.Context, plaintext []byte, name string) (sharetoken.Token, error) {
	key, err := cryptox.GenerateKey()
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("generate key: %w", err)
	}
	return s.StoreObjectWithKey(ctx, plaintext, name, key)
}

// StoreObjectWithKey is StoreObject with a caller-supplied 256-bit key,
// typically one derived from a passphrase. The nonce is still generated
// internally, so a derived key can safely store multiple objects.
func (s *Service) StoreObjectWithKey(ctx context.Context, plaintext []byte, name string, key []byte) (sharetoken.Token, error) {
	digest := hashx.Fingerprint(plaintext)

	ciphertext, nonce, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("encrypt %s: %w", name, err)
	}

	objectID, err := s.store.Upload(ctx, ciphertext)
	if err != nil {
		return sharetoken.Token{}, fmt.Errorf("upload %s: %w", name, err)
	}

	token := sharetoken.Token{ObjectID: objectID, Key: key, Nonce: nonce, Name: name}

	s.recordUpload(ctx, &index.Record{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Name:       name,
		ObjectID:   objectID,
		Key:        key,
		Nonce:      nonce,
		PlainSize:  int64(len(plaintext)),
		CipherSize: int64(len(ciphertext)),
		Digest:     digest.String(),
		Kind:       index.KindObject,
	})

	s.log.Info(ctx, "object stored",
		"name", name, "object_id", objectID,
		"plain_size", len(plaintext), "cipher_size", len(ciphertext))

	return token, nil
}

// RetrieveObject downloads the ciphertext named by the token and decrypts
// it with the token's key and nonce. A missing object surfaces as
// common.ErrNotFound, a failed decrypt as common.ErrAuthFailure; the two
// are never conflated, so a caller can tell "nothing there" from
// "wrong key".
func (s *Service) RetrieveObject(ctx context.Context, t sharetoken.Token) ([]byte, error) {
	ciphertext, err := s.store.Download(ctx, t.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", t.ObjectID, err)
	}

	plaintext, err := cryptox.Decrypt(ciphertext, t.Key, t.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", t.ObjectID, err)
	}

	return plaintext, nil
}

// RetrieveToFile retrieves the object and writes the plaintext below dir,
// using the token's display name (or the object id when unnamed).
func (s *Service) RetrieveToFile(ctx context.Context, t sharetoken.Token, dir string) (string, error) {
	plaintext, err := s.RetrieveObject(ctx, t)
	if err != nil {
		return "", err
	}

	name := t.Name
	if name == "" {
		name = t.ObjectID
	}

	return filex.WriteFileUnder(dir, name, plaintext)
}

// ListObjects returns the local index records. Read-only, no network.
func (s *Service) ListObjects(ctx context.Context) ([]*index.Record, error) {
	return s.repo.GetAll(ctx)
}

// recordUpload appends the convenience record. The upload has already
// succeeded and the token is valid regardless, so an index failure is
// logged, not returned.
func (s *Service) recordUpload(ctx context.Context, rec *index.Record) {
	if err := s.repo.Insert(ctx, rec); err != nil {
		s.log.Warn(ctx, "index record not persisted", "name", rec.Name, "error", err.Error())
	}
}
