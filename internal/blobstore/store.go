// Package blobstore defines the narrow interface the vault uses to talk to
// an untrusted content-addressed blob store, plus the available backends:
// a Walrus publisher/aggregator HTTP client, an S3-compatible client and an
// in-memory store for tests.
//
// The store only ever sees ciphertext. Object ids are opaque strings
// assigned by the backend on upload.
package blobstore

import "context"

// Store is the blob store collaborator.
//
// Upload returns the backend-assigned object id. Download returns
// common.ErrNotFound when the id is unknown to the store and
// common.ErrStorageUnavailable on transport failures; neither error is
// retried here; retry policy, if any, belongs to the caller.
type Store interface {
	Upload(ctx context.Context, data []byte) (string, error)
	Download(ctx context.Context, objectID string) ([]byte, error)
}
