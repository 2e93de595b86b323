// Package common defines shared constants and sentinel errors used across
// the vault and anchor layers of Deepurge. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Crypto errors. Any authentication-tag mismatch, truncated ciphertext
	// or wrong key/nonce combination maps to ErrAuthFailure; no partially
	// decrypted bytes are ever returned alongside it.
	ErrAuthFailure = errors.New("wrong key or corrupted data")

	// Blob store errors.
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Token / manifest errors.
	ErrFormat = errors.New("malformed format")

	// Anchor registry errors.
	ErrAlreadyAnchored = errors.New("period already anchored")
	ErrUnauthorized    = errors.New("unauthorized")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
