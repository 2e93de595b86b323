// Package cryptox implements the vault's cipher engine: AES-256-GCM
// authenticated encryption with per-object random keys.
//
// Nonces are never supplied by callers. Encrypt draws a fresh random nonce
// from crypto/rand on every call; EncryptAt derives the nonce from an entry
// index for the shared-key folder path, so nonce uniqueness under a reused
// key is enforced by construction rather than assumed.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/scampozano/deepurge/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the standard GCM nonce length in bytes.
	NonceSize = 12
)

// nonce derivation domain separator for indexed (folder) encryption
const indexedNoncePrefix = "deepurge/vault/nonce/v1"

// GenerateKey returns a fresh random 256-bit vault key.
func GenerateKey() ([]byte, error) {
	return common.GenerateRandByteArray(KeySize)
}

// DeriveKey derives a 256-bit vault key from a passphrase and salt using
// argon2id. The same passphrase and salt always yield the same key, which
// lets a user re-derive a vault key instead of storing it.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Encrypt seals plaintext with AES-256-GCM under key. A new random 12-byte
// nonce is generated for each call; the ciphertext includes the GCM
// authentication tag.
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = common.GenerateRandByteArray(aesgcm.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// EncryptAt seals plaintext under key with a nonce derived from index.
// It exists for folder sync, where one key covers many files: each file is
// encrypted at its position in the folder's fixed entry order, so two files
// can never collide on a nonce. A key passed to EncryptAt must be used for
// at most one folder sync.
func EncryptAt(plaintext, key []byte, index uint32) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = DeriveNonce(index)
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// DeriveNonce maps an entry index to a unique 12-byte nonce:
// the truncated SHA-256 of a domain-separated big-endian counter.
// Distinct indexes always produce distinct nonces.
func DeriveNonce(index uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], index)

	h := sha256.New()
	h.Write([]byte(indexedNoncePrefix))
	h.Write(buf[:])
	return h.Sum(nil)[:NonceSize]
}

// Decrypt opens ciphertext with the given key and nonce. It fails closed:
// a tag mismatch, truncated input or wrong key/nonce combination yields
// common.ErrAuthFailure and no plaintext. Decryption failures are terminal
// for the call; there is no retry.
func Decrypt(ciphertext, key, nonce []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aesgcm.NonceSize() {
		return nil, common.ErrAuthFailure
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthFailure
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d: %w", len(key), common.ErrAuthFailure)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
