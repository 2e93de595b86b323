// Package sharetoken packs and unpacks self-contained vault access tokens.
//
// A token carries everything needed to locate and decrypt one stored
// object: the blob store's object id, the AES key, the GCM nonce and a
// display name. The wire form is compact JSON encoded with URL-safe,
// unpadded base64, so the token fits in a URL fragment. Fragments are not
// transmitted in HTTP requests, which is the deliberate reason share links
// carry the token after '#': the server never sees the key.
//
// The codec adds no confidentiality of its own; that is entirely the
// cipher engine's job.
package sharetoken

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scampozano/deepurge/internal/common"
)

// Token is a self-contained capability for one stored object. Once issued
// it never expires; revocation, if any, happens by deleting the object at
// the blob store, which orphans the token.
type Token struct {
	ObjectID string
	Key      []byte
	Nonce    []byte
	Name     string
}

// payload is the wire shape: single-letter keys keep the encoded token
// short, matching the published share-link format.
type payload struct {
	ObjectID string `json:"b"`
	KeyHex   string `json:"k"`
	NonceHex string `json:"n"`
	Name     string `json:"f,omitempty"`
}

// Encode serializes the token to its URL-safe string form.
func Encode(t Token) (string, error) {
	if t.ObjectID == "" || len(t.Key) == 0 || len(t.Nonce) == 0 {
		return "", fmt.Errorf("missing token field: %w", common.ErrFormat)
	}

	p := payload{
		ObjectID: t.ObjectID,
		KeyHex:   hex.EncodeToString(t.Key),
		NonceHex: hex.EncodeToString(t.Nonce),
		Name:     t.Name,
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a token string back into its components. Malformed input
// of any kind (bad base64, bad JSON, a missing required field, non-hex
// key or nonce) yields common.ErrFormat, never a lower-level error.
func Decode(s string) (Token, error) {
	// tolerate padded variants produced by older encoders
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return Token{}, fmt.Errorf("token base64: %w", common.ErrFormat)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Token{}, fmt.Errorf("token payload: %w", common.ErrFormat)
	}

	if p.ObjectID == "" || p.KeyHex == "" || p.NonceHex == "" {
		return Token{}, fmt.Errorf("missing token field: %w", common.ErrFormat)
	}

	key, err := hex.DecodeString(p.KeyHex)
	if err != nil {
		return Token{}, fmt.Errorf("token key: %w", common.ErrFormat)
	}

	nonce, err := hex.DecodeString(p.NonceHex)
	if err != nil {
		return Token{}, fmt.Errorf("token nonce: %w", common.ErrFormat)
	}

	return Token{ObjectID: p.ObjectID, Key: key, Nonce: nonce, Name: p.Name}, nil
}

// ShareLink builds a full shareable link with the token in the URL
// fragment.
func ShareLink(baseURL string, t Token) (string, error) {
	token, err := Encode(t)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + "/vault/share#" + token, nil
}
