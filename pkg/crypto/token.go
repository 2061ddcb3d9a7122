package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	DefaultTokenLength = 32 // 256 bits
)

var ErrEmptyToken = errors.New("token and hash cannot be empty")

type TokenPair struct {
	Token string // value returned to client
	Hash  string // value in storage
}

// GenerateToken returns byteLength random bytes, base64url encoded without
// padding. Non-positive lengths use DefaultTokenLength.
func GenerateToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultTokenLength
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// TokenHasher derives the storage form of bearer tokens. With a key the
// hash is HMAC-SHA256, so a leaked session table cannot be replayed
// without the application secret; without one it is plain SHA-256.
type TokenHasher struct {
	key []byte
}

func NewTokenHasher(secret string) *TokenHasher {
	return &TokenHasher{key: []byte(secret)}
}

// Generate creates a fresh token and its hash.
func (h *TokenHasher) Generate(byteLength int) (*TokenPair, error) {
	token, err := GenerateToken(byteLength)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Token: token,
		Hash:  h.Hash(token),
	}, nil
}

func (h *TokenHasher) Hash(token string) string {
	if len(h.key) == 0 {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:])
	}
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *TokenHasher) Verify(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(h.Hash(token)), []byte(storedHash)) == 1, nil
}
