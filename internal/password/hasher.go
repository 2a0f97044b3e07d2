// Package password turns plaintext secrets into stored digests.
//
// The default digest is an unsalted SHA-256, base64 encoded, so existing
// rows keep verifying. Identical passwords produce identical digests; set
// auth.password_hasher to bcrypt to write salted digests for new passwords.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and checks password digests.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// Hash returns the SHA-256 digest of secret. It is deterministic.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Verify reports whether digest is the SHA-256 digest of secret.
func Verify(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(secret)), []byte(digest)) == 1
}

type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) { return Hash(secret), nil }

func (SHA256Hasher) Verify(secret, digest string) bool { return Verify(secret, digest) }

// BcryptHasher writes bcrypt digests and still accepts SHA-256 digests
// created before the switch.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Verify(secret, digest string) bool {
	if !strings.HasPrefix(digest, "$2") {
		return Verify(secret, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

// New returns the hasher registered under name.
func New(name string) (Hasher, error) {
	switch name {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	}
	return nil, fmt.Errorf("unknown password hasher %q", name)
}
