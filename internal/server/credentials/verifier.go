// Package credentials isolates how account secrets are stored and checked.
// The identity service only ever calls Seal and Verify.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Verifier turns a secret into its stored form and checks candidates
// against it.
type Verifier interface {
	Seal(secret string) (string, error)
	Verify(stored, candidate string) bool
}

// Plaintext stores secrets as given and compares them exactly. It keeps
// accounts created by earlier deployments usable.
type Plaintext struct{}

func (Plaintext) Seal(secret string) (string, error) { return secret, nil }

func (Plaintext) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Bcrypt stores salted bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Seal(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (Bcrypt) Verify(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

const argon2Prefix = "argon2id$"

// Argon2 stores "argon2id$<salt hex>$<key hex>" with a 16 byte random salt
// and a 32 byte key.
type Argon2 struct{}

func deriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

func (Argon2) Seal(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := deriveKey([]byte(secret), salt)
	return argon2Prefix + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

func (Argon2) Verify(stored, candidate string) bool {
	saltHex, keyHex, ok := strings.Cut(strings.TrimPrefix(stored, argon2Prefix), "$")
	if !ok || !strings.HasPrefix(stored, argon2Prefix) {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, deriveKey([]byte(candidate), salt)) == 1
}

// New returns the verifier for a configured scheme name.
func New(scheme string) (Verifier, error) {
	switch scheme {
	case "", "plain":
		return Plaintext{}, nil
	case "bcrypt":
		return Bcrypt{}, nil
	case "argon2id":
		return Argon2{}, nil
	}
	return nil, fmt.Errorf("unknown credential scheme %q", scheme)
}
