package hashing

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into the digest kept in the credential store.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
}

// SHA256 produces unsalted lowercase hex SHA-256 digests, the format of existing
// credential files.
type SHA256 struct{}

// Hash returns hex(sha256(plaintext)).
func (SHA256) Hash(plaintext string) (string, error) {
	return Digest(plaintext), nil
}

// Verify compares in constant time. Upper-case hex from hand-edited files is accepted.
func (SHA256) Verify(digest, plaintext string) bool {
	want := Digest(plaintext)
	got := strings.ToLower(strings.TrimSpace(digest))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// Digest is the deterministic SHA-256 transform.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// MaxBcryptPasswordBytes is the longest password bcrypt accepts.
const MaxBcryptPasswordBytes = 72

// ErrPasswordTooLong is returned by Bcrypt.Hash for passwords bcrypt cannot take.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// Bcrypt writes salted bcrypt digests. It still verifies legacy SHA-256 rows so a
// store can be switched over without rewriting the file.
type Bcrypt struct {
	Cost int
}

// Hash returns a bcrypt digest at the configured cost.
func (b Bcrypt) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxBcryptPasswordBytes {
		return "", ErrPasswordTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks bcrypt digests, falling back to SHA-256 for 64-char hex digests.
func (Bcrypt) Verify(digest, plaintext string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}
	return SHA256{}.Verify(digest, plaintext)
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") || strings.HasPrefix(digest, "$2b$") || strings.HasPrefix(digest, "$2y$")
}

// New returns the hasher registered under name; unknown names get SHA256.
func New(name string) Hasher {
	if strings.EqualFold(name, "bcrypt") {
		return Bcrypt{}
	}
	return SHA256{}
}
