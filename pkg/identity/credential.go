// Package identity manages the credential ledger used to authenticate
// dirscout sessions.
//
// Credentials are stored as colon-delimited text records, one per line:
//
//	username:salt:hash
//
// where salt is a random 16-character alphanumeric string and hash is the
// lowercase hex SHA-256 digest of password+salt. The ledger is append-only:
// records are never updated or deleted.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SaltLength is the length of generated salts.
const SaltLength = 16

const saltCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrMalformedRecord is returned when a ledger line does not have the
// username:salt:hash shape.
var ErrMalformedRecord = errors.New("malformed credential record")

// Credential is one stored (username, salt, hash) triple.
type Credential struct {
	Username string
	Salt     string
	Hash     string
}

// GenerateSalt returns a random 16-character salt drawn uniformly
// from [0-9A-Za-z].
func GenerateSalt() (string, error) {
	// Rejection sampling keeps the distribution uniform over the
	// 62-character set.
	var b strings.Builder
	b.Grow(SaltLength)

	buf := make([]byte, 1)
	for b.Len() < SaltLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		if int(buf[0]) >= 248 { // 248 = 4*62, largest multiple of 62 below 256
			continue
		}
		b.WriteByte(saltCharset[int(buf[0])%len(saltCharset)])
	}

	return b.String(), nil
}

// HashPassword computes the lowercase hex SHA-256 digest of password+salt.
// The salt is appended to the password before hashing, matching the
// ledger's stored hashes.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password matches this credential.
func (c Credential) Verify(password string) bool {
	return HashPassword(password, c.Salt) == c.Hash
}

// String renders the credential in ledger line format (no trailing newline).
func (c Credential) String() string {
	return c.Username + ":" + c.Salt + ":" + c.Hash
}

// ParseRecord parses one ledger line into a Credential.
// The hash field may itself not contain colons, so the line is split into
// exactly three fields.
func ParseRecord(line string) (Credential, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return Credential{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	return Credential{Username: parts[0], Salt: parts[1], Hash: parts[2]}, nil
}

// NewCredential creates a credential for username with a freshly generated
// salt and the salted hash of password.
func NewCredential(username, password string) (Credential, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Username: username,
		Salt:     salt,
		Hash:     HashPassword(password, salt),
	}, nil
}
