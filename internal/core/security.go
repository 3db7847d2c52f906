// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrMalformedHash = errors.New("malformed password hash")

type argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var currentArgon2 = argon2Params{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func (p argon2Params) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// encode renders the PHC string form:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
func (p argon2Params) encode(salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Time,
		p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func parseArgon2(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: version %q", ErrMalformedHash, parts[2])
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}

	//nolint:gosec // G115: salt and key are a few dozen bytes
	p.SaltLen, p.KeyLen = uint32(len(salt)), uint32(len(key))
	return p, salt, key, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, currentArgon2.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return currentArgon2.encode(salt, currentArgon2.derive(password, salt)), nil
}

func VerifyPassword(password, encoded string) (bool, error) {
	p, salt, key, err := parseArgon2(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.derive(password, salt)) == 1, nil
}

var placeholderHash = sync.OnceValue(func() string {
	h, err := HashPassword("placeholder-for-unknown-accounts")
	if err != nil {
		panic(fmt.Sprintf("security: placeholder hash: %v", err))
	}
	return h
})

// CheckPassword verifies password against encoded. An empty encoded hash
// still pays for one derivation so unknown accounts take as long as known
// ones. When the stored hash uses outdated parameters and the password
// matches, rehash carries a fresh hash to persist.
func CheckPassword(password, encoded string) (ok bool, rehash string, err error) {
	if encoded == "" {
		_, _ = VerifyPassword(password, placeholderHash()) //nolint:errcheck // timing only
		return false, "", nil
	}

	p, salt, key, err := parseArgon2(encoded)
	if err != nil {
		return false, "", err
	}
	if subtle.ConstantTimeCompare(key, p.derive(password, salt)) != 1 {
		return false, "", nil
	}

	if p == currentArgon2 {
		return true, "", nil
	}
	fresh, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; upgrading the hash can wait
		return true, "", nil
	}
	return true, fresh, nil
}

// NewOpaqueToken returns a URL-safe random token of size bytes and the hex
// SHA-256 digest under which it is stored. The raw token is handed to the
// client once and never persisted.
func NewOpaqueToken(size int) (token, hash string, err error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate random bytes: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashToken(token), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
