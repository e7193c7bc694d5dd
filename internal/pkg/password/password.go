// Package password hashes new credentials with bcrypt and still verifies the
// argon2id hashes carried over from the legacy store.
package password

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("password mismatch")

// Hash returns a bcrypt hash of plain.
func Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks plain against hash. needsRehash is true when the stored hash
// uses the legacy argon2id format and should be replaced.
func Verify(hash, plain string) (needsRehash bool, err error) {
	if strings.HasPrefix(hash, "$argon2") {
		if err := verifyArgon2(hash, plain); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, ErrMismatch
		}
		return false, err
	}
	return false, nil
}

// verifyArgon2 parses a PHC string: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
func verifyArgon2(encoded, plain string) error {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return fmt.Errorf("malformed argon2 hash")
	}
	variant := parts[1]
	if variant != "argon2id" && variant != "argon2i" {
		return fmt.Errorf("unsupported argon2 variant %q", variant)
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return fmt.Errorf("unsupported argon2 version %q", parts[2])
	}
	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return fmt.Errorf("malformed argon2 params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("malformed argon2 salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("malformed argon2 digest: %w", err)
	}

	var got []byte
	if variant == "argon2id" {
		got = argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(want)))
	} else {
		got = argon2.Key([]byte(plain), salt, iterations, memory, parallelism, uint32(len(want)))
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}
