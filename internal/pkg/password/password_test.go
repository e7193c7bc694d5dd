package password

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/argon2"
)

func TestHashVerify(t *testing.T) {
	hash, err := Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	rehash, err := Verify(hash, "s3cret!")
	if err != nil || rehash {
		t.Errorf("Verify(match) = %v, %v", rehash, err)
	}
	if _, err := Verify(hash, "wrong"); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(wrong) error = %v, want ErrMismatch", err)
	}
}

func legacyHash(plain string) string {
	salt := []byte("0123456789abcdef")
	// small cost parameters keep the test fast; the format is what matters
	sum := argon2.IDKey([]byte(plain), salt, 1, 1024, 1, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=1024,t=1,p=1$%s$%s", argon2.Version,
		base64.RawStdEncoding.EncodeToString(salt), base64.RawStdEncoding.EncodeToString(sum))
}

func TestVerifyLegacyArgon2(t *testing.T) {
	hash := legacyHash("tour123")
	rehash, err := Verify(hash, "tour123")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !rehash {
		t.Error("Verify() needsRehash = false, want true for argon2 hash")
	}
	if _, err := Verify(hash, "tour124"); !errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(wrong) error = %v, want ErrMismatch", err)
	}
	if _, err := Verify("$argon2id$v=19$broken", "x"); err == nil || errors.Is(err, ErrMismatch) {
		t.Errorf("Verify(malformed) error = %v, want parse error", err)
	}
}
