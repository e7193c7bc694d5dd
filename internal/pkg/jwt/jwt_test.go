package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestSignParse(t *testing.T) {
	id := Identity{UserID: 42, Type: 2, UserName: "Ha Long Tours", Role: "admin"}
	token, err := Sign(id, time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	claims, err := Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Identity != id {
		t.Errorf("Identity = %+v, want %+v", claims.Identity, id)
	}
	if claims.Subject != "42" {
		t.Errorf("Subject = %q, want 42", claims.Subject)
	}
}

func TestParseRejects(t *testing.T) {
	expired, _ := Sign(Identity{UserID: 1}, -time.Minute)
	noUser, _ := Sign(Identity{}, time.Hour)
	foreign, _ := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{Identity: Identity{UserID: 1}}).SignedString([]byte("other"))

	for name, token := range map[string]string{
		"expired": expired,
		"no user": noUser,
		"foreign": foreign,
		"garbage": "not.a.token",
	} {
		if _, err := Parse(token); err == nil {
			t.Errorf("%s: Parse() error = nil, want error", name)
		}
	}
}
