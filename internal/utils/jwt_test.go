package utils

import (
	"strconv"
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", 42, "admin", 30)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Token == "" {
		t.Fatal("empty token")
	}
	until := time.Until(tok.Exp)
	if until < 29*24*time.Hour || until > 30*24*time.Hour {
		t.Fatalf("exp %v out of range", tok.Exp)
	}

	claims, err := ParseSessionToken("secret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", 1, "user", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionToken("other", tok.Token); err != ErrTokenInvalid {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	tok, err := NewSessionTokenAt("secret", 1, "user", 1, time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionToken("secret", tok.Token); err != ErrTokenInvalid {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseSessionTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := ParseSessionToken("secret", raw); err != ErrTokenInvalid {
			t.Errorf("ParseSessionToken(%q) err = %v, want ErrTokenInvalid", raw, err)
		}
	}
}

func TestNewOTPCodeShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewOTPCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil || n < 100000 || n > 999999 {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	if err != nil {
		t.Fatal(err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash equals cleartext")
	}
	if !VerifyPassword(hash, "s3cret!") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
