package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testClientID = "test-client-id.apps.googleusercontent.com"
	testKid      = "test-kid-1"
)

// jwksServer serves a JWKS document for the given keys, mirroring the shape
// of Google's certs endpoint.
func jwksServer(t *testing.T, keys map[string]*rsa.PublicKey) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		type jwk struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		}
		doc := struct {
			Keys []jwk `json:"keys"`
		}{}
		for kid, pub := range keys {
			doc.Keys = append(doc.Keys, jwk{
				Kty: "RSA",
				Kid: kid,
				N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	raw, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "108500000000000000001",
		"email":          "person@example.com",
		"email_verified": true,
		"name":           "Test Person",
		"picture":        "https://example.com/avatar.jpg",
		"iat":            time.Now().Add(-time.Minute).Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func newTestVerifier(t *testing.T) (*GoogleVerifier, *rsa.PrivateKey, func()) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := jwksServer(t, map[string]*rsa.PublicKey{testKid: &key.PublicKey})
	v := NewGoogleVerifier(testClientID)
	v.CertsURL = srv.URL
	v.Client = srv.Client()
	return v, key, srv.Close
}

func TestVerifyValidToken(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	raw := signToken(t, key, testKid, baseClaims())
	claims, err := v.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "108500000000000000001" {
		t.Fatalf("wrong subject %q", claims.Subject)
	}
	if claims.Email != "person@example.com" || !claims.EmailVerified {
		t.Fatalf("wrong email claims: %+v", claims)
	}
	if claims.Name != "Test Person" {
		t.Fatalf("wrong name %q", claims.Name)
	}
}

func TestVerifyAlternateIssuer(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	c["iss"] = "accounts.google.com"
	if _, err := v.Verify(context.Background(), signToken(t, key, testKid, c)); err != nil {
		t.Fatalf("bare issuer form must be accepted: %v", err)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	c["iss"] = "https://evil.example.com"
	_, err := v.Verify(context.Background(), signToken(t, key, testKid, c))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	c["aud"] = "someone-else.apps.googleusercontent.com"
	_, err := v.Verify(context.Background(), signToken(t, key, testKid, c))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	c["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err := v.Verify(context.Background(), signToken(t, key, testKid, c))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMissingExpiry(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	delete(c, "exp")
	_, err := v.Verify(context.Background(), signToken(t, key, testKid, c))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMissingIdentity(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	c := baseClaims()
	delete(c, "email")
	_, err := v.Verify(context.Background(), signToken(t, key, testKid, c))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsUnknownKid(t *testing.T) {
	v, key, done := newTestVerifier(t)
	defer done()

	_, err := v.Verify(context.Background(), signToken(t, key, "rotated-away-kid", baseClaims()))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	v, _, done := newTestVerifier(t)
	defer done()

	// Signed with a key the JWKS endpoint never published under this kid.
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, verr := v.Verify(context.Background(), signToken(t, other, testKid, baseClaims()))
	if !errors.Is(verr, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", verr)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v, _, done := newTestVerifier(t)
	defer done()

	if _, err := v.Verify(context.Background(), "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
