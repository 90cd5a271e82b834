// Package oauth verifies Google ID tokens against Google's published JWKS.
// The verifier owns key sourcing; signature and claim validation are done by
// the jwt library.
package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer or audience, expiry, or an unfetchable signing key.  Callers only
// need the pass/fail distinction (401 either way).
var ErrInvalidToken = errors.New("invalid google token")

// Claims are the identity fields extracted from a verified ID token.
type Claims struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// GoogleVerifier validates Google-issued ID tokens for a single OAuth client
// id.  Signing keys are fetched from CertsURL and cached; Google rotates
// them rarely, so a short-lived cache with refetch-on-unknown-kid suffices.
type GoogleVerifier struct {
	ClientID string
	CertsURL string
	Client   *http.Client

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// NewGoogleVerifier returns a verifier bound to the given OAuth client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		CertsURL: googleCertsURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify parses and validates a raw ID token.  On success it returns the
// identity claims; any failure maps to ErrInvalidToken.
func (v *GoogleVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return v.key(ctx, kid)
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Issuer must be one of Google's canonical issuer strings.
	iss, _ := claims["iss"].(string)
	if iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return nil, ErrInvalidToken
	}
	// The token must have been issued for our client id.
	aud, _ := claims["aud"].(string)
	if aud != v.ClientID {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, ErrInvalidToken
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	verified, _ := claims["email_verified"].(bool)
	return &Claims{
		Subject:       sub,
		Email:         email,
		Name:          name,
		Picture:       picture,
		EmailVerified: verified,
	}, nil
}

// key returns the RSA public key for kid, refetching the JWKS document when
// the kid is unknown or the cache is older than an hour.
func (v *GoogleVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if k, ok := v.keys[kid]; ok && time.Since(v.fetched) < time.Hour {
		return k, nil
	}
	if err := v.fetchLocked(ctx); err != nil {
		return nil, err
	}
	k, ok := v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing key for kid %q", kid)
	}
	return k, nil
}

func (v *GoogleVerifier) fetchLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.CertsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks fetch: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return err
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaKey(k.N, k.E)
		if err != nil {
			return fmt.Errorf("jwks key %q: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("jwks document contains no RSA keys")
	}
	v.keys = keys
	v.fetched = time.Now()
	return nil
}

// rsaKey builds an rsa.PublicKey from the base64url modulus and exponent of
// a JWKS entry.
func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}
	exp := 0
	for _, b := range eb {
		exp = exp<<8 | int(b)
	}
	if exp <= 1 {
		return nil, errors.New("invalid public exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: exp}, nil
}
