// Package jwt encodes and verifies the service's session tokens.
//
// Tokens are self-contained HS256 JWTs carrying a fixed set of identity
// claims. Decode verifies the signature before touching the payload and
// reports every failure mode as a sentinel error, so callers can treat
// "no valid session" uniformly instead of handling panics or parse faults.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JWT header constants required by RFC 7519.
const (
	HeaderType      = "JWT"
	HeaderAlgorithm = "HS256"
)

// Header represents the JWT header as defined in RFC 7515.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Claims is the closed set of identity fields embedded in a session token.
// It is a public projection of a user record: nothing else is ever admitted
// into the token payload.
//
// ExpiresAt is optional. The service issues tokens without it, matching the
// original deployment where tokens stay valid until the signing key rotates;
// Decode still enforces it when present.
type Claims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// Valid checks the temporal claims against current time. A zero ExpiresAt is
// treated as unset per RFC 7519 and ignored.
func (c Claims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Codec signs and verifies session tokens with a process-wide secret key.
// The key is set once at construction and never exposed afterwards.
type Codec struct {
	signingKey []byte
}

// New creates a Codec with the provided signing key. The key should be at
// least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte) (*Codec, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Codec{signingKey: signingKey}, nil
}

// NewFromString creates a Codec from a string signing key.
func NewFromString(signingKey string) (*Codec, error) {
	return New([]byte(signingKey))
}

// Encode produces a signed compact token embedding the claims. The signature
// covers the whole header.claims payload, so any mutation invalidates it.
func (c *Codec) Encode(claims Claims) (string, error) {
	header := Header{
		Type:      HeaderType,
		Algorithm: HeaderAlgorithm,
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("failed to marshal header: %w", err)
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	payload := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	return payload + "." + c.sign(payload), nil
}

// Decode verifies a token and returns its claims. It returns a sentinel
// error for empty or malformed input, a signature mismatch, an unexpected
// signing algorithm, or an expired token; it never panics on hostile input.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	// Verify the signature before decoding anything, using a constant-time
	// comparison to prevent timing attacks.
	payload := parts[0] + "." + parts[1]
	expected := c.sign(payload)
	if subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) != 1 {
		return Claims{}, ErrInvalidSignature
	}

	headerJSON, err := base64URLDecode(parts[0])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Claims{}, ErrInvalidToken
	}

	// Reject tokens declaring a different algorithm to prevent algorithm
	// confusion attacks.
	if header.Algorithm != HeaderAlgorithm {
		return Claims{}, ErrUnexpectedSigningMethod
	}

	claimsJSON, err := base64URLDecode(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	if err := claims.Valid(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// sign creates an HMAC-SHA256 signature for the given payload, base64url
// encoded as required by RFC 7515.
func (c *Codec) sign(payload string) string {
	h := hmac.New(sha256.New, c.signingKey)
	h.Write([]byte(payload))
	return base64URLEncode(h.Sum(nil))
}

// base64URLEncode encodes data using base64url encoding without padding.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// base64URLDecode decodes base64url data, accepting both padded and unpadded
// forms since interoperating clients are inconsistent about padding.
func base64URLDecode(s string) ([]byte, error) {
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(s)
}
