// Package auth implements credential hashing, signed access tokens and
// token-to-identity resolution.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Registered claim names shared by issuer and verifier.
const (
	ClaimSubject   = "sub"
	ClaimExpiresAt = "exp"
)

// DefaultFallbackTTL applies when Issue is called with a zero ttl.
const DefaultFallbackTTL = 15 * time.Minute

// Codec signs and verifies HMAC JWTs with a single secret and algorithm.
// Tokens are signed, not encrypted: anyone holding one can read its claims.
type Codec struct {
	secret      []byte
	method      *jwt.SigningMethodHMAC
	fallbackTTL time.Duration
	now         func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now. The result is always converted to UTC.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec. algorithm defaults to HS256 and must name an HMAC
// method; fallbackTTL defaults to DefaultFallbackTTL.
func NewCodec(secret []byte, algorithm string, fallbackTTL time.Duration, opts ...CodecOption) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultFallbackTTL
	}

	c := &Codec{
		secret:      append([]byte(nil), secret...),
		method:      method,
		fallbackTTL: fallbackTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Algorithm returns the JWS "alg" value used for signing.
func (c *Codec) Algorithm() string { return c.method.Alg() }

func (c *Codec) clock() time.Time { return c.now().UTC() }

// Issue signs claims with exp = now + ttl. A zero ttl uses the fallback.
// claims must carry a non-empty "sub" and must not carry "exp".
func (c *Codec) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = c.fallbackTTL
	}
	return c.IssueUntil(claims, c.clock().Add(ttl))
}

// IssueUntil is Issue with an absolute expiry.
func (c *Codec) IssueUntil(claims map[string]any, expiresAt time.Time) (string, error) {
	if _, ok := claims[ClaimExpiresAt]; ok {
		return "", fmt.Errorf("%w: claims must not carry %q", common.ErrValidation, ClaimExpiresAt)
	}
	if sub, _ := claims[ClaimSubject].(string); sub == "" {
		return "", fmt.Errorf("%w: claims need a non-empty %q", common.ErrValidation, ClaimSubject)
	}

	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc[ClaimExpiresAt] = jwt.NewNumericDate(expiresAt.UTC())

	return jwt.NewWithClaims(c.method, mc).SignedString(c.secret)
}

// VerifyAndDecode checks signature and expiry and returns every claim.
//
// Errors: common.ErrInvalidSignature, common.ErrTokenExpired (now >= exp),
// common.ErrInvalidToken for anything that does not parse or lacks exp.
func (c *Codec) VerifyAndDecode(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && onlySignatureUndecodable(tokenString) {
			return nil, fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
		}
		return nil, classifyParseError(err)
	}
	return claims, nil
}

// onlySignatureUndecodable reports whether header and payload are well-formed
// JSON objects while the signature segment fails strict base64url decoding.
func onlySignatureUndecodable(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	p := jwt.NewParser(jwt.WithStrictDecoding())
	for _, seg := range parts[:2] {
		raw, err := p.DecodeSegment(seg)
		if err != nil {
			return false
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return false
		}
	}
	_, err := p.DecodeSegment(parts[2])
	return err != nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}
