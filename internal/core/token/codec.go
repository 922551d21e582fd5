// Package token implements the access-token codec: HS256-signed JWTs for
// access tokens and opaque random values for refresh tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

const refreshTokenBytes = 64

// Codec mints and validates access tokens for a fixed signing key, issuer
// and audience. It is stateless and safe for concurrent use.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
}

// NewCodec builds a Codec. All three values are mandatory; a blank one is a
// construction-time error rather than a lazy runtime failure.
func NewCodec(secret, issuer, audience string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if issuer == "" {
		return nil, errors.New("token: issuer is required")
	}
	if audience == "" {
		return nil, errors.New("token: audience is required")
	}
	return &Codec{secret: []byte(secret), issuer: issuer, audience: audience}, nil
}

// Mint encodes the claim set into a signed access token expiring at the
// given instant. The only randomness is the caller-supplied token id.
func (c *Codec) Mint(claims domain.AccessClaims, expiresAt time.Time) (string, error) {
	mc := jwt.MapClaims{
		"sub":   claims.Subject,
		"name":  claims.DisplayName,
		"email": claims.Email,
		"jti":   claims.TokenID,
		"iss":   c.issuer,
		"aud":   c.audience,
		"exp":   jwt.NewNumericDate(expiresAt),
	}

	// A single role serializes as a plain string, several as an array.
	// ParseClaims normalizes both shapes back into one claim per role.
	switch len(claims.Roles) {
	case 0:
	case 1:
		mc["role"] = claims.Roles[0]
	default:
		mc["role"] = claims.Roles
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// NewRefreshValue returns a fresh opaque refresh token: 64 bytes from a
// CSPRNG, base64-encoded. Collisions are treated as negligible and never
// checked against previously issued values.
func (c *Codec) NewRefreshValue() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// TryValidate checks the token's signature, issuer and audience but
// deliberately ignores expiry: during refresh the access token is only
// proof of prior issuance, not an active-session check. Returns ok=false
// on a bad signature, an algorithm other than HS256, or an issuer or
// audience mismatch.
func (c *Codec) TryValidate(accessToken string) (domain.AccessClaims, bool) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	mc := jwt.MapClaims{}
	tkn, err := parser.ParseWithClaims(accessToken, mc, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return domain.AccessClaims{}, false
	}

	// WithoutClaimsValidation skips issuer/audience too, so check them by
	// hand. Expiry stays unchecked on purpose.
	if iss, _ := mc.GetIssuer(); iss != c.issuer {
		return domain.AccessClaims{}, false
	}
	aud, err := mc.GetAudience()
	if err != nil || !containsAudience(aud, c.audience) {
		return domain.AccessClaims{}, false
	}

	return claimsFromMap(mc), true
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func claimsFromMap(mc jwt.MapClaims) domain.AccessClaims {
	claims := domain.AccessClaims{
		Subject:     stringClaim(mc, "sub"),
		DisplayName: stringClaim(mc, "name"),
		Email:       stringClaim(mc, "email"),
		TokenID:     stringClaim(mc, "jti"),
	}
	switch v := mc["role"].(type) {
	case string:
		claims.Roles = []string{v}
	case []any:
		for _, r := range v {
			if s, ok := r.(string); ok {
				claims.Roles = append(claims.Roles, s)
			}
		}
	case []string:
		claims.Roles = append(claims.Roles, v...)
	}
	return claims
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
