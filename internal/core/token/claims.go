package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Claim is one named attribute extracted from a token payload.
type Claim struct {
	Type  string
	Value string
}

// ParseClaims decodes the payload segment of a JWT without verifying its
// signature. The payload is re-padded to a valid base64 length before
// decoding. The "role" claim is ambiguous on the wire — one string, a JSON
// array, or a single delimited multi-value string — and is normalized into
// one claim per role; every other claim passes through unchanged.
func ParseClaims(rawToken string) ([]Claim, error) {
	segments := strings.Split(rawToken, ".")
	if len(segments) < 2 {
		return nil, fmt.Errorf("malformed token: %d segments", len(segments))
	}

	decoded, err := decodeSegment(segments[1])
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	claims := make([]Claim, 0, len(payload))
	if roleValue, ok := payload["role"]; ok {
		for _, role := range normalizeRoles(roleValue) {
			claims = append(claims, Claim{Type: "role", Value: role})
		}
		delete(payload, "role")
	}

	for key, value := range payload {
		claims = append(claims, Claim{Type: key, Value: claimString(value)})
	}

	return claims, nil
}

// decodeSegment restores stripped base64 padding before decoding.
func decodeSegment(segment string) ([]byte, error) {
	switch len(segment) % 4 {
	case 2:
		segment += "=="
	case 3:
		segment += "="
	}
	return base64.URLEncoding.DecodeString(segment)
}

// normalizeRoles flattens the possible encodings of the role claim into a
// list of role names.
func normalizeRoles(value any) []string {
	var roles []string
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(v), "["), "]")
		for _, part := range strings.Split(trimmed, ",") {
			part = strings.Trim(strings.TrimSpace(part), `"`)
			if part != "" {
				roles = append(roles, part)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
	}
	return roles
}

func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers land as float64; exp/iat/nbf are integral seconds.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
