// Package auth inspects the bearer credential issued by the login
// service. It only decodes the claims segment; signature verification
// happens upstream at the issuer and is not repeated here.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidToken marks a credential that cannot be decoded. The
	// current operation is abandoned and the user must re-authenticate.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired marks a well-formed credential past its expiry.
	// Callers refuse to fetch and send the user back to login.
	ErrTokenExpired = errors.New("token expired")
)

// claims is the subset of the credential payload this service reads.
type claims struct {
	Sub string   `json:"sub"`
	Exp *float64 `json:"exp"`
}

// DecodeSubject extracts the subject identifier from a three-segment
// dot-delimited credential. Any shape problem, from a wrong segment
// count to a missing sub claim, reports ErrInvalidToken.
func DecodeSubject(token string) (string, error) {
	c, err := decodeClaims(token)
	if err != nil {
		return "", err
	}
	sub := strings.TrimSpace(c.Sub)
	if sub == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	return c.Sub, nil
}

// IsExpired reports whether the credential's exp claim lies strictly
// before now. A payload without an exp claim never expires; a payload
// that cannot be decoded reports ErrInvalidToken.
func IsExpired(token string, now time.Time) (bool, error) {
	c, err := decodeClaims(token)
	if err != nil {
		return false, err
	}
	if c.Exp == nil {
		return false, nil
	}
	expiry := time.UnixMilli(int64(*c.Exp * 1000))
	return now.After(expiry), nil
}

func decodeClaims(token string) (claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(segments))
	}

	payload, err := base64.StdEncoding.DecodeString(padBase64(toStdAlphabet(segments[1])))
	if err != nil {
		return claims{}, fmt.Errorf("%w: payload is not valid base64", ErrInvalidToken)
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return claims{}, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidToken)
	}
	return c, nil
}

// toStdAlphabet converts the URL-safe base64 alphabet to the standard
// one, mirroring how the credential issuer encodes the payload.
func toStdAlphabet(s string) string {
	s = strings.ReplaceAll(s, "-", "+")
	return strings.ReplaceAll(s, "_", "/")
}

// padBase64 re-pads a segment to a multiple of four characters.
func padBase64(s string) string {
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}
