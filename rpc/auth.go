package rpc

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// governanceClaims is the bearer token payload a governance operator
// presents to call a gated endpoint. Subject is kept for the audit log
// line, not for authorization: possession of a validly-signed token with
// the governance role is the only check.
type governanceClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

var errGovernanceTokenRequired = errors.New("rpc: governance bearer token required")
var errGovernanceTokenInvalid = errors.New("rpc: governance bearer token invalid")

// verifyGovernanceToken checks the Authorization header against secret and
// returns the token's subject (the operator name) on success.
func verifyGovernanceToken(authHeader string, secret []byte) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", errGovernanceTokenRequired
	}
	raw := strings.TrimPrefix(authHeader, prefix)

	var claims governanceClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errGovernanceTokenInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errGovernanceTokenInvalid
	}
	if claims.Role != "governance" {
		return "", errGovernanceTokenInvalid
	}
	return claims.Subject, nil
}
