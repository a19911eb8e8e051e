package collector

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// appJWTLifetime is the validity window GitHub allows for app JWTs.
const appJWTLifetime = 9 * time.Minute

// signAppJWT builds the RS256-signed JWT GitHub Apps authenticate with.
// The issued-at claim is backdated one minute to tolerate clock drift.
func signAppJWT(appID string, privateKeyPEM []byte, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("failed to parse app private key: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    appID,
		IssuedAt:  jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app JWT: %w", err)
	}
	return signed, nil
}
