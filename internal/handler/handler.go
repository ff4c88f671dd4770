package handler

import (
	"time"

	"github.com/pascaldekloe/jwt"

	"github.com/cradoe/verime/internal/config"
)

const sessionTokenTTL = 24 * time.Hour

// generateSessionToken mints the HS256 token returned by both the password
// and OTP login flows.
func generateSessionToken(cfg *config.Config, userID string) (string, time.Time, error) {
	var claims jwt.Claims
	claims.Subject = userID

	expiry := time.Now().Add(sessionTokenTTL)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = cfg.BaseURL
	claims.Audiences = []string{cfg.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(cfg.Jwt.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return string(jwtBytes), expiry, nil
}
