package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/navikt/onboarding-assistant/pkg/service"
)

type idTokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`

	jwt.RegisteredClaims
}

// DecodeUnverifiedClaims reads the payload segment of an id token WITHOUT
// checking its signature. It is only used when no verifier is configured,
// and the result may only feed display and allowlist matching. The access
// token remains the credential for every downstream call.
func DecodeUnverifiedClaims(rawIDToken string) (service.IdentityClaims, error) {
	var claims idTokenClaims

	_, _, err := jwt.NewParser().ParseUnverified(rawIDToken, &claims)
	if err != nil {
		return service.IdentityClaims{}, fmt.Errorf("parsing id token: %w", err)
	}

	return service.IdentityClaims{
		PreferredUsername: claims.PreferredUsername,
		Email:             claims.Email,
		Name:              claims.Name,
	}, nil
}
