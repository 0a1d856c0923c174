package service

import "github.com/geocoder89/devevent/internal/auth"

type TokenVerifier interface {
	VerifyAdminToken(token string) (*auth.AdminClaims, error)
}

// authorizeAdmin re-checks the caller's token on every mutation, independent of
// the request gate in front of /admin.
func authorizeAdmin(tokens TokenVerifier, token string) error {
	if token == "" {
		return ErrUnauthorized
	}

	claims, err := tokens.VerifyAdminToken(token)
	if err != nil || !claims.IsAdmin() {
		return ErrForbidden
	}

	return nil
}
