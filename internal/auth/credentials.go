package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials holds the single configured admin account.
// When passwordHash is set it takes precedence over the plain password.
type AdminCredentials struct {
	username     string
	password     string
	passwordHash string
}

func NewAdminCredentials(username, password, passwordHash string) *AdminCredentials {
	return &AdminCredentials{
		username:     username,
		password:     password,
		passwordHash: passwordHash,
	}
}

func (c *AdminCredentials) Check(username, password string) bool {
	if c.username == "" || username == "" || password == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	var passOK bool
	if c.passwordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.passwordHash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) == 1
	}

	return userOK && passOK
}

// HashAdminPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashAdminPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
