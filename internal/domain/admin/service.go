// Package admin handles the platform administrator account. There is a
// single admin whose credentials come from configuration rather than the
// database.
package admin

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/platform/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	email      string
	password   string
	adminID    uuid.UUID
	signingKey []byte
}

func NewService(email, password string, signingKey []byte) *Service {
	email = strings.ToLower(strings.TrimSpace(email))
	return &Service{
		email:      email,
		password:   password,
		adminID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("medibook:admin:"+email)),
		signingKey: signingKey,
	}
}

// Login checks the configured credentials and issues an admin token.
func (s *Service) Login(email, password string) (string, error) {
	emailOK := strings.EqualFold(strings.TrimSpace(email), s.email)
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return auth.IssueToken(s.signingKey, s.adminID.String(), auth.RoleAdmin)
}
