// Package auth verifies employee credentials for the portal login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Account is a single login the static verifier accepts.
type Account struct {
	SubjectID    string
	Password     string
	PasswordHash string
	DisplayName  string
	Department   string
}

// StaticVerifier accepts exactly one configured account.
type StaticVerifier struct {
	identity portal.Identity
	hash     []byte
}

// NewStaticVerifier builds a verifier for acct. When acct.PasswordHash is empty
// the plain password is hashed with bcrypt once at construction.
func NewStaticVerifier(acct Account) (*StaticVerifier, error) {
	if strings.TrimSpace(acct.SubjectID) == "" {
		return nil, errors.New("account subject id is required")
	}
	hash := []byte(acct.PasswordHash)
	if len(hash) == 0 {
		if acct.Password == "" {
			return nil, errors.New("account password or password hash is required")
		}
		generated, err := bcrypt.GenerateFromPassword([]byte(acct.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = generated
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &StaticVerifier{
		identity: portal.Identity{
			SubjectID:   acct.SubjectID,
			DisplayName: acct.DisplayName,
			Department:  acct.Department,
		},
		hash: hash,
	}, nil
}

// Verify returns the account identity when subjectID and password match.
func (v *StaticVerifier) Verify(_ context.Context, subjectID, password string) (portal.Identity, error) {
	if subjectID != v.identity.SubjectID {
		return portal.Identity{}, portal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
		return portal.Identity{}, portal.ErrInvalidCredentials
	}
	return v.identity, nil
}
