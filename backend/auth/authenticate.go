package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
)

// ErrInvalidCredentials covers every login mismatch; callers cannot tell
// which field was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type CredentialStore interface {
	FindByIdentity(ctx context.Context, identity models.Identity) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type Authenticator struct {
	Users  CredentialStore
	Hasher Hasher
}

func NewAuthenticator(users CredentialStore, hasher Hasher) *Authenticator {
	return &Authenticator{Users: users, Hasher: hasher}
}

// Authenticate looks up the exact identity tuple and checks the password.
// It never mutates the user.
func (a *Authenticator) Authenticate(ctx context.Context, identity models.Identity, password string) (*models.User, error) {
	user, err := a.Users.FindByIdentity(ctx, identity)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !a.Hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register stores a new user for identity. A taken identity surfaces as
// store.ErrConflict.
func (a *Authenticator) Register(ctx context.Context, identity models.Identity, password string) (*models.User, error) {
	digest, err := a.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:      identity.FirstName,
		LastName:       identity.LastName,
		MiddleName:     identity.MiddleName,
		Faculty:        identity.Faculty,
		Course:         identity.Course,
		PasswordHash:   digest,
		CompletedTests: models.Completions{},
	}
	if err := a.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}
