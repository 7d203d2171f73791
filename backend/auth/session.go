package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
)

// ErrUnauthenticated means the request carries no usable session. The
// wrapped detail is for logs only.
var ErrUnauthenticated = errors.New("unauthenticated")

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// Resolver turns a raw token into the user it was issued for.
type Resolver struct {
	Codec *TokenCodec
	Users UserFinder
}

func NewResolver(codec *TokenCodec, users UserFinder) *Resolver {
	return &Resolver{Codec: codec, Users: users}
}

// Resolve returns the live user behind token. Missing, invalid or expired
// tokens and tokens for unknown users fail with ErrUnauthenticated; only
// store failures come back as other errors.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrUnauthenticated)
	}

	session, err := r.Codec.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	id, err := strconv.ParseUint(session.SubjectID, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q is not an id", ErrUnauthenticated, session.SubjectID)
	}

	user, err := r.Users.FindByID(ctx, uint(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d not found", ErrUnauthenticated, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
