package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// TokenVerifier is satisfied by *Codec.
type TokenVerifier interface {
	VerifyAndDecode(token string) (map[string]any, error)
}

// UserLookup finds an identity by the username carried in "sub".
type UserLookup interface {
	GetUserByLogin(ctx context.Context, username string) (*models.User, error)
}

// Resolver turns a bearer token into the identity it was issued for.
type Resolver struct {
	tokens TokenVerifier
	users  UserLookup
}

func NewResolver(tokens TokenVerifier, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve verifies token and loads its subject. Codec errors are returned
// unchanged. A missing or unknown subject is common.ErrUnauthenticated, the
// same category as a bad token. Lookup I/O failures are wrapped as-is.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := r.tokens.VerifyAndDecode(token)
	if err != nil {
		return nil, err
	}

	subject, _ := claims[ClaimSubject].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", common.ErrUnauthenticated)
	}

	user, err := r.users.GetUserByLogin(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", common.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("lookup subject: %w", err)
	}
	return user, nil
}

// RequireActive passes active identities through and rejects the rest with
// common.ErrInactiveAccount. It is kept apart from Resolve so that some
// routes (reactivation) can accept inactive users.
func (r *Resolver) RequireActive(user *models.User) (*models.User, error) {
	if !user.Active {
		return nil, common.ErrInactiveAccount
	}
	return user, nil
}

// IsUnauthenticated reports whether err belongs to the single outward
// "unauthorized" category: bad credentials, bad signature, expired or
// malformed token, unknown subject.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrUnauthenticated) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrInvalidSignature) ||
		errors.Is(err, common.ErrTokenExpired)
}
