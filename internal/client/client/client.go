package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email string, password []byte) (*models.Account, *models.Session, error)
	Login(ctx context.Context, username string, password []byte) (*models.Session, error)
	WhoAmI(ctx context.Context) (*models.Account, error)
	// SetAccessToken replaces the token attached to outgoing calls; "" stops
	// sending one.
	SetAccessToken(token string)
}
