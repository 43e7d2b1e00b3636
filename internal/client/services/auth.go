// Package services contains application services for the gophauth client.
// This file defines the authentication service: register, login, whoami,
// logout and the liveness probe used by the CLI.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// AuthService defines authentication operations for the CLI.
//
// Register and Login leave the service signed in on success. WhoAmI drops
// the session when the server no longer accepts its token.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (*models.Account, error)
	Login(ctx context.Context, username string, password []byte) (*models.Session, error)
	WhoAmI(ctx context.Context) (*models.Account, error)
	Logout(ctx context.Context) error
	LoggedIn() bool
	UserName() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	userName string
	session  *models.Session
}

func NewAuthService(client client.Client) AuthService {
	return &authService{client: client}
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) (*models.Account, error) {
	account, session, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	a.userName = username
	if account != nil {
		a.userName = account.UserName
	}
	a.session = session
	return account, nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Session, error) {
	session, err := a.client.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	a.userName = username
	a.session = session
	return session, nil
}

func (a *authService) WhoAmI(ctx context.Context) (*models.Account, error) {
	if !a.LoggedIn() {
		return nil, client.ErrNotLoggedIn
	}
	account, err := a.client.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.forget()
		}
		return nil, err
	}
	return account, nil
}

// Logout forgets the local session. Tokens are stateless, so the server is
// not contacted.
func (a *authService) Logout(ctx context.Context) error {
	if !a.LoggedIn() {
		return client.ErrNotLoggedIn
	}
	a.forget()
	return nil
}

func (a *authService) forget() {
	a.client.SetAccessToken("")
	a.session = nil
	a.userName = ""
}

func (a *authService) LoggedIn() bool {
	return a.session != nil && a.session.AccessToken != ""
}

func (a *authService) UserName() string {
	return a.userName
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
