package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for username, email and password and creates the
// account. On success the new session is kept, so the user is logged in.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	account, err := a.authService.Register(ctx, userName, email, password)
	if err != nil {
		printlnFn("Registration unsuccessful:", describe(err))
		return err
	}

	printlnFn(fmt.Sprintf("Registered %s <%s>", account.UserName, account.Email))
	return nil
}

// Login prompts for credentials and exchanges them for an access token.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.writer())
	if err != nil {
		return err
	}

	password, err := getPassword(a.writer())
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	session, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		a.log().Debug(ctx, "Login failed", "error", err.Error())
		printlnFn("Login unsuccessful:", describe(err))
		return err
	}

	a.setMode(ModeOnline)
	if session.ExpiresIn > 0 {
		printlnFn(fmt.Sprintf("Login successful, token valid for %s", session.ExpiresIn))
	} else {
		printlnFn("Login successful")
	}
	return nil
}

// WhoAmI prints the account the current token belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	account, err := a.authService.WhoAmI(ctx)
	if err != nil {
		printlnFn("whoami:", describe(err))
		return err
	}

	state := "active"
	if !account.Active {
		state = "inactive"
	}
	printlnFn(fmt.Sprintf("%s <%s> id=%s (%s)", account.UserName, account.Email, account.ID, state))
	return nil
}

// Logout drops the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		printlnFn("logout:", describe(err))
		return err
	}
	printlnFn("Logged out")
	return nil
}

// describe turns client errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "could not validate credentials"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrInactive):
		return "account is inactive"
	case errors.Is(err, client.ErrNotLoggedIn):
		return "not logged in"
	default:
		return err.Error()
	}
}
