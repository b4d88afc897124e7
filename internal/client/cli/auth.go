package cli

import (
	"context"
	"os"

	"github.com/offnote/notesync/internal/common"
)

// getSimpleText, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getMultiline = GetMultiline
var getPassword = GetPassword

// Register prompts for name, email and password and creates an account. On
// success the user is logged in and the remote snapshot is pulled.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Register(ctx, name, email, string(password))
	if err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	a.setUserName(s.User.Email)
	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates. Login requires
// connectivity; offline restarts reuse the cached session instead.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}

	a.setUserName(s.User.Email)
	printlnFn("Logged in as", s.User.Email)
	return nil
}

// Logout clears the cached session. Unsynced local changes stay in the local
// store and are picked up after the next login.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	a.setUserName("")
	printlnFn("Logged out")
	return nil
}
