package commands

import (
	"context"
	"fmt"

	"github.com/klabast/wb-services/pjhoy-kalender/internal/app"
)

// Login handles the login subcommand
func Login(ctx context.Context, opts Options, args []string) error {
	fs := newFlagSet("login", "Logs in to the PJHOY extranet and saves the session cookies.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	creds := cfg.Credentials()
	if creds.Password == "" {
		creds.Password, err = promptPassword(fmt.Sprintf("Password for %s: ", creds.LoginID()))
		if err != nil {
			return err
		}
	}

	sessions := app.NewSessionStore(cfg.SessionPath(), cfg.SessionCookies)
	auth := app.NewAuthenticator(cfg, app.NewHTTPClient(cfg), sessions)
	if _, err := auth.Login(ctx, creds); err != nil {
		return err
	}

	fmt.Println("Login successful and cookies saved.")
	return nil
}
