package main

import (
	"context"

	"github.com/desertthunder/codecatch/internal/ui"
	"github.com/urfave/cli/v3"
)

// Authorize prints the provider's authorize URL with the catcher as redirect URI.
//
// The code that comes back is shown by the catcher; nothing here exchanges it.
func (r *Runner) Authorize(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configure(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("client-id") {
		config.OAuth.ClientID = cmd.String("client-id")
	}
	if cmd.IsSet("scope") {
		config.OAuth.Scopes = cmd.StringSlice("scope")
	}
	if cmd.IsSet("pkce") {
		config.OAuth.PKCE = cmd.Bool("pkce")
	}

	redirectURL := config.Server.URL()
	auth, err := config.OAuth.Authorize(redirectURL)
	if err != nil {
		return err
	}
	r.logger.Debug("authorize URL built", "redirect_uri", redirectURL, "pkce", auth.Verifier != "")

	r.writePlain("%s\n", ui.Styles.Title("Authorize URL"))
	r.writePlain("%s\n\n", auth.URL)
	r.writePlain("State:    %s\n", auth.State)
	if auth.Verifier != "" {
		r.writePlain("Verifier: %s\n", auth.Verifier)
	}

	if cmd.Bool("open") {
		if err := r.browse(auth.URL); err != nil {
			r.logger.Warnf("failed to open browser %v", err)
			r.writePlain("\n%s\n", ui.Styles.Warn("⚠ Could not open browser automatically."))
		}
	}

	r.writePlain("\n%s\n", ui.Styles.Help("Run `codecatch serve` to catch the redirect at "+redirectURL))
	return nil
}
