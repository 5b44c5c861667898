package main

import (
	"context"

	"github.com/desertthunder/codecatch/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the redirect catcher until ctx is cancelled.
//
// With --open the provider's authorize URL is opened once the listener is bound.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configure(cmd)
	if err != nil {
		return err
	}

	var ready func(string)
	if cmd.Bool("open") {
		ready = func(url string) {
			auth, err := config.OAuth.Authorize(url)
			if err != nil {
				r.logger.Warn("cannot build authorize URL", "error", err)
				return
			}
			if err := r.browse(auth.URL); err != nil {
				r.logger.Warnf("failed to open browser %v", err)
				r.logger.Info("open this URL manually", "url", auth.URL)
			}
		}
	}

	srv := server.New(server.Options{
		Config:  config,
		Console: r.output,
		Logger:  r.logger,
		Ready:   ready,
	})

	return srv.Run(ctx)
}
