// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/codecatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// globalFlags are declared on the root command and visible to every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   shared.DefaultConfigPath,
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Host to listen on (default from config: localhost)",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to listen on, 0 picks a free port (default from config: 5000)",
		},
		&cli.StringFlag{
			Name:  "path",
			Usage: "Redirect path announced on startup (default from config: /auth)",
		},
		&cli.BoolFlag{
			Name:  "escape",
			Usage: "HTML-escape the code and path instead of echoing them verbatim",
		},
		&cli.FloatFlag{
			Name:  "rate-limit",
			Usage: "Maximum requests per second, 0 disables throttling",
		},
		&cli.BoolFlag{
			Name:    "open",
			Aliases: []string{"o"},
			Usage:   "Open the provider's authorize URL in the browser",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Shorthand for --log-level debug",
		},
	}
}

// serveCommand runs the redirect catcher
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Listen for the OAuth redirect and show the authorization code (default)",
		Action: r.Serve,
	}
}

// authorizeCommand prints the provider's authorize URL
func authorizeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "authorize",
		Aliases: []string{"url"},
		Usage:   "Print the authorize URL that redirects to the catcher",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pkce",
				Usage: "Add a PKCE S256 challenge and print its verifier",
			},
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "OAuth client ID (default from config)",
			},
			&cli.StringSliceFlag{
				Name:  "scope",
				Usage: "Scope to request, repeatable (default from config)",
			},
		},
		Action: r.Authorize,
	}
}

// initCommand writes the example configuration file
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a configuration file from the built-in example",
		Action: r.Init,
	}
}

// configCommand prints the effective configuration
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON instead of TOML",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.ShowConfig,
	}
}
