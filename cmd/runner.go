package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/codecatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
	browse func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
	Browse func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Browse == nil {
		opts.Browse = shared.OpenBrowser
	}

	return &Runner{
		logger: opts.Logger,
		output: opts.Output,
		browse: opts.Browse,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authorizeCommand, initCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. Running it without a subcommand serves.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "codecatch",
		Usage:    "Catch an OAuth authorization code on a local redirect URL",
		Version:  Version,
		Flags:    globalFlags(),
		Action:   r.Serve,
		Commands: r.register(),
	}
}

// configure applies logging flags and resolves the configuration for cmd.
//
// Flags override values from the config file.
func (r *Runner) configure(cmd *cli.Command) (*shared.Config, error) {
	if cmd.Bool("debug") {
		r.logger.SetLevel(log.DebugLevel)
	} else if cmd.IsSet("log-level") {
		if err := shared.SetLogLevel(r.logger, cmd.String("log-level")); err != nil {
			return nil, err
		}
	}

	configPath := cmd.String("config")
	config, err := shared.ResolveConfig(configPath)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("configuration resolved", "path", configPath)

	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("path") {
		config.Server.Path = cmd.String("path")
	}
	if cmd.IsSet("rate-limit") {
		config.Server.RateLimit = cmd.Float("rate-limit")
	}
	if cmd.IsSet("escape") {
		config.Page.Escape = cmd.Bool("escape")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return config, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
