package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/codecatch/internal/shared"
	"github.com/desertthunder/codecatch/internal/ui"
	"github.com/urfave/cli/v3"
)

// Init writes the built-in example configuration to the --config path.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Infof("config file created at %v", configPath)
	return r.writePlain("%s %s\n", ui.Styles.OK("✓ Created"), configPath)
}

// ShowConfig prints the configuration after file and flag values are merged.
func (r *Runner) ShowConfig(ctx context.Context, cmd *cli.Command) error {
	config, err := r.configure(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(config, cmd.Bool("pretty"))
	}

	data, err := config.Encode()
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
