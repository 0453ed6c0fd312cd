// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pyship/pyship/internal/config"
)

// ConfigProvider is the slice of the config package the CLI consumes.
// Commands load through it so tests can substitute canned configurations.
type ConfigProvider interface {
	Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
}

// App is the composition root for the CLI layer. Every subcommand
// receives one and resolves configuration and output streams through it.
type App struct {
	Config ConfigProvider
	stdout io.Writer
	stderr io.Writer
}

// Dependencies lists the App's injection points. Nil fields fall back to
// production defaults: the file-backed provider and the process streams.
type Dependencies struct {
	Config ConfigProvider
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp assembles an App, filling gaps in deps with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig resolves the effective configuration for a command run.
//
// With an explicit --config path the file must load; errors are returned
// so the run aborts rather than silently ignoring a file the user named.
// On the default path a missing or broken config file degrades to built-in
// defaults with a warning, keeping the CLI operational on fresh installs.
func (a *App) loadConfig(ctx context.Context, configPath string) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: configPath})
	if err == nil {
		return cfg, nil
	}

	if configPath != "" {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	fmt.Fprintln(a.stderr, WarningStyle.Render("warning: ")+fmt.Sprintf("failed to load config, using defaults: %v", err))
	return config.DefaultConfig(), nil
}
