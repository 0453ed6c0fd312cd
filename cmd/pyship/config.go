// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pyship/pyship/internal/config"
	"github.com/pyship/pyship/internal/issue"
	"github.com/pyship/pyship/internal/wizard"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `pyship config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pyship configuration",
		Long: `Manage pyship configuration.

Configuration is stored in:
  - Linux: ~/.config/pyship/config.cue
  - macOS: ~/Library/Application Support/pyship/config.cue
  - Windows: %APPDATA%\pyship\config.cue

Credentials for the http and s3 backends are never stored in the config
file; they are read from the environment (or a .env file) at run time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file",
		Long: `Create the configuration file.

Without flags, writes the default configuration unless a config file
already exists. With --interactive, walks through backend selection and
backend-specific settings, then writes the result (overwriting any
existing file).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactive, _ := cmd.Flags().GetBool("interactive")
			yes, _ := cmd.Flags().GetBool("yes")
			return initConfigFile(app, interactive, yes)
		},
	}
	initCmd.Flags().BoolP("interactive", "i", false, "walk through backend selection and settings")
	initCmd.Flags().BoolP("yes", "y", false, "with --interactive, accept defaults without prompting")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{})
			if err != nil {
				return err
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		if rendered, rerr := issue.Get(issue.ConfigLoadFailedId).Render("dark"); rerr == nil {
			fmt.Fprint(app.stderr, rendered)
		}
		return err
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	if path, perr := defaultConfigPath(); perr == nil && fileExists(path) {
		fmt.Fprintf(out, "%s: %s\n", NameStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", NameStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", NameStyle.Render("backend"), SuccessStyle.Render(string(cfg.Backend)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("extensions"))
	if len(cfg.Extensions) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, ext := range cfg.Extensions {
			fmt.Fprintf(out, "  - %s\n", SuccessStyle.Render(string(ext)))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("exclude"))
	if len(cfg.Exclude) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, name := range cfg.Exclude {
			fmt.Fprintf(out, "  - %s\n", SuccessStyle.Render(string(name)))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("local"))
	fmt.Fprintf(out, "  dist_dir: %s\n", renderOrDefault(SuccessStyle.Render(string(cfg.Local.DistDir)), cfg.Local.DistDir == "", defaultDistDir))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("http"))
	fmt.Fprintf(out, "  endpoint: %s\n", renderOrUnset(SuccessStyle.Render(string(cfg.HTTP.Endpoint)), cfg.HTTP.Endpoint == ""))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("s3"))
	fmt.Fprintf(out, "  endpoint: %s\n", renderOrUnset(SuccessStyle.Render(string(cfg.S3.Endpoint)), cfg.S3.Endpoint == ""))
	fmt.Fprintf(out, "  region: %s\n", renderOrDefault(SuccessStyle.Render(cfg.S3.Region), cfg.S3.Region == "", "us-east-1"))
	fmt.Fprintf(out, "  bucket: %s\n", renderOrUnset(SuccessStyle.Render(string(cfg.S3.Bucket)), cfg.S3.Bucket == ""))
	fmt.Fprintf(out, "  prefix: %s\n", renderOrUnset(SuccessStyle.Render(cfg.S3.Prefix), cfg.S3.Prefix == ""))
	fmt.Fprintf(out, "  use_ssl: %s\n", SuccessStyle.Render(strconv.FormatBool(cfg.S3.UseSSL)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", NameStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(out, "  verbose: %s\n", SuccessStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	return nil
}

// renderOrDefault shows the rendered value, or "(default: X)" when unset.
func renderOrDefault(rendered string, unset bool, def string) string {
	if unset {
		return SubtitleStyle.Render("(default: " + def + ")")
	}
	return rendered
}

// renderOrUnset shows the rendered value, or "(not configured)" when unset.
func renderOrUnset(rendered string, unset bool) string {
	if unset {
		return SubtitleStyle.Render("(not configured)")
	}
	return rendered
}

func initConfigFile(app *App, interactive, yes bool) error {
	cfgPath, err := defaultConfigPath()
	if err != nil {
		return err
	}

	if interactive {
		cfg, err := wizard.Run(wizard.Options{Yes: yes})
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(app.stdout, "%s Wrote configuration to %s\n", SuccessStyle.Render("✓"), cfgPath)
		return nil
	}

	if fileExists(cfgPath) {
		fmt.Fprintf(app.stdout, "Configuration already exists at %s\n", cfgPath)
		fmt.Fprintf(app.stdout, "Run %s to replace it.\n", NameStyle.Render("pyship config init --interactive"))
		return nil
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(app *App) error {
	path, err := defaultConfigPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", filepath.Dir(path))
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)

	return nil
}

func setConfigValue(ctx context.Context, app *App, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return err
	}

	switch key {
	case "backend":
		b := config.Backend(value)
		if valid, errs := b.IsValid(); !valid {
			return errs[0]
		}
		cfg.Backend = b

	case "extensions":
		exts, err := parseExtensionList(value)
		if err != nil {
			return err
		}
		cfg.Extensions = exts

	case "exclude":
		names, err := parseExcludeList(value)
		if err != nil {
			return err
		}
		cfg.Exclude = names

	case "local.dist_dir":
		cfg.Local.DistDir = config.DistDirPath(value)

	case "http.endpoint":
		cfg.HTTP.Endpoint = config.EndpointURL(value)

	case "s3.endpoint":
		cfg.S3.Endpoint = config.EndpointURL(value)

	case "s3.region":
		cfg.S3.Region = value

	case "s3.bucket":
		cfg.S3.Bucket = config.BucketName(value)

	case "s3.prefix":
		cfg.S3.Prefix = value

	case "s3.use_ssl":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q for %s (use true or false)", value, key)
		}
		cfg.S3.UseSSL = b

	case "ui.color_scheme":
		cs := config.ColorScheme(value)
		if valid, errs := cs.IsValid(); !valid {
			return errs[0]
		}
		cfg.UI.ColorScheme = cs

	case "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q for %s (use true or false)", value, key)
		}
		cfg.UI.Verbose = b

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: backend, extensions, exclude, local.dist_dir, http.endpoint, s3.endpoint, s3.region, s3.bucket, s3.prefix, s3.use_ssl, ui.color_scheme, ui.verbose", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

// parseExtensionList parses a comma-separated extension list, validating
// each entry.
func parseExtensionList(value string) ([]config.Extension, error) {
	var exts []config.Extension
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ext := config.Extension(part)
		if valid, errs := ext.IsValid(); !valid {
			return nil, errs[0]
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

// parseExcludeList parses a comma-separated exclude list, validating
// each entry.
func parseExcludeList(value string) ([]config.ExcludeName, error) {
	var names []config.ExcludeName
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := config.ExcludeName(part)
		if valid, errs := name.IsValid(); !valid {
			return nil, errs[0]
		}
		names = append(names, name)
	}
	return names, nil
}

// defaultConfigPath is where the config file lives under the platform
// config directory.
func defaultConfigPath() (string, error) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
