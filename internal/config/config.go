// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pyship/pyship/internal/issue"
	"github.com/pyship/pyship/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "pyship"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"

	// configBasename is the config file name as it appears on disk.
	configBasename = ConfigFileName + "." + ConfigFileExt
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the pyship configuration directory: %APPDATA%\pyship
// on Windows, ~/Library/Application Support/pyship on macOS, and
// $XDG_CONFIG_HOME/pyship (defaulting to ~/.config/pyship) elsewhere.
//
//nolint:revive // config.ConfigDir stutters, but reads better than config.Dir at call sites
func ConfigDir() (string, error) {
	// Test override wins over the platform lookup.
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	root, err := configRoot()
	if err != nil {
		return "", err
	}

	return filepath.Join(root, AppName), nil
}

// configRoot resolves the per-user configuration root for the current
// platform.
func configRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming"), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	default: // Linux and others
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config"), nil
	}
}

// loadWithOptions performs option-driven config loading without touching
// package-level cache state. Callers that want caching wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	path, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", wrapLoadError(path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Cross-entry uniqueness is the one constraint the CUE schema cannot
	// express; per-entry shape is enforced by the schema itself.
	if err := uniqueEntries("extensions", "extension", cfg.Extensions); err != nil {
		return nil, "", wrapValidationError(err, "Remove the duplicated extensions entry")
	}
	if err := uniqueEntries("exclude", "exclude name", cfg.Exclude); err != nil {
		return nil, "", wrapValidationError(err, "Remove the duplicated exclude entry")
	}

	return &cfg, path, nil
}

// setDefaults seeds v with built-in defaults so a missing or partial
// config file still yields a complete Config.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("local.dist_dir", d.Local.DistDir)
	v.SetDefault("http.endpoint", d.HTTP.Endpoint)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.bucket", d.S3.Bucket)
	v.SetDefault("s3.prefix", d.S3.Prefix)
	v.SetDefault("s3.use_ssl", d.S3.UseSSL)
	v.SetDefault("ui.color_scheme", d.UI.ColorScheme)
	v.SetDefault("ui.verbose", d.UI.Verbose)
}

// resolveConfigFile picks the config file to read. An explicit path (the
// --config flag) must exist; otherwise the config directory is searched,
// then the working directory. Empty means no file was found and defaults
// apply.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'pyship config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		var err error
		cfgDir, err = ConfigDir()
		if err != nil {
			return "", err
		}
	}

	if path := filepath.Join(cfgDir, configBasename); fileExists(path) {
		return path, nil
	}
	if fileExists(configBasename) {
		return configBasename, nil
	}

	return "", nil
}

// wrapLoadError converts a CUE read/parse/validation failure into
// actionable guidance pointing at the offending file.
func wrapLoadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'pyship config --help' for configuration options").
		Wrap(err).
		BuildError()
}

// wrapValidationError converts a constraint violation into actionable
// guidance.
func wrapValidationError(err error, suggestion string) error {
	return issue.NewErrorContext().
		WithOperation("validate configuration").
		WithSuggestion(suggestion).
		Wrap(err).
		BuildError()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	configMap, err := decodeConfig(data, path)
	if err != nil {
		return err
	}

	// Merging preserves defaults for fields the file does not set.
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// decodeConfig validates CUE source against the embedded #Config schema
// and decodes it to a map for Viper.
//
// This stays on manual CUE plumbing: config fields are optional, so
// validation runs with Concrete(false), and Viper wants a map rather
// than a struct.
func decodeConfig(data []byte, path string) (map[string]any, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema)
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schema.Err())
	}

	file := ctx.CompileBytes(data, cue.Filename(path))
	if file.Err() != nil {
		return nil, cueutil.FormatError(file.Err(), path)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, cueutil.FormatError(err, path)
	}

	return configMap, nil
}

// uniqueEntries rejects duplicate values in a config list. The field
// parameter names the config section in error messages; noun names a
// single entry ("extension", "exclude name").
func uniqueEntries[T ~string](field, noun string, entries []T) error {
	seen := make(map[T]int, len(entries))
	for i, e := range entries {
		if first, ok := seen[e]; ok {
			return fmt.Errorf("%s[%d]: duplicate %s %q (same as %s[%d])", field, i, noun, string(e), field, first)
		}
		seen[e] = i
	}
	return nil
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// configFilePath returns the platform config file location, creating the
// config directory when missing.
func configFilePath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(cfgDir, configBasename), nil
}

// CreateDefaultConfig writes a default config file unless one already
// exists.
func CreateDefaultConfig() error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	if fileExists(path) {
		return nil
	}
	return writeConfigFile(path, DefaultConfig())
}

// Save writes cfg to the platform config file, replacing what is there.
func Save(cfg *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	return writeConfigFile(path, cfg)
}

func writeConfigFile(path string, cfg *Config) error {
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a CUE document accepted by the same schema
// Load enforces. Backend blocks with nothing set are omitted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pyship configuration file\n")
	sb.WriteString("// See https://github.com/pyship/pyship for documentation.\n\n")

	fmt.Fprintf(&sb, "backend: %q\n", cfg.Backend)

	writeQuotedList(&sb, "extensions", cfg.Extensions)
	writeQuotedList(&sb, "exclude", cfg.Exclude)

	if cfg.Local.DistDir != "" {
		fmt.Fprintf(&sb, "\nlocal: {\n\tdist_dir: %q\n}\n", cfg.Local.DistDir)
	}

	if cfg.HTTP.Endpoint != "" {
		fmt.Fprintf(&sb, "\nhttp: {\n\tendpoint: %q\n}\n", cfg.HTTP.Endpoint)
	}

	if cfg.S3.Endpoint != "" || cfg.S3.Bucket != "" {
		sb.WriteString("\ns3: {\n")
		if cfg.S3.Endpoint != "" {
			fmt.Fprintf(&sb, "\tendpoint: %q\n", cfg.S3.Endpoint)
		}
		if cfg.S3.Region != "" {
			fmt.Fprintf(&sb, "\tregion: %q\n", cfg.S3.Region)
		}
		if cfg.S3.Bucket != "" {
			fmt.Fprintf(&sb, "\tbucket: %q\n", cfg.S3.Bucket)
		}
		if cfg.S3.Prefix != "" {
			fmt.Fprintf(&sb, "\tprefix: %q\n", cfg.S3.Prefix)
		}
		fmt.Fprintf(&sb, "\tuse_ssl: %v\n", cfg.S3.UseSSL)
		sb.WriteString("}\n")
	}

	fmt.Fprintf(&sb, "\nui: {\n\tcolor_scheme: %q\n\tverbose: %v\n}\n", cfg.UI.ColorScheme, cfg.UI.Verbose)

	return sb.String()
}

// writeQuotedList renders a non-empty string list as a single-line CUE
// field.
func writeQuotedList[T ~string](sb *strings.Builder, field string, items []T) {
	if len(items) == 0 {
		return
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", string(item))
	}
	fmt.Fprintf(sb, "\n%s: [%s]\n", field, strings.Join(quoted, ", "))
}
