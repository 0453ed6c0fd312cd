// SPDX-License-Identifier: MPL-2.0

package config

import "context"

var (
	// globalConfig caches the loaded configuration for Get()/Load().
	globalConfig *Config

	// configPath records where the cached configuration was loaded from
	// ("" when built-in defaults are in effect).
	configPath string

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride forces loading from a specific config file,
	// set from the --config flag before any Load() call.
	configFilePathOverride string

	// errLastLoad records the most recent Load() failure so callers
	// using Get() can still surface it (e.g. as a startup warning).
	errLastLoad error
)

// Load returns the cached configuration, loading it from disk on first use.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		errLastLoad = err
		return nil, err
	}

	globalConfig = cfg
	configPath = path
	errLastLoad = nil
	return cfg, nil
}

// Get returns the loaded configuration, falling back to defaults when
// loading fails. The load error (if any) remains available through
// LastLoadError(); callers that must fail hard use Load() instead.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LastLoadError returns the error from the most recent failed Load(),
// or nil when the last load succeeded (or nothing has been loaded).
func LastLoadError() error {
	return errLastLoad
}

// ConfigFilePath returns the path of the config file backing the cached
// configuration. It is empty when defaults are in effect or nothing
// has been loaded yet.
func ConfigFilePath() string {
	return configPath
}

// SetConfigFilePathOverride forces subsequent loads to read the given file.
// The cache is invalidated so the override takes effect immediately.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
	globalConfig = nil
	configPath = ""
	errLastLoad = nil
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// ResetCache clears the cached configuration so the next Load() rereads
// from disk, preserving any overrides.
func ResetCache() {
	globalConfig = nil
	configPath = ""
	errLastLoad = nil
}

// Reset clears the cache and all overrides. Call from test cleanup to
// restore defaults.
func Reset() {
	globalConfig = nil
	configPath = ""
	configDirOverride = ""
	configFilePathOverride = ""
	errLastLoad = nil
}
