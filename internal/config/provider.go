// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions selects where configuration is read from. The zero value
// searches the platform config directory, then the working directory.
type LoadOptions struct {
	// ConfigFilePath reads exactly this file, failing if it is absent.
	ConfigFilePath string
	// ConfigDirPath searches this directory instead of the platform one.
	ConfigDirPath string
}

// FileProvider loads configuration from CUE files on disk. Unlike the
// package-level Load it keeps no cache: every call re-reads the source.
type FileProvider struct{}

// NewProvider returns a FileProvider ready for use.
func NewProvider() *FileProvider {
	return &FileProvider{}
}

// Load resolves and reads the configuration selected by opts.
func (*FileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	return cfg, err
}
