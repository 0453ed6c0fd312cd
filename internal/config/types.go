// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendDiscard logs each registration and drops it.
	BackendDiscard Backend = "discard"
	// BackendLocal copies registered files into a distribution directory.
	BackendLocal Backend = "local"
	// BackendHTTP posts registered files to an HTTP endpoint.
	BackendHTTP Backend = "http"
	// BackendS3 uploads registered files to an S3-compatible object store.
	BackendS3 Backend = "s3"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidBackend is returned when a Backend value is not recognized.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidExtension is returned when an Extension value is malformed.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrInvalidExcludeName is returned when an ExcludeName value is malformed.
	ErrInvalidExcludeName = errors.New("invalid exclude name")
	// ErrInvalidDistDirPath is returned when a DistDirPath value is whitespace-only.
	ErrInvalidDistDirPath = errors.New("invalid dist dir path")
	// ErrInvalidEndpointURL is returned when an EndpointURL value is whitespace-only.
	ErrInvalidEndpointURL = errors.New("invalid endpoint URL")
	// ErrInvalidBucketName is returned when a BucketName value is whitespace-only.
	ErrInvalidBucketName = errors.New("invalid bucket name")
	// ErrInvalidLocalConfig is the sentinel error wrapped by InvalidLocalConfigError.
	ErrInvalidLocalConfig = errors.New("invalid local config")
	// ErrInvalidHTTPConfig is the sentinel error wrapped by InvalidHTTPConfigError.
	ErrInvalidHTTPConfig = errors.New("invalid http config")
	// ErrInvalidS3Config is the sentinel error wrapped by InvalidS3ConfigError.
	ErrInvalidS3Config = errors.New("invalid s3 config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Backend specifies which registration backend to use.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	// It wraps ErrInvalidBackend for errors.Is() compatibility.
	InvalidBackendError struct {
		Value Backend
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Extension represents a file extension used to match Python sources.
	// A valid extension starts with a dot and has at least one more character,
	// e.g. ".py" or ".pyi".
	Extension string

	// InvalidExtensionError is returned when an Extension value does not start
	// with a dot or is too short. It wraps ErrInvalidExtension for errors.Is().
	InvalidExtensionError struct {
		Value Extension
	}

	// ExcludeName represents a directory basename skipped during scanning.
	// A valid name is non-empty and contains no path separators.
	ExcludeName string

	// InvalidExcludeNameError is returned when an ExcludeName value is empty
	// or contains path separators. It wraps ErrInvalidExcludeName for errors.Is().
	InvalidExcludeNameError struct {
		Value ExcludeName
	}

	// DistDirPath represents a filesystem path to the local distribution directory.
	// The zero value ("") is valid and means "use the default dist directory".
	// Non-zero values must not be whitespace-only.
	DistDirPath string

	// InvalidDistDirPathError is returned when a DistDirPath value is
	// non-empty but whitespace-only.
	InvalidDistDirPathError struct {
		Value DistDirPath
	}

	// EndpointURL represents a registration endpoint address.
	// The zero value ("") is valid and means "not configured".
	// Non-zero values must not be whitespace-only.
	EndpointURL string

	// InvalidEndpointURLError is returned when an EndpointURL value is
	// non-empty but whitespace-only.
	InvalidEndpointURLError struct {
		Value EndpointURL
	}

	// BucketName represents an object store bucket.
	// The zero value ("") is valid and means "not configured".
	// Non-zero values must not be whitespace-only.
	BucketName string

	// InvalidBucketNameError is returned when a BucketName value is
	// non-empty but whitespace-only.
	InvalidBucketNameError struct {
		Value BucketName
	}

	// InvalidLocalConfigError is returned when a LocalConfig has invalid fields.
	// It wraps ErrInvalidLocalConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidLocalConfigError struct {
		FieldErrors []error
	}

	// InvalidHTTPConfigError is returned when an HTTPConfig has invalid fields.
	// It wraps ErrInvalidHTTPConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidHTTPConfigError struct {
		FieldErrors []error
	}

	// InvalidS3ConfigError is returned when an S3Config has invalid fields.
	// It wraps ErrInvalidS3Config for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidS3ConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Backend selects the registration backend
		Backend Backend `json:"backend" mapstructure:"backend"`
		// Extensions sets the default source extensions to match
		Extensions []Extension `json:"extensions" mapstructure:"extensions"`
		// Exclude sets the default directory basenames to skip
		Exclude []ExcludeName `json:"exclude" mapstructure:"exclude"`
		// Local configures the local backend
		Local LocalConfig `json:"local" mapstructure:"local"`
		// HTTP configures the http backend
		HTTP HTTPConfig `json:"http" mapstructure:"http"`
		// S3 configures the s3 backend
		S3 S3Config `json:"s3" mapstructure:"s3"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// LocalConfig configures the local backend.
	LocalConfig struct {
		// DistDir is the directory registered files are copied into
		DistDir DistDirPath `json:"dist_dir" mapstructure:"dist_dir"`
	}

	// HTTPConfig configures the http backend.
	HTTPConfig struct {
		// Endpoint is the URL registered files are posted to
		Endpoint EndpointURL `json:"endpoint" mapstructure:"endpoint"`
	}

	// S3Config configures the s3 backend.
	S3Config struct {
		// Endpoint is the host:port of the object store
		Endpoint EndpointURL `json:"endpoint" mapstructure:"endpoint"`
		// Region is the bucket region (default: us-east-1)
		Region string `json:"region" mapstructure:"region"`
		// Bucket is the bucket registered files are uploaded into
		Bucket BucketName `json:"bucket" mapstructure:"bucket"`
		// Prefix is an optional key prefix for uploaded objects
		Prefix string `json:"prefix" mapstructure:"prefix"`
		// UseSSL enables TLS for object store connections (default: true)
		UseSSL bool `json:"use_ssl" mapstructure:"use_ssl"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the LocalConfig has valid fields.
// It delegates to DistDir.IsValid().
func (c LocalConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DistDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidLocalConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidLocalConfigError.
func (e *InvalidLocalConfigError) Error() string {
	return fmt.Sprintf("invalid local config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidLocalConfig for errors.Is() compatibility.
func (e *InvalidLocalConfigError) Unwrap() error { return ErrInvalidLocalConfig }

// IsValid returns whether the HTTPConfig has valid fields.
// It delegates to Endpoint.IsValid().
func (c HTTPConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Endpoint.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidHTTPConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHTTPConfigError.
func (e *InvalidHTTPConfigError) Error() string {
	return fmt.Sprintf("invalid http config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidHTTPConfig for errors.Is() compatibility.
func (e *InvalidHTTPConfigError) Unwrap() error { return ErrInvalidHTTPConfig }

// IsValid returns whether the S3Config has valid fields.
// It delegates to Endpoint.IsValid() and Bucket.IsValid(); Region, Prefix,
// and UseSSL need no validation.
func (c S3Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Endpoint.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Bucket.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidS3ConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidS3ConfigError.
func (e *InvalidS3ConfigError) Error() string {
	return fmt.Sprintf("invalid s3 config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidS3Config for errors.Is() compatibility.
func (e *InvalidS3ConfigError) Unwrap() error { return ErrInvalidS3Config }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to Backend.IsValid(), each Extensions and Exclude entry's
// IsValid(), Local.IsValid(), HTTP.IsValid(), S3.IsValid(), and UI.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, ext := range c.Extensions {
		if valid, fieldErrs := ext.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, name := range c.Exclude {
		if valid, fieldErrs := name.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if valid, fieldErrs := c.Local.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.HTTP.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.S3.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Error implements the error interface for InvalidBackendError.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid backend %q (valid: discard, local, http, s3)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidBackendError) Unwrap() error {
	return ErrInvalidBackend
}

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// IsValid returns whether the Backend is one of the defined backends,
// and a list of validation errors if it is not.
func (b Backend) IsValid() (bool, []error) {
	switch b {
	case BackendDiscard, BackendLocal, BackendHTTP, BackendS3:
		return true, nil
	default:
		return false, []error{&InvalidBackendError{Value: b}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the Extension.
func (x Extension) String() string { return string(x) }

// IsValid returns whether the Extension is valid.
// A valid extension starts with a dot and has at least one more character.
func (x Extension) IsValid() (bool, []error) {
	if len(x) < 2 || !strings.HasPrefix(string(x), ".") {
		return false, []error{&InvalidExtensionError{Value: x}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExtensionError.
func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("invalid extension %q: must start with a dot and name at least one character", e.Value)
}

// Unwrap returns ErrInvalidExtension for errors.Is() compatibility.
func (e *InvalidExtensionError) Unwrap() error { return ErrInvalidExtension }

// String returns the string representation of the ExcludeName.
func (n ExcludeName) String() string { return string(n) }

// IsValid returns whether the ExcludeName is valid.
// A valid name is non-empty and contains no path separators.
func (n ExcludeName) IsValid() (bool, []error) {
	if strings.TrimSpace(string(n)) == "" || strings.ContainsAny(string(n), `/\`) {
		return false, []error{&InvalidExcludeNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidExcludeNameError.
func (e *InvalidExcludeNameError) Error() string {
	return fmt.Sprintf("invalid exclude name %q: must be a bare directory name", e.Value)
}

// Unwrap returns ErrInvalidExcludeName for errors.Is() compatibility.
func (e *InvalidExcludeNameError) Unwrap() error { return ErrInvalidExcludeName }

// String returns the string representation of the DistDirPath.
func (p DistDirPath) String() string { return string(p) }

// IsValid returns whether the DistDirPath is valid.
// The zero value ("") is valid (means "use the default dist directory").
// Non-zero values must not be whitespace-only.
func (p DistDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDistDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDistDirPathError.
func (e *InvalidDistDirPathError) Error() string {
	return fmt.Sprintf("invalid dist dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidDistDirPath for errors.Is() compatibility.
func (e *InvalidDistDirPathError) Unwrap() error { return ErrInvalidDistDirPath }

// String returns the string representation of the EndpointURL.
func (u EndpointURL) String() string { return string(u) }

// IsValid returns whether the EndpointURL is valid.
// The zero value ("") is valid (means "not configured").
// Non-zero values must not be whitespace-only.
func (u EndpointURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	if strings.TrimSpace(string(u)) == "" {
		return false, []error{&InvalidEndpointURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEndpointURLError.
func (e *InvalidEndpointURLError) Error() string {
	return fmt.Sprintf("invalid endpoint URL %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidEndpointURL for errors.Is() compatibility.
func (e *InvalidEndpointURLError) Unwrap() error { return ErrInvalidEndpointURL }

// String returns the string representation of the BucketName.
func (b BucketName) String() string { return string(b) }

// IsValid returns whether the BucketName is valid.
// The zero value ("") is valid (means "not configured").
// Non-zero values must not be whitespace-only.
func (b BucketName) IsValid() (bool, []error) {
	if b == "" {
		return true, nil
	}
	if strings.TrimSpace(string(b)) == "" {
		return false, []error{&InvalidBucketNameError{Value: b}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBucketNameError.
func (e *InvalidBucketNameError) Error() string {
	return fmt.Sprintf("invalid bucket name %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidBucketName for errors.Is() compatibility.
func (e *InvalidBucketNameError) Unwrap() error { return ErrInvalidBucketName }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend:    BackendLocal,
		Extensions: []Extension{".py"},
		Exclude:    []ExcludeName{},
		Local: LocalConfig{
			DistDir: "", // Will use ./dist if empty
		},
		HTTP: HTTPConfig{},
		S3: S3Config{
			Region: "", // Will use us-east-1 if empty
			UseSSL: true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
