// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pyship/pyship/internal/config"
	"github.com/pyship/pyship/internal/issue"
	"github.com/pyship/pyship/internal/registrar"
	"github.com/pyship/pyship/pkg/ship"

	"github.com/charmbracelet/log"
)

// defaultDistDir is where the local backend stages artifacts when neither
// the config file nor --dist-dir names a directory.
const defaultDistDir = "dist"

// registrarOverrides carries the ship-command flags that override the
// configured backend selection.
type registrarOverrides struct {
	// backend is the --backend flag value (empty = use config).
	backend string
	// distDir is the --dist-dir flag value; setting it forces the local
	// backend.
	distDir string
	// dryRun is the --dry-run flag; it forces the discard backend.
	dryRun bool
}

// resolveBackend decides the effective backend. --dry-run wins over
// everything, then --dist-dir, then --backend, then the configured value.
func resolveBackend(cfg *config.Config, ov registrarOverrides) (config.Backend, error) {
	if ov.dryRun {
		return config.BackendDiscard, nil
	}
	if ov.distDir != "" {
		return config.BackendLocal, nil
	}

	backend := cfg.Backend
	if ov.backend != "" {
		backend = config.Backend(ov.backend)
	}

	if valid, errs := backend.IsValid(); !valid {
		return "", issue.NewErrorContext().
			WithOperation("selecting the registration backend").
			WithResource(string(backend)).
			WithSuggestion("valid backends are: discard, local, http, s3").
			WithSuggestion("run 'pyship config show' to see the configured backend").
			Wrap(errs[0]).
			Build()
	}
	return backend, nil
}

// buildRegistrar constructs the registrar for the resolved backend.
// Credentials for the http and s3 backends come from the environment,
// never from the config file.
func buildRegistrar(cfg *config.Config, ov registrarOverrides, logger *log.Logger) (ship.Registrar, config.Backend, error) {
	backend, err := resolveBackend(cfg, ov)
	if err != nil {
		return nil, "", err
	}

	switch backend {
	case config.BackendDiscard:
		return registrar.NewDiscard(logger), backend, nil

	case config.BackendLocal:
		dir := ov.distDir
		if dir == "" {
			dir = string(cfg.Local.DistDir)
		}
		if dir == "" {
			dir = defaultDistDir
		}
		reg, err := registrar.NewLocalDir(dir)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("preparing the distribution directory").
				WithResource(dir).
				WithSuggestion("check that the path is writable").
				Wrap(err).
				Build()
		}
		return reg, backend, nil

	case config.BackendHTTP:
		endpoint := string(cfg.HTTP.Endpoint)
		if endpoint == "" {
			return nil, "", issue.NewErrorContext().
				WithOperation("configuring the http backend").
				WithSuggestion("set http.endpoint in the config file").
				WithSuggestion("run 'pyship config init --interactive' to set it up").
				Wrap(config.ErrInvalidEndpointURL).
				Build()
		}

		creds := config.LoadCredentials()
		opts := []registrar.HTTPOption{registrar.WithUserAgent("pyship/" + Version)}
		if creds.HTTPToken != "" {
			opts = append(opts, registrar.WithToken(creds.HTTPToken))
		}
		reg, err := registrar.NewHTTP(endpoint, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("configuring the http backend: %w", err)
		}
		return reg, backend, nil

	case config.BackendS3:
		creds := config.LoadCredentials()
		reg, err := registrar.NewS3(registrar.S3Config{
			Endpoint:  string(cfg.S3.Endpoint),
			Region:    cfg.S3.Region,
			AccessKey: creds.S3AccessKey,
			SecretKey: creds.S3SecretKey,
			Bucket:    string(cfg.S3.Bucket),
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		}, logger)
		if err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("configuring the s3 backend").
				WithResource(string(cfg.S3.Bucket)).
				WithSuggestion("set s3.endpoint and s3.bucket in the config file").
				WithSuggestion(fmt.Sprintf("export %s and %s for credentials", config.EnvS3AccessKey, config.EnvS3SecretKey)).
				Wrap(err).
				Build()
		}
		return reg, backend, nil
	}

	// resolveBackend validated the name; this is unreachable.
	return nil, "", fmt.Errorf("backend %s: %w", backend, config.ErrInvalidBackend)
}
