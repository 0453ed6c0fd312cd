// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted by LoadCredentials. Secrets stay out of
// the config file; they are read from the process environment or an
// optional .env file in the working directory.
const (
	// EnvS3AccessKey names the access key variable for the s3 backend.
	EnvS3AccessKey = "PYSHIP_S3_ACCESS_KEY"
	// EnvS3SecretKey names the secret key variable for the s3 backend.
	EnvS3SecretKey = "PYSHIP_S3_SECRET_KEY"
	// EnvHTTPToken names the bearer token variable for the http backend.
	EnvHTTPToken = "PYSHIP_HTTP_TOKEN"
)

// Credentials holds secrets for the registration backends.
type Credentials struct {
	// S3AccessKey authenticates against the object store.
	S3AccessKey string
	// S3SecretKey authenticates against the object store.
	S3SecretKey string
	// HTTPToken is sent as a bearer token by the http backend.
	HTTPToken string
}

// LoadCredentials reads backend secrets from the environment. A .env file
// in the working directory is merged in first when present; variables
// already set in the real environment win.
func LoadCredentials() Credentials {
	_ = godotenv.Load()

	return Credentials{
		S3AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv(EnvS3AccessKey)), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		S3SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv(EnvS3SecretKey)), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		HTTPToken:   strings.TrimSpace(os.Getenv(EnvHTTPToken)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
