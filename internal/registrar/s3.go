// SPDX-License-Identifier: MPL-2.0

package registrar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// dedupeCacheSize bounds the per-process registry of shipped digests.
const dedupeCacheSize = 512

// S3Config carries the connection settings for an S3-compatible staging
// bucket. Credentials are expected to arrive from the environment, never
// from a config file on disk.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// S3 stages registered files in an S3-compatible bucket that cluster
// workers read from. The bucket is created lazily on first use.
//
// Ship runs tend to re-register the same artifacts over and over, so an
// LRU of content digests (keyed by base name, the remote identity) skips
// uploads of unchanged files within one process.
type S3 struct {
	client *minio.Client
	bucket string
	prefix string
	region string
	logger *log.Logger

	initOnce sync.Once
	initErr  error

	shipped *lru.Cache[string, string]
}

// NewS3 validates cfg and returns a bucket-backed registrar. A nil logger
// falls back to a stderr logger.
func NewS3(cfg S3Config, logger *log.Logger) (*S3, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init s3 client: %w", err)
	}

	shipped, err := lru.New[string, string](dedupeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to init dedupe cache: %w", err)
	}

	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "registrar"})
	}

	return &S3{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		region:  region,
		logger:  logger,
		shipped: shipped,
	}, nil
}

// ensureBucket creates the staging bucket on first use.
func (s *S3) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Register uploads path to the bucket under its base name (below the
// configured prefix). An unchanged file already shipped by this process
// is skipped.
func (s *S3) Register(ctx context.Context, path string) error {
	name := filepath.Base(path)

	digest, err := fileDigest(path)
	if err != nil {
		return err
	}
	if prev, ok := s.shipped.Get(name); ok && prev == digest {
		s.logger.Debug("Skipping unchanged file", "name", name)
		return nil
	}

	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket %s: %w", s.bucket, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	key := s.objectKey(name)
	if _, err := s.client.PutObject(ctx, s.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentTypeFor(name),
	}); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.shipped.Add(name, digest)
	return nil
}

// objectKey places name below the configured prefix.
func (s *S3) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// contentTypeFor picks the MIME type stored with an uploaded artifact.
func contentTypeFor(name string) string {
	if filepath.Ext(name) == ".zip" {
		return "application/zip"
	}
	return "application/octet-stream"
}

// fileDigest returns the hex SHA-256 of a file's contents.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
