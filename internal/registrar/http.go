// SPDX-License-Identifier: MPL-2.0

package registrar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// defaultHTTPTimeout bounds a single registration request.
	defaultHTTPTimeout = 60 * time.Second

	// maxErrorBodyBytes is the upper bound on the error body quoted back
	// to the user when the endpoint rejects a registration.
	maxErrorBodyBytes = 8 << 10

	// formFieldName is the multipart field the intake endpoint reads.
	formFieldName = "file"
)

// HTTP posts registered files to a cluster intake endpoint as
// multipart/form-data, one request per file.
type HTTP struct {
	endpoint  string
	client    *http.Client
	token     string
	userAgent string
}

// HTTPOption configures an HTTP registrar during construction.
type HTTPOption func(*HTTP)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = c
	}
}

// WithToken sets a bearer token attached to every registration request.
func WithToken(token string) HTTPOption {
	return func(h *HTTP) {
		h.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// NewHTTP validates the intake endpoint and returns a registrar posting
// to it.
func NewHTTP(endpoint string, opts ...HTTPOption) (*HTTP, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("registration endpoint is required")
	}

	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("registration endpoint %q is not a valid http(s) URL", endpoint)
	}

	h := &HTTP{
		endpoint:  endpoint,
		client:    &http.Client{Timeout: defaultHTTPTimeout},
		userAgent: "pyship",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register uploads path under its base name. Any non-2xx response fails
// the registration, quoting a bounded slice of the response body.
func (h *HTTP) Register(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(formFieldName, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", h.userAgent)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach registration endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("registration endpoint returned %s: %s",
			resp.Status, strings.TrimSpace(string(snippet)))
	}

	// Drain the rest so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
