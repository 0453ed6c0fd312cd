// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// releasesPerPage is the page size requested from the releases API.
	releasesPerPage = 30

	// maxReleasePages bounds pagination so a misbehaving Link header
	// cannot keep the client requesting forever.
	maxReleasePages = 3

	// maxAPIBody caps JSON response reads at 10 MB.
	maxAPIBody = 10 << 20
)

// ErrReleaseNotFound reports that the requested tag has no release.
var ErrReleaseNotFound = errors.New("release not found")

// RateLimitError reports an exhausted GitHub API quota.
type RateLimitError struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// Release is a published GitHub release and its downloadable assets.
type Release struct {
	TagName    string
	Name       string
	Prerelease bool
	Draft      bool
	Assets     []Asset
	HTMLURL    string
	CreatedAt  string
}

// Asset is one downloadable file attached to a Release.
type Asset struct {
	Name               string
	BrowserDownloadURL string
	Size               int64
	ContentType        string
}

// asset returns the named asset, or ErrAssetNotFound.
func (r *Release) asset(name string) (*Asset, error) {
	for i := range r.Assets {
		if r.Assets[i].Name == name {
			return &r.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("asset %q not found in release: %w", name, ErrAssetNotFound)
}

// releaseJSON and assetJSON mirror the API wire format.
type releaseJSON struct {
	TagName    string      `json:"tag_name"`
	Name       string      `json:"name"`
	Prerelease bool        `json:"prerelease"`
	Draft      bool        `json:"draft"`
	HTMLURL    string      `json:"html_url"`
	CreatedAt  string      `json:"created_at"`
	Assets     []assetJSON `json:"assets"`
}

type assetJSON struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
}

func (r releaseJSON) export() Release {
	assets := make([]Asset, 0, len(r.Assets))
	for _, a := range r.Assets {
		assets = append(assets, Asset(a))
	}
	return Release{
		TagName:    r.TagName,
		Name:       r.Name,
		Prerelease: r.Prerelease,
		Draft:      r.Draft,
		Assets:     assets,
		HTMLURL:    r.HTMLURL,
		CreatedAt:  r.CreatedAt,
	}
}

// GitHubClient talks to the GitHub Releases API for one repository.
type GitHubClient struct {
	httpClient *http.Client
	owner      string
	repo       string
	baseURL    string
	token      string
	userAgent  string
}

// ClientOption configures a GitHubClient.
type ClientOption func(*GitHubClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) { g.httpClient = c }
}

// WithBaseURL points the client at a different API root, which is how the
// tests substitute an httptest server.
func WithBaseURL(base string) ClientOption {
	return func(g *GitHubClient) { g.baseURL = strings.TrimRight(base, "/") }
}

// WithToken authenticates requests. Authenticated callers get 5000
// requests per hour instead of 60.
func WithToken(token string) ClientOption {
	return func(g *GitHubClient) { g.token = token }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *GitHubClient) { g.userAgent = ua }
}

// WithRepo retargets the client at another owner/name pair.
func WithRepo(owner, repo string) ClientOption {
	return func(g *GitHubClient) {
		g.owner = owner
		g.repo = repo
	}
}

// NewGitHubClient returns a client for the pyship releases repository.
func NewGitHubClient(opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: http.DefaultClient,
		owner:      "pyship",
		repo:       "pyship",
		baseURL:    "https://api.github.com",
		userAgent:  "pyship/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListReleases returns the repository's stable releases, newest semver
// first. Drafts and pre-releases are filtered out client-side, and
// pagination stops after maxReleasePages.
func (c *GitHubClient) ListReleases(ctx context.Context) ([]Release, error) {
	pageURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.baseURL, c.owner, c.repo, releasesPerPage)

	var stable []Release
	for range maxReleasePages {
		if pageURL == "" {
			break
		}

		resp, err := c.do(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}

		page, next, err := readReleasePage(resp)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}

		for _, r := range page {
			if r.Draft || r.Prerelease {
				continue
			}
			stable = append(stable, r)
		}
		pageURL = next
	}

	// Invalid tags compare as smallest and end up last. The sort is
	// stable so equal tags keep their API order.
	slices.SortStableFunc(stable, func(a, b Release) int {
		return semver.Compare(b.TagName, a.TagName)
	})

	return stable, nil
}

// readReleasePage consumes one response of the paginated releases listing
// and returns the decoded page plus the next page URL, if any.
func readReleasePage(resp *http.Response) ([]Release, string, error) {
	defer resp.Body.Close()

	if err := rateLimited(resp); err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw []releaseJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBody)).Decode(&raw); err != nil {
		return nil, "", fmt.Errorf("decoding releases: %w", err)
	}

	page := make([]Release, 0, len(raw))
	for _, r := range raw {
		page = append(page, r.export())
	}
	return page, nextPage(resp.Header.Get("Link")), nil
}

// GetReleaseByTag returns the release published under tag (for example
// "v1.2.0"), or ErrReleaseNotFound.
func (c *GitHubClient) GetReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	tagURL := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, tag)

	resp, err := c.do(ctx, tagURL)
	if err != nil {
		return nil, fmt.Errorf("getting release %s: %w", tag, err)
	}
	defer resp.Body.Close()

	if err := rateLimited(resp); err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrReleaseNotFound
	default:
		return nil, fmt.Errorf("getting release %s: unexpected status %d", tag, resp.StatusCode)
	}

	var raw releaseJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBody)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("getting release %s: decoding response: %w", tag, err)
	}

	release := raw.export()
	return &release, nil
}

// DownloadAsset streams the asset at assetURL. The caller owns the
// returned body.
func (c *GitHubClient) DownloadAsset(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, assetURL)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", sanitizeURL(assetURL), err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading asset %s: unexpected status %d", sanitizeURL(assetURL), resp.StatusCode)
	}

	return resp.Body, nil
}

// do issues a GET with the standard GitHub API headers. The token is only
// attached for trusted hosts, so a download that redirects to a
// third-party CDN never carries it.
func (c *GitHubClient) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && trustedHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// rateLimited turns an exhausted X-RateLimit-Remaining header into a
// RateLimitError. Missing or malformed headers mean no verdict; the
// status code handling decides then.
func rateLimited(resp *http.Response) error {
	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || remaining > 0 {
		return nil
	}

	// Companion headers only feed the message, so their absence is fine.
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return &RateLimitError{
		Limit:     limit,
		Remaining: 0,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

// nextPage pulls the rel="next" target out of a Link header:
//
//	<https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func nextPage(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}

		_, rest, ok := strings.Cut(part, "<")
		if !ok {
			continue
		}
		target, _, ok := strings.Cut(rest, ">")
		if ok {
			return target
		}
	}
	return ""
}

// trustedHost reports whether reqURL may carry the auth token: the
// configured API host always, plus github.com itself when the client
// points at the real API (asset downloads live there).
func trustedHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// sanitizeURL strips query and fragment before a URL lands in an error
// message, keeping signed download parameters out of logs.
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
