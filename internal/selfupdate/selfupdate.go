// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// maxBinarySize bounds the extracted binary at 500 MB, which stops a
// crafted archive from decompressing without limit.
const maxBinarySize = 500 << 20

// ErrInvalidVersion reports a version string that is not semver.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Test seams for the executable lookup, which has no honest in-process
// substitute.
var (
	osExecutable = os.Executable
	evalSymlinks = filepath.EvalSymlinks
)

// UpgradeCheck is the outcome of comparing the running binary against a
// release. TargetRelease is only set when an upgrade is both available
// and applicable; managed installs get a Message instead.
type UpgradeCheck struct {
	CurrentVersion   string
	LatestVersion    string
	TargetRelease    *Release
	InstallMethod    InstallMethod
	UpgradeAvailable bool
	Message          string
}

// Updater drives the upgrade flow end to end: install method detection,
// release lookup, checksum verification, and binary replacement.
type Updater struct {
	client         *GitHubClient
	currentVersion string
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithGitHubClient substitutes the release API client.
func WithGitHubClient(c *GitHubClient) UpdaterOption {
	return func(u *Updater) { u.client = c }
}

// NewUpdater returns an Updater for the binary running currentVersion.
func NewUpdater(currentVersion string, opts ...UpdaterOption) *Updater {
	u := &Updater{currentVersion: currentVersion}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = NewGitHubClient()
	}
	return u
}

// Check compares the running version against the latest stable release,
// or against targetVersion when given.
//
// Homebrew and go install binaries short-circuit to a package manager
// message without touching the API; replacing a file the package manager
// owns would only break the next brew upgrade.
func (u *Updater) Check(ctx context.Context, targetVersion string) (*UpgradeCheck, error) {
	execPath, err := executablePath()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path: %w", err)
	}

	method := DetectInstallMethod(execPath)
	if method == InstallMethodHomebrew || method == InstallMethodGoInstall {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			InstallMethod:  method,
			Message:        packageManagerAdvice(method, execPath),
		}, nil
	}

	release, err := u.resolveTarget(ctx, targetVersion)
	if err != nil {
		return nil, err
	}

	current, err := canonical(u.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("current version: %w", err)
	}
	target, err := canonical(release.TagName)
	if err != nil {
		return nil, fmt.Errorf("release version: %w", err)
	}

	check := &UpgradeCheck{
		CurrentVersion: u.currentVersion,
		LatestVersion:  release.TagName,
		InstallMethod:  method,
	}

	switch {
	// Development and CI builds run pre-release versions at or past the
	// latest stable tag; downgrading them would be a surprise.
	case semver.Prerelease(current) != "" && semver.Compare(current, target) >= 0:
		check.Message = fmt.Sprintf("Running pre-release %s (ahead of %s).", u.currentVersion, release.TagName)
	case semver.Compare(current, target) >= 0:
		check.Message = "Already up to date."
	default:
		check.TargetRelease = release
		check.UpgradeAvailable = true
		check.Message = fmt.Sprintf("Upgrade available: %s -> %s", u.currentVersion, release.TagName)
	}
	return check, nil
}

// resolveTarget picks the release to compare against: the tagged one when
// a version was requested, otherwise the newest stable release.
func (u *Updater) resolveTarget(ctx context.Context, targetVersion string) (*Release, error) {
	if targetVersion != "" {
		tag, err := canonical(targetVersion)
		if err != nil {
			return nil, err
		}
		release, err := u.client.GetReleaseByTag(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("fetching release %s: %w", tag, err)
		}
		return release, nil
	}

	releases, err := u.client.ListReleases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	if len(releases) == 0 {
		return nil, errors.New("no stable releases found")
	}
	return &releases[0], nil
}

// Apply downloads release, verifies it against the published checksums,
// and swaps the running binary for the new one. Every temporary file is
// created next to the target binary so the final rename stays on one
// filesystem and therefore atomic.
func (u *Updater) Apply(ctx context.Context, release *Release) error {
	if release == nil {
		return errors.New("release must not be nil")
	}

	execPath, err := executablePath()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	// Windows locks a running binary, so an in-place swap only works for
	// install layouts we recognize.
	if runtime.GOOS == "windows" && DetectInstallMethod(execPath) == InstallMethodUnknown {
		return errors.New(
			"automatic upgrade is not supported on Windows for manual installations; " +
				"download the new version from the GitHub releases page or use: go install github.com/pyship/pyship@latest")
	}

	targetDir := filepath.Dir(execPath)

	archivePath, err := u.downloadVerified(ctx, release, targetDir)
	if err != nil {
		return err
	}
	defer os.Remove(archivePath)

	newBinary, err := unpackBinary(archivePath, targetDir)
	if err != nil {
		return err
	}

	if err := swapBinary(newBinary, execPath); err != nil {
		os.Remove(newBinary)
		return err
	}
	return nil
}

// downloadVerified fetches the platform archive for release into dir and
// checks it against the release's checksums.txt. The checksum manifest is
// read first; there is no point downloading a large archive whose
// expected hash is unknown.
func (u *Updater) downloadVerified(ctx context.Context, release *Release, dir string) (string, error) {
	// GoReleaser names archives without the "v" version prefix.
	version := strings.TrimPrefix(release.TagName, "v")
	archiveName := fmt.Sprintf("pyship_%s_%s_%s.tar.gz", version, runtime.GOOS, runtime.GOARCH)

	archiveAsset, err := release.asset(archiveName)
	if err != nil {
		return "", fmt.Errorf("finding archive asset: %w", err)
	}
	checksumAsset, err := release.asset("checksums.txt")
	if err != nil {
		return "", fmt.Errorf("finding checksums asset: %w", err)
	}

	body, err := u.client.DownloadAsset(ctx, checksumAsset.BrowserDownloadURL)
	if err != nil {
		return "", fmt.Errorf("downloading checksums: %w", err)
	}
	entries, err := ParseChecksums(body)
	body.Close()
	if err != nil {
		return "", fmt.Errorf("parsing checksums: %w", err)
	}

	expected, err := FindChecksum(entries, archiveName)
	if err != nil {
		return "", fmt.Errorf("finding checksum for %s: %w", archiveName, err)
	}

	archivePath, err := u.saveAsset(ctx, archiveAsset.BrowserDownloadURL, dir)
	if err != nil {
		return "", fmt.Errorf("downloading archive: %w", err)
	}

	if err := VerifyFile(archivePath, expected); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("verifying archive checksum: %w", err)
	}
	return archivePath, nil
}

// saveAsset downloads the asset at rawURL into a temporary file under dir.
func (u *Updater) saveAsset(ctx context.Context, rawURL, dir string) (string, error) {
	body, err := u.client.DownloadAsset(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return writeTemp(dir, "pyship-download-*", body)
}

// unpackBinary pulls the pyship binary out of the tar.gz archive into a
// temporary file under destDir. Entries match on base name, so flat
// archives and layouts nesting the binary in a versioned directory both
// work.
func unpackBinary(archivePath, destDir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	binaryName := "pyship"
	if runtime.GOOS == "windows" {
		binaryName = "pyship.exe"
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading tar entry: %w", err)
		}
		if filepath.Base(hdr.Name) != binaryName {
			continue
		}

		path, err := writeTemp(destDir, "pyship-upgrade-*", io.LimitReader(tr, maxBinarySize))
		if err != nil {
			return "", fmt.Errorf("extracting binary: %w", err)
		}
		return path, nil
	}

	return "", fmt.Errorf("binary %q not found in archive %s", binaryName, archivePath)
}

// swapBinary moves the new binary over execPath, carrying the original
// file mode across.
func swapBinary(newPath, execPath string) error {
	info, err := os.Stat(execPath)
	if err != nil {
		return fmt.Errorf("reading original binary permissions: %w", err)
	}
	if err := os.Chmod(newPath, info.Mode()); err != nil {
		return fmt.Errorf("setting binary permissions: %w", err)
	}

	if err := os.Rename(newPath, execPath); err != nil {
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// writeTemp copies r into a fresh temporary file in dir and returns its
// path. The partial file is removed on any error.
func writeTemp(dir, pattern string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", copyErr)
	}
	return tmp.Name(), nil
}

// executablePath resolves the running binary through any symlinks.
func executablePath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}

	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}
	return resolved, nil
}

// packageManagerAdvice names the command that owns the binary's upgrades.
func packageManagerAdvice(method InstallMethod, execPath string) string {
	switch method {
	case InstallMethodHomebrew:
		return fmt.Sprintf("Detected Homebrew installation at %s\n\nTo upgrade, run:\n  brew upgrade pyship", execPath)
	case InstallMethodGoInstall:
		return fmt.Sprintf("Detected go install at %s\n\nTo upgrade, run:\n  go install github.com/pyship/pyship@latest", execPath)
	case InstallMethodScript, InstallMethodUnknown:
	}
	return ""
}

// canonical forces the "v" prefix semver requires and validates the
// result.
func canonical(v string) (string, error) {
	norm := v
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}
