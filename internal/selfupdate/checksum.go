// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

var (
	// ErrChecksumMismatch reports that a downloaded file does not hash to
	// the value published in checksums.txt.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrAssetNotFound reports that a release (or its checksum manifest)
	// carries nothing under the requested name.
	ErrAssetNotFound = errors.New("asset not found")

	errNoEntries = errors.New("checksums file has no valid entries")
)

// ChecksumEntry is one line of a checksums.txt manifest.
type ChecksumEntry struct {
	Hash     string // lowercase hex SHA256
	Filename string
}

// ChecksumError carries the hashes involved in a failed verification. It
// unwraps to ErrChecksumMismatch for errors.Is classification.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Filename, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksums reads a manifest in sha256sum output format: one
// "{hash}  {filename}" pair per line, two spaces between them. Lines that
// do not fit the format are skipped; a manifest with no usable line at
// all is an error.
func ParseChecksums(r io.Reader) ([]ChecksumEntry, error) {
	var entries []ChecksumEntry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if entry, ok := parseChecksumLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checksums: %w", err)
	}

	if len(entries) == 0 {
		return nil, errNoEntries
	}
	return entries, nil
}

func parseChecksumLine(line string) (ChecksumEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ChecksumEntry{}, false
	}

	hash, filename, found := strings.Cut(line, "  ")
	filename = strings.TrimSpace(filename)
	if !found || filename == "" || !validHash(hash) {
		return ChecksumEntry{}, false
	}

	return ChecksumEntry{Hash: strings.ToLower(hash), Filename: filename}, true
}

// FindChecksum returns the hash recorded for filename, or ErrAssetNotFound
// when the manifest does not mention it.
func FindChecksum(entries []ChecksumEntry, filename string) (string, error) {
	i := slices.IndexFunc(entries, func(e ChecksumEntry) bool { return e.Filename == filename })
	if i < 0 {
		return "", ErrAssetNotFound
	}
	return entries[i].Hash, nil
}

// VerifyFile hashes the file at path and compares the digest with expected,
// case-insensitively. A mismatch comes back as a *ChecksumError.
func VerifyFile(path, expected string) error {
	got, err := fileSHA256(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(got, expected) {
		return &ChecksumError{
			Filename: path,
			Expected: strings.ToLower(expected),
			Got:      got,
		}
	}
	return nil
}

// fileSHA256 streams the file through SHA256 so archive size never
// matters, and returns the lowercase hex digest.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// validHash accepts exactly the output width of SHA256 in hex.
func validHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
