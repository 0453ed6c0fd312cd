// SPDX-License-Identifier: MPL-2.0

// Package submod packages one top-level sub-directory of a Python code
// base into a ZIP archive that a cluster can place on a worker's import
// path.
//
// Entry names inside the archive are recorded relative to the base
// directory, not the sub-directory itself, so an archive built from
// base/pkg unpacks as pkg/... and "import pkg.mod" keeps resolving on
// the worker side.
package submod

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyship/pyship/pkg/pysrc"
)

// Build creates destDir/<name>.zip, where name is the base name of
// subdir, holding every file under subdir whose extension matches exts.
// Directories whose base name appears in excludes are skipped entirely.
//
// When nothing under subdir matches, no archive is produced and Build
// returns ("", nil). On failure any partially written archive is removed.
func Build(base, subdir, destDir string, exts, excludes []string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absSubdir, err := filepath.Abs(subdir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sub-directory: %w", err)
	}

	// Entry names are computed relative to base, so the sub-directory
	// must live inside it.
	rel, err := filepath.Rel(absBase, absSubdir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("sub-directory %s is not inside base directory %s", subdir, base)
	}

	matches, err := pysrc.FindPruned(absSubdir, exts, excludes)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}

	outputPath := filepath.Join(destDir, filepath.Base(absSubdir)+".zip")

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	zipWriter := zip.NewWriter(zipFile)

	for _, path := range matches {
		if err := addFile(zipWriter, absBase, path); err != nil {
			// Clean up the partial archive
			zipWriter.Close()
			zipFile.Close()
			os.Remove(outputPath)
			return "", err
		}
	}

	if err := zipWriter.Close(); err != nil {
		zipFile.Close()
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := zipFile.Close(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to close archive: %w", err)
	}

	return outputPath, nil
}

// addFile writes a single source file into the archive under its
// base-relative, forward-slash name.
func addFile(zipWriter *zip.Writer, absBase, path string) error {
	relPath, err := filepath.Rel(absBase, path)
	if err != nil {
		return fmt.Errorf("failed to get relative path for %s: %w", path, err)
	}

	// Use forward slashes for ZIP compatibility
	zipPath := filepath.ToSlash(relPath)

	fileData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	header, err := zip.FileInfoHeader(fileInfo)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = zipPath
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %w", err)
	}

	if _, err := writer.Write(fileData); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}

	return nil
}
