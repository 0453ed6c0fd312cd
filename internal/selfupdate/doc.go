// SPDX-License-Identifier: MPL-2.0

// Package selfupdate upgrades the pyship binary in place from GitHub
// Releases.
//
// The Updater checks the running version against the release feed,
// refuses to touch binaries owned by a package manager (Homebrew, go
// install), and otherwise downloads the platform archive, verifies it
// against the release's checksums.txt, and atomically swaps the binary.
package selfupdate
