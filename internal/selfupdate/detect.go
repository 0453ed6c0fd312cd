// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// InstallMethod identifies how the running binary got onto the system.
// Script and manual installs can be replaced in place; Homebrew and go
// install binaries belong to their package manager, so the upgrade flow
// only prints guidance for them.
type InstallMethod int

const (
	// InstallMethodUnknown covers manual downloads and anything the
	// heuristics cannot place.
	InstallMethodUnknown InstallMethod = iota
	// InstallMethodScript is the shell installer, which drops the binary
	// into ~/.local/bin.
	InstallMethodScript
	// InstallMethodHomebrew is a brew-managed binary.
	InstallMethodHomebrew
	// InstallMethodGoInstall is a go install build living in GOPATH/bin.
	InstallMethodGoInstall
)

// modulePath confirms a go install origin through the binary's build info.
const modulePath = "github.com/pyship/pyship"

// scriptInstallDir is where the install script places the binary.
const scriptInstallDir = "/.local/bin/"

// brewPrefixes are the path fragments a Homebrew-managed binary lives
// under: macOS ARM, macOS Intel Cellar, and Linuxbrew.
var brewPrefixes = []string{
	"/opt/homebrew/",
	"/usr/local/Cellar/",
	"/home/linuxbrew/.linuxbrew/",
}

var (
	// installMethodHint is injected with -ldflags by release builds and
	// wins over every heuristic.
	installMethodHint string

	// readBuildInfo is a seam for debug.ReadBuildInfo.
	readBuildInfo = debug.ReadBuildInfo
)

func (m InstallMethod) String() string {
	switch m {
	case InstallMethodScript:
		return "script"
	case InstallMethodHomebrew:
		return "homebrew"
	case InstallMethodGoInstall:
		return "goinstall"
	case InstallMethodUnknown:
	}
	return "unknown"
}

// DetectInstallMethod classifies the binary at execPath. The ldflags hint
// wins outright; after that come Homebrew path fragments, GOPATH/bin
// (confirmed through build info, so a hand-placed binary does not count),
// and the script install directory.
func DetectInstallMethod(execPath string) InstallMethod {
	if installMethodHint != "" {
		return methodFromHint(installMethodHint)
	}

	for _, prefix := range brewPrefixes {
		if strings.Contains(execPath, prefix) {
			return InstallMethodHomebrew
		}
	}

	if underGobin(execPath) && builtFromModule() {
		return InstallMethodGoInstall
	}

	if strings.Contains(execPath, scriptInstallDir) {
		return InstallMethodScript
	}

	return InstallMethodUnknown
}

func methodFromHint(hint string) InstallMethod {
	switch strings.ToLower(hint) {
	case "script":
		return InstallMethodScript
	case "homebrew":
		return InstallMethodHomebrew
	case "goinstall":
		return InstallMethodGoInstall
	}
	return InstallMethodUnknown
}

// underGobin reports whether execPath sits inside GOPATH/bin, defaulting
// GOPATH to ~/go the way the toolchain does. The separator suffix keeps a
// sibling like ~/gobin from matching.
func underGobin(execPath string) bool {
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		gopath = filepath.Join(home, "go")
	}

	bin := filepath.Clean(filepath.Join(gopath, "bin"))
	exec := filepath.Clean(execPath)
	return exec == bin || strings.HasPrefix(exec, bin+string(filepath.Separator))
}

// builtFromModule reports whether the binary's build info names this
// module, which separates a real go install from a binary that merely got
// copied into GOPATH/bin.
func builtFromModule() bool {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return false
	}
	return strings.Contains(info.Path, modulePath)
}
