// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/pyship/pyship/internal/issue"
	"github.com/pyship/pyship/internal/testutil"
)

// withConfigDir points the package at a fresh config directory and moves
// the working directory away from any real config.cue. The directory is
// returned but not created; tests that need a config file on disk write
// one with writeConfig.
func withConfigDir(t *testing.T) string {
	t.Helper()

	Reset()
	t.Cleanup(Reset)

	tmp := t.TempDir()
	dir := filepath.Join(tmp, AppName)
	SetConfigDirOverride(dir)
	t.Cleanup(testutil.MustChdir(t, tmp))

	return dir
}

// writeConfig drops a config.cue with the given content into dir.
func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, configBasename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigDir(t *testing.T) {
	// Not parallel: mutates the process environment.
	if runtime.GOOS != "linux" {
		t.Skip("XDG config lookup is exercised on linux")
	}
	Reset()
	t.Cleanup(Reset)

	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/pyship-xdg"))

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/pyship-xdg", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	// Without XDG_CONFIG_HOME the lookup falls back to ~/.config.
	t.Cleanup(testutil.MustUnsetenv(t, "XDG_CONFIG_HOME"))

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDir_Override(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/config/dir")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error: %v", err)
	}
	if dir != "/custom/config/dir" {
		t.Errorf("ConfigDir() = %s, want /custom/config/dir", dir)
	}
}

func TestReset(t *testing.T) {
	// Not parallel: mutates package state.
	globalConfig = &Config{Backend: BackendS3}
	configPath = "/tmp/pyship/config.cue"
	configDirOverride = "/tmp/pyship"
	configFilePathOverride = "/tmp/custom.cue"
	errLastLoad = errors.New("stale")

	Reset()

	if globalConfig != nil {
		t.Error("globalConfig not cleared")
	}
	if configPath != "" {
		t.Error("configPath not cleared")
	}
	if configDirOverride != "" {
		t.Error("configDirOverride not cleared")
	}
	if configFilePathOverride != "" {
		t.Error("configFilePathOverride not cleared")
	}
	if errLastLoad != nil {
		t.Error("errLastLoad not cleared")
	}
}

func TestLoadAndSave(t *testing.T) {
	// Not parallel: mutates package state.
	withConfigDir(t)

	// Save must create the config directory itself.
	want := &Config{
		Backend:    BackendS3,
		Extensions: []Extension{".py", ".pyi"},
		Exclude:    []ExcludeName{"__pycache__", ".git"},
		Local:      LocalConfig{DistDir: "/srv/pyship/dist"},
		HTTP:       HTTPConfig{Endpoint: "https://deps.example.com/register"},
		S3: S3Config{
			Endpoint: "minio.internal:9000",
			Region:   "eu-west-1",
			Bucket:   "pyship-artifacts",
			Prefix:   "team-etl",
			UseSSL:   false,
		},
		UI: UIConfig{ColorScheme: ColorSchemeDark, Verbose: true},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// Drop the cache so Load rereads from disk.
	ResetCache()

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("Load() = %+v, want %+v", loaded, want)
	}
}

func TestLoad_DefaultsWhenNoConfigFile(t *testing.T) {
	// Not parallel: mutates package state.
	withConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Backend != BackendLocal {
		t.Errorf("Backend = %s, want %s", cfg.Backend, BackendLocal)
	}
	if len(cfg.Extensions) != 1 || cfg.Extensions[0] != ".py" {
		t.Errorf("Extensions = %v, want [.py]", cfg.Extensions)
	}
	if !cfg.S3.UseSSL {
		t.Error("S3.UseSSL = false, want true (default)")
	}
	if ConfigFilePath() != "" {
		t.Errorf("ConfigFilePath() = %s, want empty (nothing loaded from disk)", ConfigFilePath())
	}
}

func TestLoad_ReturnsCachedConfig(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	cached := &Config{Backend: BackendDiscard}
	globalConfig = cached

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != cached {
		t.Errorf("Load() = %p, want the cached config %p", cfg, cached)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	// Not parallel: mutates package state.
	dir := withConfigDir(t)

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}

	path := filepath.Join(dir, configBasename)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.Contains(string(before), `backend: "local"`) {
		t.Errorf("default config should declare the local backend, got:\n%s", before)
	}

	// A second call must leave the existing file alone.
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() error on second call: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("second CreateDefaultConfig() call rewrote the file")
	}
}

func TestConfigFilePath(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	if path := ConfigFilePath(); path != "" {
		t.Errorf("ConfigFilePath() = %s, want empty before any load", path)
	}

	configPath = "/some/test/path"
	if path := ConfigFilePath(); path != "/some/test/path" {
		t.Errorf("ConfigFilePath() = %s, want /some/test/path", path)
	}
}

func TestConstants(t *testing.T) {
	t.Parallel()

	if AppName != "pyship" {
		t.Errorf("AppName = %s, want pyship", AppName)
	}
	if configBasename != "config.cue" {
		t.Errorf("configBasename = %s, want config.cue", configBasename)
	}
}

func TestGet_DefaultsWhenNoConfig(t *testing.T) {
	// Not parallel: mutates package state.
	withConfigDir(t)

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Backend != BackendLocal {
		t.Errorf("Backend = %s, want the default %s", cfg.Backend, BackendLocal)
	}
	if err := LastLoadError(); err != nil {
		t.Errorf("LastLoadError() = %v, want nil", err)
	}
}

func TestGet_FallsBackAndRecordsError(t *testing.T) {
	// Not parallel: mutates package state.
	dir := withConfigDir(t)
	writeConfig(t, dir, `this is not valid CUE syntax`)

	cfg := Get()
	if cfg.Backend != BackendLocal {
		t.Errorf("Backend = %s, want the default %s", cfg.Backend, BackendLocal)
	}

	err := LastLoadError()
	if err == nil {
		t.Fatal("LastLoadError() = nil, want the load failure")
	}
	if !strings.Contains(err.Error(), "load configuration") {
		t.Errorf("error should name the operation, got: %s", err)
	}
}

func TestLastLoadError_ClearedOnSuccess(t *testing.T) {
	// Not parallel: mutates package state.
	dir := withConfigDir(t)
	writeConfig(t, dir, `backend: "discard"`)

	cfg := Get()
	if cfg.Backend != BackendDiscard {
		t.Errorf("Backend = %s, want discard", cfg.Backend)
	}
	if err := LastLoadError(); err != nil {
		t.Errorf("LastLoadError() = %v, want nil", err)
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	// Not parallel: mutates package state.
	tests := []struct {
		name     string
		content  string
		wantErr  string
		wantPath bool
	}{
		{
			name:     "syntax error",
			content:  `this is not valid CUE syntax`,
			wantErr:  "load configuration",
			wantPath: true,
		},
		{
			name:     "wrong field type",
			content:  `backend: 123`,
			wantErr:  "load configuration",
			wantPath: true,
		},
		{
			name:     "unknown field",
			content:  `bakend: "local"`,
			wantErr:  "bakend",
			wantPath: true,
		},
		{
			name:     "unknown backend",
			content:  `backend: "ftp"`,
			wantErr:  "load configuration",
			wantPath: true,
		},
		{
			name:    "duplicate extensions",
			content: `extensions: [".py", ".pyi", ".py"]`,
			wantErr: "duplicate extension",
		},
		{
			name:    "duplicate excludes",
			content: `exclude: ["tests", "tests"]`,
			wantErr: "duplicate exclude name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := withConfigDir(t)
			path := writeConfig(t, dir, tt.content)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() accepted %q, want error", tt.content)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if tt.wantPath && !strings.Contains(err.Error(), path) {
				t.Errorf("error = %q, want it to name %s", err, path)
			}
		})
	}
}

func TestLoad_DuplicateEntriesGetSuggestions(t *testing.T) {
	// Not parallel: mutates package state.
	dir := withConfigDir(t)
	writeConfig(t, dir, `extensions: [".py", ".py"]`)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted duplicate extensions, want error")
	}

	ae, ok := errors.AsType[*issue.ActionableError](err)
	if !ok {
		t.Fatalf("error type = %T, want *issue.ActionableError", err)
	}
	if !slices.ContainsFunc(ae.Suggestions, func(s string) bool {
		return strings.Contains(s, "Remove the duplicated")
	}) {
		t.Errorf("Suggestions = %v, want one mentioning the duplicate", ae.Suggestions)
	}
}

func TestSetConfigFilePathOverride(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	globalConfig = &Config{Backend: BackendDiscard}
	configPath = "/old/path"

	SetConfigFilePathOverride("/new/path.cue")

	if configFilePathOverride != "/new/path.cue" {
		t.Errorf("configFilePathOverride = %q, want /new/path.cue", configFilePathOverride)
	}
	if globalConfig != nil {
		t.Error("cache not invalidated: globalConfig still set")
	}
	if configPath != "" {
		t.Error("cache not invalidated: configPath still set")
	}
}

func TestLoad_CustomPath(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	tmp := t.TempDir()
	custom := filepath.Join(tmp, "custom-config.cue")
	content := `backend: "http"
http: endpoint: "https://deps.example.com/register"
`
	if err := os.WriteFile(custom, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	SetConfigFilePathOverride(custom)
	t.Cleanup(testutil.MustChdir(t, tmp))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendHTTP {
		t.Errorf("Backend = %s, want http", cfg.Backend)
	}
	if cfg.HTTP.Endpoint != "https://deps.example.com/register" {
		t.Errorf("HTTP.Endpoint = %q, want https://deps.example.com/register", cfg.HTTP.Endpoint)
	}
	if ConfigFilePath() != custom {
		t.Errorf("ConfigFilePath() = %s, want %s", ConfigFilePath(), custom)
	}
}

func TestLoad_CustomPathMissing(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	missing := "/this/path/does/not/exist/config.cue"
	SetConfigFilePathOverride(missing)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded with a missing --config path, want error")
	}
	for _, want := range []string{"load configuration", missing, "config file not found"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to contain %q", err, want)
		}
	}

	ae, ok := errors.AsType[*issue.ActionableError](err)
	if !ok {
		t.Fatalf("error type = %T, want *issue.ActionableError", err)
	}
	if !slices.ContainsFunc(ae.Suggestions, func(s string) bool {
		return strings.Contains(s, "Verify the file path is correct")
	}) {
		t.Errorf("Suggestions = %v, want one about verifying the path", ae.Suggestions)
	}
}

func TestLoad_CustomPathInvalid(t *testing.T) {
	// Not parallel: mutates package state.
	Reset()
	t.Cleanup(Reset)

	custom := filepath.Join(t.TempDir(), "invalid-config.cue")
	if err := os.WriteFile(custom, []byte(`this is not valid CUE syntax {{{{`), 0o644); err != nil {
		t.Fatal(err)
	}

	SetConfigFilePathOverride(custom)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() accepted invalid CUE, want error")
	}
	if !strings.Contains(err.Error(), "load configuration") || !strings.Contains(err.Error(), custom) {
		t.Errorf("error = %q, want the operation and the path", err)
	}
}

func TestGenerateCUE_OmitsUnsetBackendBlocks(t *testing.T) {
	t.Parallel()

	out := GenerateCUE(DefaultConfig())

	if !strings.Contains(out, `backend: "local"`) {
		t.Errorf("generated CUE should declare the backend, got:\n%s", out)
	}
	if strings.Contains(out, "http:") {
		t.Errorf("generated CUE should omit the unset http block, got:\n%s", out)
	}
	if strings.Contains(out, "s3:") {
		t.Errorf("generated CUE should omit the unset s3 block, got:\n%s", out)
	}
	if !strings.Contains(out, "ui:") {
		t.Errorf("generated CUE should always include the ui block, got:\n%s", out)
	}
}
