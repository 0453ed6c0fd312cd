// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

// MustChdir switches the working directory to dir and returns a func
// that switches back. The working directory is process state, so tests
// using it cannot run in parallel.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", wd, err)
		}
	}
}

// MustSetenv sets key to value and returns a func restoring the
// variable to its pre-test state, unsetting it when it did not exist.
// Unlike t.Setenv, the restore can run mid-test.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()

	restore := envRestorer(t, key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	return restore
}

// MustUnsetenv clears key and returns a func restoring it.
func MustUnsetenv(t testing.TB, key string) func() {
	t.Helper()

	restore := envRestorer(t, key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	return restore
}

// SetHomeDir points the platform home variable (HOME, or USERPROFILE on
// Windows) at dir and returns a func restoring the original value.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}
	return MustSetenv(t, key, dir)
}

// envRestorer captures the state of key before a test mutates it.
func envRestorer(t testing.TB, key string) func() {
	value, existed := os.LookupEnv(key)
	return func() {
		var err error
		if existed {
			err = os.Setenv(key, value)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("failed to restore env %s: %v", key, err)
		}
	}
}
