// SPDX-License-Identifier: MPL-2.0

// Package testutil carries small helpers shared by pyship's tests:
// save/restore wrappers for the environment and working directory
// (MustSetenv, MustUnsetenv, MustChdir, SetHomeDir) and a process-wide
// semaphore bounding container-backed tests (ContainerSemaphore).
package testutil
