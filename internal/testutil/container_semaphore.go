// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"
)

// EnvContainerParallel overrides how many container-backed tests may run
// at once.
const EnvContainerParallel = "PYSHIP_TEST_CONTAINER_PARALLEL"

// ContainerSemaphore returns the process-wide slot channel shared by tests
// that start containers. Prefer AcquireContainerSlot; reach for the channel
// directly only when a slot must outlive a single test.
//
// Capacity defaults to min(GOMAXPROCS, 2). Constrained CI runners hang
// rather than fail when the container engine is oversubscribed, so the
// cap stays low unless EnvContainerParallel raises it.
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	return make(chan struct{}, containerParallelism())
})

// AcquireContainerSlot blocks until a container slot is free and holds it
// for the remainder of the test.
func AcquireContainerSlot(t *testing.T) {
	t.Helper()

	sem := ContainerSemaphore()
	sem <- struct{}{}
	t.Cleanup(func() { <-sem })
}

func containerParallelism() int {
	if n, err := strconv.Atoi(os.Getenv(EnvContainerParallel)); err == nil && n > 0 {
		return n
	}
	return min(runtime.GOMAXPROCS(0), 2)
}
