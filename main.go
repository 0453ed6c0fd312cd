// SPDX-License-Identifier: MPL-2.0

// pyship ships Python source trees to distributed compute clusters.
package main

import (
	cmd "github.com/pyship/pyship/cmd/pyship"
)

func main() {
	cmd.Execute()
}
