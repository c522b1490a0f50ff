// The main package for the portal executable.
package main

import (
	"fmt"
	"os"
)

// main defers all execution to the Cobra CLI.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "portal: %v\n", err)
		os.Exit(1)
	}
}
