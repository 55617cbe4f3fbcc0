// cmd/tfgen/main.go
//
// This is the entry point for the tfgen CLI.
//
// Flow:
// 1. Load tfgen.yaml, .env and TFGEN_* variables from the working directory
// 2. Apply command-line flags on top
// 3. Validate, fill in the gaps of, and render each declaration to main.tf

package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
