// Package main is the entry point for the zodgen CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Gobd/zodgen/cmd/zodgen/internal"
)

func main() {
	if err := internal.Run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
