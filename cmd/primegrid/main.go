// Package main provides the primegrid binary entry point. Primegrid counts
// primes in binary uint64 datasets with a dispatcher/worker pipeline over
// NATS and serves dataset segments over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
