// Package main provides the dbh CLI: it prints the SQL that the dbh builders
// synthesize for entities described in a YAML mapping file, or runs it
// against a MySQL database with --execute.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
