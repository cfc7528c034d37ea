// Command petexport writes the pet clinic owner and pet listing as CSV.
//
// Usage:
//
//	# Export with the streaming strategy to stdout
//	petexport export
//
//	# Paginated export, two rows per query, no delay, to a file
//	petexport export --strategy paginated --page-size 2 --row-delay 0 -o pets.csv
//
//	# Create and fill a local SQLite demo database
//	DB_DRIVER=sqlite DATABASE_URL=clinic.db petexport seed --reset
//
// Database and export settings come from the environment (see
// internal/config); flags override them per run.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
