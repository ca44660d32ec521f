// Package main provides the shelfmark CLI, a companion tool for a local
// Zotero library: it lists and edits stored items, acquires full-text
// PDFs from external providers, and reconciles metadata against arXiv.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates caller mistakes (bad key, unknown field) from
// environment failures (store missing, application not running).
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrItemNotFound),
		errors.Is(err, types.ErrCollectionNotFound),
		errors.Is(err, types.ErrFieldUnknown),
		errors.Is(err, types.ErrNoExternalID):
		return exitUserError
	default:
		return exitSysError
	}
}
