// Shared output helpers for shelfmark CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// truncateText shortens s for table display.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// printTrimmed prints tabwriter output with trailing spaces removed from
// each line.
func printTrimmed(out string) {
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
}
