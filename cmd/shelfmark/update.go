// Update command edits item fields in place.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var updateSets []string

var updateCmd = &cobra.Command{
	Use:   "update <item-key>",
	Short: "Update item fields",
	Long: `Update writes field values on a stored item. Each --set takes a
field=value pair; field names follow the store's own catalog (title,
abstractNote, date, DOI, url, publicationTitle, extra, ...). Unknown
field names are skipped with a warning.

Example:
  shelfmark update ABCD1234 --set title="A Better Title"
  shelfmark update ABCD1234 --set date=2024/01/15 --set DOI=10.1000/xyz`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "field=value pair (repeatable)")
	_ = updateCmd.MarkFlagRequired("set")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	fields := make(map[string]string, len(updateSets))
	for _, pair := range updateSets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q, want field=value", pair)
		}
		fields[name] = value
	}

	applied, err := store.SetFields(args[0], fields)
	if err != nil {
		return fmt.Errorf("update item %s: %w", args[0], err)
	}

	if flagJSON {
		return printJSON(map[string]any{"key": args[0], "applied": applied})
	}

	fmt.Printf("Updated %d field(s) on %s\n", len(applied), args[0])
	for _, name := range applied {
		fmt.Println("  ", name)
	}
	if skipped := len(fields) - len(applied); skipped > 0 {
		fmt.Printf("Skipped %d unknown field(s)\n", skipped)
	}
	return nil
}
