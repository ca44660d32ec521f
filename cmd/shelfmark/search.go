// Search command finds items by title substring.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search items by title",
	Long: `Search matches the query as a case-insensitive substring of item
titles and returns up to 50 results.

Example:
  shelfmark search "attention"
  shelfmark search transformer --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	items, err := store.SearchItemsByTitle(args[0])
	if err != nil {
		return fmt.Errorf("search items: %w", err)
	}

	if flagJSON {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tTITLE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.Key, it.ItemType, truncateText(it.Title, 70))
	}
	w.Flush()
	printTrimmed(sb.String())
	fmt.Printf("Total: %d item(s)\n", len(items))
	return nil
}
