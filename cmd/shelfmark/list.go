// List command pages through library items.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listOffset  int
	listLimit   int
	listDetails bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List library items",
	Long: `List pages through the items in the library, newest first.
Attachments and notes are children of items, not items themselves, and
are not listed.

Example:
  shelfmark list
  shelfmark list --limit 20 --offset 40
  shelfmark list --details --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of items to skip")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum number of items")
	listCmd.Flags().BoolVar(&listDetails, "details", false, "include attachment, note, and tag counts")
}

func runList(cmd *cobra.Command, args []string) error {
	items, err := store.ListItems(listOffset, listLimit, listDetails)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
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
	if listDetails {
		fmt.Fprintln(w, "KEY\tTYPE\tTITLE\tATT\tNOTES\tTAGS")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				it.Key, it.ItemType, truncateText(it.Title, 60),
				it.AttachmentCount, it.NoteCount, it.TagCount)
		}
	} else {
		fmt.Fprintln(w, "KEY\tTYPE\tTITLE\tMODIFIED")
		for _, it := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				it.Key, it.ItemType, truncateText(it.Title, 60), it.DateModified)
		}
	}
	w.Flush()
	printTrimmed(sb.String())
	fmt.Printf("Total: %d item(s)\n", len(items))
	return nil
}
