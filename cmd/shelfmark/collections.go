// Collections command lists the library's collections.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections",
	Args:  cobra.NoArgs,
	RunE:  runCollections,
}

func runCollections(cmd *cobra.Command, args []string) error {
	cols, err := store.Collections()
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if flagJSON {
		return printJSON(cols)
	}

	if len(cols) == 0 {
		fmt.Println("No collections found.")
		return nil
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME")
	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\n", c.Key, c.Name)
	}
	w.Flush()
	printTrimmed(sb.String())
	fmt.Printf("Total: %d collection(s)\n", len(cols))
	return nil
}
