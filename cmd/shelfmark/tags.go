// Tags command reads or replaces an item's tag set.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsSet []string

var tagsCmd = &cobra.Command{
	Use:   "tags <item-key>",
	Short: "Show or replace an item's tags",
	Long: `Without flags, tags lists the item's tags. With --set, the full
tag set is replaced: existing tags are removed and the given names are
attached as manual tags. --set with no names clears all tags.

Example:
  shelfmark tags ABCD1234
  shelfmark tags ABCD1234 --set transformers --set attention
  shelfmark tags ABCD1234 --set ""`,
	Args: cobra.ExactArgs(1),
	RunE: runTags,
}

func init() {
	tagsCmd.Flags().StringArrayVar(&tagsSet, "set", nil, "replace tags with this name (repeatable; empty clears)")
}

func runTags(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("set") {
		names := make([]string, 0, len(tagsSet))
		for _, n := range tagsSet {
			if n != "" {
				names = append(names, n)
			}
		}
		if err := store.SetTags(args[0], names); err != nil {
			return fmt.Errorf("set tags on %s: %w", args[0], err)
		}
	}

	tags, err := store.GetTags(args[0])
	if err != nil {
		return fmt.Errorf("get tags on %s: %w", args[0], err)
	}

	if flagJSON {
		return printJSON(tags)
	}

	if len(tags) == 0 {
		fmt.Println("No tags.")
		return nil
	}
	for _, t := range tags {
		fmt.Println(t.Name)
	}
	return nil
}
