// Move command links an item into a collection.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <item-key> <collection-key>",
	Short: "Link an item into a collection",
	Long: `Move adds the item to the named collection. Items can live in
several collections at once; moving does not remove existing links.

Example:
  shelfmark move ABCD1234 COLL5678`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	itemKey, collectionKey := args[0], args[1]

	already, err := store.LinkItemToCollection(itemKey, collectionKey)
	if err != nil {
		return fmt.Errorf("link %s to %s: %w", itemKey, collectionKey, err)
	}

	if flagJSON {
		return printJSON(map[string]any{
			"item":       itemKey,
			"collection": collectionKey,
			"already":    already,
		})
	}

	if already {
		fmt.Printf("%s is already in %s\n", itemKey, collectionKey)
	} else {
		fmt.Printf("Moved %s into %s\n", itemKey, collectionKey)
	}
	return nil
}
