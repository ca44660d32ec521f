// Delete command removes an item and all of its child rows.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <item-key>",
	Short: "Delete an item and its tags, creators, fields, and children",
	Long: `Delete removes the item row and every row referencing it, so no
orphans are left behind. This does not remove attachment files from the
storage directory.

Example:
  shelfmark delete ABCD1234 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	key := args[0]

	if !deleteYes {
		item, err := store.GetItemByKey(key)
		if err != nil {
			return fmt.Errorf("get item %s: %w", key, err)
		}
		fmt.Printf("Delete %q (%s)? [y/N] ", item.Title(), key)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := store.DeleteItem(key); err != nil {
		return fmt.Errorf("delete item %s: %w", key, err)
	}

	if flagJSON {
		return printJSON(map[string]string{"deleted": key})
	}
	fmt.Println("Deleted", key)
	return nil
}
