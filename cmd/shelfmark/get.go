// Get command shows one item in full.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <item-key>",
	Short: "Show one item with its fields, creators, tags, and children",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	item, err := store.GetItemByKey(args[0])
	if err != nil {
		return fmt.Errorf("get item %s: %w", args[0], err)
	}

	if flagJSON {
		return printJSON(item)
	}

	fmt.Println("Key:     ", item.Key)
	fmt.Println("Type:    ", item.ItemType)
	fmt.Println("Title:   ", item.Title())
	fmt.Println("Added:   ", item.DateAdded)
	fmt.Println("Modified:", item.DateModified)

	if len(item.Creators) > 0 {
		fmt.Println("Creators:")
		for _, c := range item.Creators {
			fmt.Printf("  %s, %s (%s)\n", c.LastName, c.FirstName, c.CreatorType)
		}
	}

	for _, name := range []string{"abstractNote", "date", "DOI", "url", "publicationTitle", "extra"} {
		if v := item.Field(name); v != "" {
			fmt.Printf("%s: %s\n", name, truncateText(v, 200))
		}
	}

	if len(item.Tags) > 0 {
		names := make([]string, len(item.Tags))
		for i, t := range item.Tags {
			names[i] = t.Name
		}
		fmt.Println("Tags:", names)
	}
	if len(item.Attachments) > 0 {
		fmt.Println("Attachments:")
		for _, a := range item.Attachments {
			fmt.Printf("  %s  %s (%s)\n", a.Key, a.Filename, a.ContentType)
		}
	}
	if len(item.Notes) > 0 {
		fmt.Printf("Notes: %d\n", len(item.Notes))
	}
	return nil
}
