// Add command registers an arXiv paper through the running desktop
// application, using its own ingestion pipeline rather than a direct
// store write.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelfmark/internal/arxiv"
	"github.com/mesh-intelligence/shelfmark/internal/connector"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

var addCollection string

var addCmd = &cobra.Command{
	Use:   "add <arxiv-url-or-id>",
	Short: "Save an arXiv paper to the library via the running application",
	Long: `Add fetches metadata for an arXiv paper and submits it to the
desktop application over its local connector API. The application must
be running; it assigns the item key and handles indexing itself.

Example:
  shelfmark add https://arxiv.org/abs/1706.03762
  shelfmark add 2301.12345
  shelfmark add 1706.03762 --collection COLL5678`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addCollection, "collection", "", "collection key to file the new item under")
}

func runAdd(cmd *cobra.Command, args []string) error {
	id := types.ArxivID(args[0])
	if id == "" {
		// Bare identifiers like "1706.03762" carry no arxiv.org marker.
		id = types.ArxivID("arxiv:" + args[0])
	}
	if id == "" {
		return fmt.Errorf("%w: %q is not an arXiv URL or identifier", types.ErrNoExternalID, args[0])
	}

	if err := conn.Ping(cmd.Context()); err != nil {
		return err
	}

	md, err := arxiv.NewClient(logger).GetByID(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("fetch arXiv metadata: %w", err)
	}

	item := connector.PreprintFromMetadata(md)
	session, err := conn.SaveItems(cmd.Context(), item.URL, []connector.SaveItem{item}, addCollection)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}

	if flagJSON {
		return printJSON(map[string]any{
			"arxiv_id": md.ID,
			"title":    md.Title,
			"session":  session,
		})
	}

	fmt.Printf("Saved arXiv:%s %q\n", md.ID, md.Title)
	return nil
}
