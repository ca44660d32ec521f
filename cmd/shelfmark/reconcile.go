// Reconcile command diffs an item against arXiv and optionally applies
// the authoritative values.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelfmark/internal/arxiv"
	"github.com/mesh-intelligence/shelfmark/internal/reconcile"
)

var reconcileApply bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <item-key>",
	Short: "Diff an item's metadata against arXiv",
	Long: `Reconcile looks up the item's arXiv record and reports field-level
differences for title, abstract, date, authors, and DOI. With --apply,
every differing field except authors is overwritten with the arXiv value;
authors stay advisory.

The item's URL or DOI must carry a recognizable arXiv identifier.

Example:
  shelfmark reconcile ABCD1234
  shelfmark reconcile ABCD1234 --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileApply, "apply", false, "write differing fields back to the store")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	r := reconcile.New(store, arxiv.NewClient(logger), logger)

	result, err := r.ReconcileAndApply(cmd.Context(), args[0], reconcileApply)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", args[0], err)
	}

	if flagJSON {
		return printJSON(result)
	}

	if result.Consistent {
		fmt.Printf("%s is already consistent with arXiv:%s\n", result.ItemKey, result.ArchiveID)
		return nil
	}

	fmt.Printf("Differences against arXiv:%s\n", result.ArchiveID)
	for field, pair := range result.Diff {
		fmt.Printf("  %s:\n", field)
		fmt.Printf("    %-6s %s\n", pair[0].Source+":", truncateText(pair[0].Value, 120))
		fmt.Printf("    %-6s %s\n", pair[1].Source+":", truncateText(pair[1].Value, 120))
	}
	if len(result.Applied) > 0 {
		fmt.Println("Applied:", result.Applied)
	} else if reconcileApply {
		fmt.Println("Nothing applied (author differences are advisory only).")
	}
	return nil
}
