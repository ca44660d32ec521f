// Acquire command fetches a full-text PDF for an item and attaches it.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelfmark/internal/attach"
	"github.com/mesh-intelligence/shelfmark/internal/fetch"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

var (
	acquireSource string
	acquireForce  bool
)

var acquireCmd = &cobra.Command{
	Use:   "acquire <item-key>",
	Short: "Fetch a full-text PDF and attach it to the item",
	Long: `Acquire resolves a PDF for the item by trying each document
provider in order: arxiv, open_access, scihub, annas_archive, libgen,
publisher. The first result that passes content validation is stored as
an attachment.

Use --source to try a specific provider first; the rest of the chain
still runs if it fails. Items that already have an attachment are
skipped unless --force is given.

Example:
  shelfmark acquire ABCD1234
  shelfmark acquire ABCD1234 --source scihub
  shelfmark acquire ABCD1234 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().StringVar(&acquireSource, "source", "auto", "provider to try first")
	acquireCmd.Flags().BoolVar(&acquireForce, "force", false, "acquire even when an attachment already exists")
}

func runAcquire(cmd *cobra.Command, args []string) error {
	key := args[0]

	item, err := store.GetItemByKey(key)
	if err != nil {
		return fmt.Errorf("get item %s: %w", key, err)
	}

	if !acquireForce && len(item.Attachments) > 0 {
		if flagJSON {
			return printJSON(map[string]any{"key": key, "skipped": "attachment exists"})
		}
		fmt.Printf("%s already has %d attachment(s); use --force to add another\n", key, len(item.Attachments))
		return nil
	}

	rec := types.RecordFromItem(item)

	providers := fetch.DefaultProviders(unpaywallEmail, logger)
	if len(fetchOrder) > 0 {
		providers = reorderProviders(providers, fetchOrder)
	}
	resolver := fetch.NewResolver(providers, fetchTimeout, logger)

	doc, err := resolver.Acquire(cmd.Context(), rec, acquireSource)
	if err != nil {
		var ex *fetch.ExhaustedError
		if errors.As(err, &ex) {
			reportAttempts(ex.Attempts)
		}
		return fmt.Errorf("acquire document for %s: %w", key, err)
	}

	writer := attach.NewWriter(store, logger)
	att, err := writer.Attach(key, doc.Data, attach.FilenameForRecord(rec))
	if err != nil {
		return fmt.Errorf("attach document to %s: %w", key, err)
	}

	if flagJSON {
		return printJSON(map[string]any{
			"key":        key,
			"attachment": att.Key,
			"provider":   doc.Provider,
			"url":        doc.URL,
			"bytes":      len(doc.Data),
			"attempts":   doc.Attempts,
		})
	}

	fmt.Printf("Attached %s (%d bytes from %s)\n", att.Key, len(doc.Data), doc.Provider)
	reportAttempts(doc.Attempts)
	return nil
}

// reorderProviders applies the configured fetch.order, keeping unnamed
// providers at the tail in their default order.
func reorderProviders(providers []fetch.Provider, order []string) []fetch.Provider {
	byName := make(map[string]fetch.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	ordered := make([]fetch.Provider, 0, len(providers))
	taken := make(map[string]bool, len(order))
	for _, name := range order {
		if p, ok := byName[name]; ok && !taken[name] {
			ordered = append(ordered, p)
			taken[name] = true
		}
	}
	for _, p := range providers {
		if !taken[p.Name()] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func reportAttempts(attempts []fetch.Attempt) {
	if flagJSON || len(attempts) == 0 {
		return
	}
	fmt.Println("Providers tried:")
	for _, a := range attempts {
		fmt.Printf("  %-12s %s\n", a.Provider, a.Disposition)
	}
}
