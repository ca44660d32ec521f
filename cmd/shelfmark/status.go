// Status command reports the resolved store location and whether the
// desktop application is reachable.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store location and desktop application status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running := true
	version := ""
	if err := conn.Ping(cmd.Context()); err != nil {
		running = false
	} else {
		version, _ = conn.Version(cmd.Context())
	}

	if flagJSON {
		return printJSON(map[string]any{
			"database":    cfg.DatabasePath,
			"storage_dir": cfg.StorageDir,
			"connector":   cfg.ConnectorURL,
			"running":     running,
			"zotero":      version,
		})
	}

	fmt.Println("Database: ", orNone(cfg.DatabasePath))
	fmt.Println("Storage:  ", orNone(cfg.StorageDir))
	fmt.Println("Connector:", cfg.ConnectorURL)
	if running {
		fmt.Println("Zotero:    running", parenthesize(version))
	} else {
		fmt.Println("Zotero:    not running")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}

func parenthesize(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}
