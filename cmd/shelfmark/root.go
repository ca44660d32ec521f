// Root command wiring: config resolution, logging, and the store handle
// every subcommand shares.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelfmark/internal/connector"
	"github.com/mesh-intelligence/shelfmark/internal/paths"
	"github.com/mesh-intelligence/shelfmark/internal/zotero"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Global flag values.
var (
	flagConfigDir  string
	flagDatabase   string
	flagStorageDir string
	flagJSON       bool
)

// Shared handles, set by PersistentPreRunE.
var (
	cfg    types.Config
	logger zerolog.Logger
	store  *zotero.Store
	conn   *connector.Client

	fetchOrder     []string
	fetchTimeout   time.Duration
	unpaywallEmail string
)

var rootCmd = &cobra.Command{
	Use:   "shelfmark",
	Short: "Shelfmark manages a local Zotero library",
	Long: `Shelfmark is a command-line companion for a local Zotero library.
It reads and edits stored items directly, fetches full-text PDFs from a
chain of external providers, and reconciles stored metadata against the
arXiv API.`,
	Version:           Version,
	PersistentPreRunE: initShelfmark,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "path to the zotero.sqlite file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagStorageDir, "storage-dir", "", "attachment storage directory (default: next to the database)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(acquireCmd)
	rootCmd.AddCommand(reconcileCmd)
}

// initShelfmark resolves config, sets up logging, and opens the store.
// The version command works without any of that.
func initShelfmark(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	logger = newLogger(v.GetString(cfgKeyLogLevel))

	dbPath := flagDatabase
	if dbPath == "" {
		dbPath = v.GetString(cfgKeyDatabasePath)
	}
	storageDir := flagStorageDir
	if storageDir == "" {
		storageDir = v.GetString(cfgKeyStorageDir)
	}
	dbPath, storageDir = paths.ResolveDatabase(dbPath, storageDir)

	cfg = types.Config{
		DatabasePath: dbPath,
		StorageDir:   storageDir,
		ConnectorURL: v.GetString(cfgKeyConnectorURL),
		LibraryID:    v.GetInt64(cfgKeyLibraryID),
	}.WithDefaults()

	fetchOrder = v.GetStringSlice(cfgKeyFetchOrder)
	fetchTimeout = time.Duration(v.GetInt(cfgKeyFetchTimeout)) * time.Second
	unpaywallEmail = v.GetString(cfgKeyUnpaywallEmail)

	conn = connector.New(cfg.ConnectorURL, logger)

	// Commands that only talk to the connector work without a store file.
	if cmd.Name() == "status" || cmd.Name() == "add" {
		return nil
	}

	store, err = zotero.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
