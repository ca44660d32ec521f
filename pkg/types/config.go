package types

import "errors"

// Config holds the resolved store location and network parameters for a
// Shelfmark session. It is assembled by the CLI from flags, environment
// variables, and config.yaml, then validated once before any component
// touches the store.
type Config struct {
	// DatabasePath is the absolute path to the desktop application's
	// zotero.sqlite file.
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// StorageDir is the application's attachment storage directory. Optional;
	// only needed when reading attachment payloads back off disk.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// ConnectorURL is the base URL of the application's local HTTP control
	// channel, e.g. "http://127.0.0.1:23119".
	ConnectorURL string `json:"connector_url" yaml:"connector_url"`

	// LibraryID selects the library inside the store. The personal library
	// is always 1.
	LibraryID int64 `json:"library_id" yaml:"library_id"`
}

// DefaultConnectorURL is where the desktop application listens locally.
const DefaultConnectorURL = "http://127.0.0.1:23119"

// DefaultLibraryID is the personal library.
const DefaultLibraryID int64 = 1

// Config validation errors.
var (
	ErrDatabasePathEmpty  = errors.New("database path must not be empty")
	ErrConnectorURLEmpty  = errors.New("connector URL must not be empty")
	ErrLibraryIDInvalid   = errors.New("library ID must be positive")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return ErrDatabasePathEmpty
	}
	if c.ConnectorURL == "" {
		return ErrConnectorURLEmpty
	}
	if c.LibraryID <= 0 {
		return ErrLibraryIDInvalid
	}
	return nil
}

// WithDefaults returns a copy of the Config with unset optional fields
// filled in from the package defaults.
func (c Config) WithDefaults() Config {
	if c.ConnectorURL == "" {
		c.ConnectorURL = DefaultConnectorURL
	}
	if c.LibraryID == 0 {
		c.LibraryID = DefaultLibraryID
	}
	return c
}
