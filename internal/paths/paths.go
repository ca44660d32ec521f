// Package paths locates the desktop application's store file and the
// Shelfmark configuration directory across platforms.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DatabaseFileName is the store database filename inside a profile or root
// directory.
const DatabaseFileName = "zotero.sqlite"

// StorageDirName is the attachment payload directory next to the database.
const StorageDirName = "storage"

// Environment variable names for overrides. Root is the recommended form;
// the DB and DIR variables override individual paths and win over Root.
const (
	EnvZoteroRoot = "SHELFMARK_ZOTERO_ROOT"
	EnvZoteroDB   = "SHELFMARK_ZOTERO_DB"
	EnvZoteroDir  = "SHELFMARK_ZOTERO_DIR"
	EnvConfigDir  = "SHELFMARK_CONFIG_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/shelfmark (fallback ~/.config/shelfmark)
// macOS:   ~/Library/Application Support/shelfmark
// Windows: %APPDATA%/shelfmark
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "shelfmark"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "shelfmark"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "shelfmark"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SHELFMARK_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// candidateDatabasePaths lists the per-platform locations the desktop
// application keeps its store in, in probe order.
func candidateDatabasePaths() []string {
	var candidates []string

	home, err := platformDir.homeDir()
	if err != nil {
		return candidates
	}

	// Modern default data directory on every platform.
	candidates = append(candidates, filepath.Join(home, "Zotero", DatabaseFileName))

	switch runtime.GOOS {
	case "darwin":
		appSupport := filepath.Join(home, "Library", "Application Support", "Zotero")
		candidates = append(candidates, filepath.Join(appSupport, DatabaseFileName))
		candidates = append(candidates, profileDatabases(filepath.Join(appSupport, "Profiles"))...)
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			candidates = append(candidates,
				profileDatabases(filepath.Join(appdata, "Zotero", "Zotero", "Profiles"))...)
		}
	default:
		candidates = append(candidates, filepath.Join(home, ".zotero", DatabaseFileName))
	}

	return candidates
}

// profileDatabases returns one candidate per profile directory.
func profileDatabases(profilesBase string) []string {
	entries, err := os.ReadDir(profilesBase)
	if err != nil {
		return nil
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			candidates = append(candidates, filepath.Join(profilesBase, e.Name(), DatabaseFileName))
		}
	}
	return candidates
}

// ResolveDatabase returns the store database path and storage directory
// following the precedence chain:
//
//	SHELFMARK_ZOTERO_DB / _DIR env > SHELFMARK_ZOTERO_ROOT env >
//	config values > platform default probe.
//
// Either return value may be "" when nothing resolves; callers treat a
// missing database as ErrStoreUnavailable.
func ResolveDatabase(configDB, configStorage string) (dbPath, storageDir string) {
	if root := os.Getenv(EnvZoteroRoot); root != "" {
		root = expandHome(root)
		if candidate := filepath.Join(root, DatabaseFileName); fileExists(candidate) {
			dbPath = candidate
		}
		if candidate := filepath.Join(root, StorageDirName); dirExists(candidate) {
			storageDir = candidate
		}
	}

	// Individual env overrides win over the root derivation.
	if env := os.Getenv(EnvZoteroDB); env != "" {
		if candidate := expandHome(env); fileExists(candidate) {
			dbPath = candidate
		}
	}
	if env := os.Getenv(EnvZoteroDir); env != "" {
		if candidate := expandHome(env); dirExists(candidate) {
			storageDir = candidate
		}
	}

	if dbPath == "" && configDB != "" {
		if candidate := expandHome(configDB); fileExists(candidate) {
			dbPath = candidate
		}
	}
	if storageDir == "" && configStorage != "" {
		if candidate := expandHome(configStorage); dirExists(candidate) {
			storageDir = candidate
		}
	}

	if dbPath == "" {
		for _, candidate := range candidateDatabasePaths() {
			if fileExists(candidate) {
				dbPath = candidate
				break
			}
		}
	}

	if storageDir == "" && dbPath != "" {
		if candidate := filepath.Join(filepath.Dir(dbPath), StorageDirName); dirExists(candidate) {
			storageDir = candidate
		}
	}

	return dbPath, storageDir
}

func expandHome(p string) string {
	if len(p) >= 2 && p[0] == '~' && os.IsPathSeparator(p[1]) {
		if home, err := platformDir.homeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
