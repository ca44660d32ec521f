package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeStore creates a directory shaped like a Zotero data directory.
func writeFakeStore(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DatabaseFileName), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, StorageDirName), 0o755))
	return root
}

func TestResolveDatabaseRootEnv(t *testing.T) {
	root := writeFakeStore(t)
	t.Setenv(EnvZoteroRoot, root)
	t.Setenv(EnvZoteroDB, "")
	t.Setenv(EnvZoteroDir, "")

	db, storage := ResolveDatabase("", "")

	assert.Equal(t, filepath.Join(root, DatabaseFileName), db)
	assert.Equal(t, filepath.Join(root, StorageDirName), storage)
}

func TestResolveDatabaseDBEnvWinsOverRoot(t *testing.T) {
	rootA := writeFakeStore(t)
	rootB := writeFakeStore(t)
	t.Setenv(EnvZoteroRoot, rootA)
	t.Setenv(EnvZoteroDB, filepath.Join(rootB, DatabaseFileName))
	t.Setenv(EnvZoteroDir, "")

	db, _ := ResolveDatabase("", "")
	assert.Equal(t, filepath.Join(rootB, DatabaseFileName), db)
}

func TestResolveDatabaseConfigFallback(t *testing.T) {
	root := writeFakeStore(t)
	t.Setenv(EnvZoteroRoot, "")
	t.Setenv(EnvZoteroDB, "")
	t.Setenv(EnvZoteroDir, "")

	db, storage := ResolveDatabase(filepath.Join(root, DatabaseFileName), "")

	assert.Equal(t, filepath.Join(root, DatabaseFileName), db)
	assert.Equal(t, filepath.Join(root, StorageDirName), storage,
		"storage derived from the database directory when unset")
}

func TestResolveDatabaseMissingPathsIgnored(t *testing.T) {
	t.Setenv(EnvZoteroRoot, "")
	t.Setenv(EnvZoteroDB, filepath.Join(t.TempDir(), "nope.sqlite"))
	t.Setenv(EnvZoteroDir, "")

	// Probe falls through to platform candidates; with a scratch home
	// nothing exists, so both come back empty.
	origHome := platformDir.homeDir
	platformDir.homeDir = func() (string, error) { return t.TempDir(), nil }
	defer func() { platformDir.homeDir = origHome }()

	db, storage := ResolveDatabase("", "")
	assert.Empty(t, db)
	assert.Empty(t, storage)
}

func TestResolveConfigDirPrecedence(t *testing.T) {
	flagDir := t.TempDir()
	envDir := t.TempDir()
	t.Setenv(EnvConfigDir, envDir)

	got, err := ResolveConfigDir(flagDir)
	require.NoError(t, err)
	assert.Equal(t, flagDir, got, "flag wins over env")

	got, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, envDir, got, "env wins when flag unset")
}
