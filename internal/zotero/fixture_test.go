package zotero

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// fixtureSchema is the subset of the foreign store's schema this adapter
// touches. The real store defines many more tables and columns; tests only
// need the ones the adapter reads and writes.
const fixtureSchema = `
CREATE TABLE itemTypes (
    itemTypeID INTEGER PRIMARY KEY,
    typeName TEXT NOT NULL UNIQUE
);
CREATE TABLE fields (
    fieldID INTEGER PRIMARY KEY,
    fieldName TEXT NOT NULL UNIQUE
);
CREATE TABLE creatorTypes (
    creatorTypeID INTEGER PRIMARY KEY,
    creatorType TEXT NOT NULL UNIQUE
);
CREATE TABLE items (
    itemID INTEGER PRIMARY KEY,
    itemTypeID INTEGER NOT NULL,
    dateAdded TEXT NOT NULL,
    dateModified TEXT NOT NULL,
    libraryID INTEGER NOT NULL,
    key TEXT NOT NULL,
    UNIQUE (libraryID, key)
);
CREATE TABLE itemDataValues (
    valueID INTEGER PRIMARY KEY,
    value TEXT
);
CREATE TABLE itemData (
    itemID INTEGER NOT NULL,
    fieldID INTEGER NOT NULL,
    valueID INTEGER NOT NULL,
    PRIMARY KEY (itemID, fieldID)
);
CREATE TABLE creators (
    creatorID INTEGER PRIMARY KEY,
    firstName TEXT,
    lastName TEXT
);
CREATE TABLE itemCreators (
    itemID INTEGER NOT NULL,
    creatorID INTEGER NOT NULL,
    creatorTypeID INTEGER NOT NULL,
    orderIndex INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (itemID, orderIndex)
);
CREATE TABLE tags (
    tagID INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE itemTags (
    itemID INTEGER NOT NULL,
    tagID INTEGER NOT NULL,
    type INTEGER NOT NULL,
    PRIMARY KEY (itemID, tagID)
);
CREATE TABLE collections (
    collectionID INTEGER PRIMARY KEY,
    collectionName TEXT NOT NULL,
    parentCollectionID INTEGER,
    libraryID INTEGER NOT NULL,
    key TEXT NOT NULL
);
CREATE TABLE collectionItems (
    collectionID INTEGER NOT NULL,
    itemID INTEGER NOT NULL,
    PRIMARY KEY (collectionID, itemID)
);
CREATE TABLE itemAttachments (
    itemID INTEGER PRIMARY KEY,
    parentItemID INTEGER,
    linkMode INTEGER,
    contentType TEXT,
    filename TEXT,
    path TEXT,
    storagePath TEXT
);
CREATE TABLE itemNotes (
    itemID INTEGER PRIMARY KEY,
    parentItemID INTEGER,
    note TEXT
);
`

// fixtureSeed fills the controlled vocabularies.
const fixtureSeed = `
INSERT INTO itemTypes (itemTypeID, typeName) VALUES
    (1, 'journalArticle'), (2, 'preprint'), (3, 'attachment'), (4, 'note');
INSERT INTO fields (fieldID, fieldName) VALUES
    (1, 'title'), (2, 'abstractNote'), (3, 'date'), (4, 'DOI'),
    (5, 'url'), (6, 'publicationTitle'), (7, 'extra');
INSERT INTO creatorTypes (creatorTypeID, creatorType) VALUES
    (1, 'author'), (2, 'editor');
`

// newTestStore creates a throwaway store file with the fixture schema and
// returns an adapter opened over it plus a raw handle for direct asserts.
func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "zotero.sqlite")
	raw, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	_, err = raw.Exec(fixtureSchema)
	require.NoError(t, err)
	_, err = raw.Exec(fixtureSeed)
	require.NoError(t, err)

	cfg := types.Config{
		DatabasePath: dbPath,
		StorageDir:   filepath.Join(t.TempDir(), "storage"),
		ConnectorURL: types.DefaultConnectorURL,
		LibraryID:    1,
	}
	store, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	return store, raw
}

// seedItem inserts an item row with fields and ordered creators, the way
// the owning application would have written it.
func seedItem(t *testing.T, db *sql.DB, key, typeName string, fields map[string]string, creators []types.Creator) int64 {
	t.Helper()

	var typeID int64
	require.NoError(t, db.QueryRow(
		"SELECT itemTypeID FROM itemTypes WHERE typeName = ?", typeName).Scan(&typeID))

	itemID := rawNextID(t, db, "items", "itemID")
	_, err := db.Exec(`
		INSERT INTO items (itemID, itemTypeID, dateAdded, dateModified, libraryID, key)
		VALUES (?, ?, datetime('now'), datetime('now'), 1, ?)`, itemID, typeID, key)
	require.NoError(t, err)

	for name, value := range fields {
		var fid int64
		require.NoError(t, db.QueryRow(
			"SELECT fieldID FROM fields WHERE fieldName = ?", name).Scan(&fid))
		valueID := rawNextID(t, db, "itemDataValues", "valueID")
		_, err = db.Exec("INSERT INTO itemDataValues (valueID, value) VALUES (?, ?)", valueID, value)
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO itemData (itemID, fieldID, valueID) VALUES (?, ?, ?)",
			itemID, fid, valueID)
		require.NoError(t, err)
	}

	for i, c := range creators {
		var ctID int64
		require.NoError(t, db.QueryRow(
			"SELECT creatorTypeID FROM creatorTypes WHERE creatorType = ?", c.CreatorType).Scan(&ctID))
		creatorID := rawNextID(t, db, "creators", "creatorID")
		_, err = db.Exec("INSERT INTO creators (creatorID, firstName, lastName) VALUES (?, ?, ?)",
			creatorID, c.FirstName, c.LastName)
		require.NoError(t, err)
		_, err = db.Exec(
			"INSERT INTO itemCreators (itemID, creatorID, creatorTypeID, orderIndex) VALUES (?, ?, ?, ?)",
			itemID, creatorID, ctID, i)
		require.NoError(t, err)
	}

	return itemID
}

func seedCollection(t *testing.T, db *sql.DB, key, name string) int64 {
	t.Helper()
	id := rawNextID(t, db, "collections", "collectionID")
	_, err := db.Exec(
		"INSERT INTO collections (collectionID, collectionName, libraryID, key) VALUES (?, ?, 1, ?)",
		id, name, key)
	require.NoError(t, err)
	return id
}

func rawNextID(t *testing.T, db *sql.DB, table, column string) int64 {
	t.Helper()
	var maxID sql.NullInt64
	require.NoError(t, db.QueryRow("SELECT MAX("+column+") FROM "+table).Scan(&maxID))
	return maxID.Int64 + 1
}

// countRows asserts the number of rows in table matching itemID.
func countRows(t *testing.T, db *sql.DB, table string, itemID int64) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM "+table+" WHERE itemID = ?", itemID).Scan(&n))
	return n
}
