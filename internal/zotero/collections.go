package zotero

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Collections lists every collection in the library, from a snapshot copy.
func (s *Store) Collections() ([]types.Collection, error) {
	var collections []types.Collection
	err := s.withSnapshot(func(db *sql.DB) error {
		rows, err := db.Query(`
			SELECT collectionID, key, collectionName, COALESCE(parentCollectionID, 0)
			FROM collections
			WHERE libraryID = ?
			ORDER BY collectionName`, s.cfg.LibraryID)
		if err != nil {
			return mapErr(err)
		}
		defer rows.Close()

		for rows.Next() {
			var c types.Collection
			if err := rows.Scan(&c.ID, &c.Key, &c.Name, &c.ParentID); err != nil {
				return err
			}
			collections = append(collections, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return collections, nil
}

// LinkItemToCollection adds the item to the collection. Linking an item
// that is already in the collection is a no-op reported via the returned
// flag, not an error.
func (s *Store) LinkItemToCollection(itemKey, collectionKey string) (already bool, err error) {
	db, err := s.openLive()
	if err != nil {
		return false, err
	}
	defer db.Close()

	itemID, err := s.itemIDByKey(db, itemKey)
	if err != nil {
		return false, err
	}

	var collectionID int64
	err = db.QueryRow(
		"SELECT collectionID FROM collections WHERE key = ? AND libraryID = ?",
		collectionKey, s.cfg.LibraryID,
	).Scan(&collectionID)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("%w: %s", types.ErrCollectionNotFound, collectionKey)
	}
	if err != nil {
		return false, mapErr(err)
	}

	var one int
	err = db.QueryRow(
		"SELECT 1 FROM collectionItems WHERE collectionID = ? AND itemID = ?",
		collectionID, itemID,
	).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err != sql.ErrNoRows {
		return false, mapErr(err)
	}

	_, err = db.Exec(
		"INSERT INTO collectionItems (collectionID, itemID) VALUES (?, ?)",
		collectionID, itemID)
	if err != nil {
		return false, mapErr(err)
	}
	s.log.Info().Str("item", itemKey).Str("collection", collectionKey).Msg("linked item to collection")
	return false, nil
}
