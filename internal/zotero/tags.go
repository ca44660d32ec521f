package zotero

import (
	"database/sql"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// SetTags replaces the item's tag links wholesale: existing itemTags rows
// are deleted, then one manual-type link is created per requested name,
// allocating a tags row for any name the store has not seen before.
// Passing an empty list clears the item's tags.
func (s *Store) SetTags(itemKey string, tags []string) error {
	db, err := s.openLive()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return mapErr(err)
	}
	defer tx.Rollback()

	itemID, err := s.itemIDByKey(tx, itemKey)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM itemTags WHERE itemID = ?", itemID); err != nil {
		return mapErr(err)
	}

	for _, name := range tags {
		tagID, err := ensureTag(tx, name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			"INSERT INTO itemTags (itemID, tagID, type) VALUES (?, ?, ?)",
			itemID, tagID, types.TagTypeManual)
		if err != nil {
			return mapErr(err)
		}
	}

	return mapErr(tx.Commit())
}

// ensureTag returns the tagID for name, allocating a row when absent.
func ensureTag(q querier, name string) (int64, error) {
	var tagID int64
	err := q.QueryRow("SELECT tagID FROM tags WHERE name = ?", name).Scan(&tagID)
	if err == nil {
		return tagID, nil
	}
	if err != sql.ErrNoRows {
		return 0, mapErr(err)
	}

	tagID, err = nextID(q, "tags", "tagID")
	if err != nil {
		return 0, err
	}
	if _, err := q.Exec("INSERT INTO tags (tagID, name) VALUES (?, ?)", tagID, name); err != nil {
		return 0, mapErr(err)
	}
	return tagID, nil
}

// GetTags returns the item's tags with their manual/automatic type.
func (s *Store) GetTags(itemKey string) ([]types.Tag, error) {
	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	itemID, err := s.itemIDByKey(db, itemKey)
	if err != nil {
		return nil, err
	}
	return getTags(db, itemID)
}

func getTags(q querier, itemID int64) ([]types.Tag, error) {
	rows, err := q.Query(`
		SELECT t.name, it.type
		FROM itemTags it
		JOIN tags t ON it.tagID = t.tagID
		WHERE it.itemID = ?
		ORDER BY t.name`, itemID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
