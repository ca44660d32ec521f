package zotero

import (
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// SetFields upserts field values on an item. Per field: when an itemData
// row already exists for (itemID, field) the linked value row is
// overwritten in place, otherwise a fresh itemDataValues row is allocated
// and linked. Field names absent from the store vocabulary are skipped with
// a warning, not treated as fatal. Returns the field names actually
// written, and the item's dateModified is refreshed when any were.
//
// The whole map is applied inside one transaction; a late failure rolls
// back earlier fields rather than leaving a half-applied update.
func (s *Store) SetFields(itemKey string, fields map[string]string) ([]string, error) {
	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return nil, mapErr(err)
	}
	defer tx.Rollback()

	itemID, err := s.itemIDByKey(tx, itemKey)
	if err != nil {
		return nil, err
	}

	var applied []string
	for name, value := range fields {
		fid, err := fieldID(tx, name)
		if errors.Is(err, types.ErrFieldUnknown) {
			s.log.Warn().Str("field", name).Str("key", itemKey).Msg("skipping unknown field")
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := upsertField(tx, itemID, fid, value); err != nil {
			return nil, err
		}
		applied = append(applied, name)
	}

	if len(applied) > 0 {
		_, err = tx.Exec(
			"UPDATE items SET dateModified = datetime('now') WHERE itemID = ?", itemID)
		if err != nil {
			return nil, mapErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(err)
	}
	return applied, nil
}

// upsertField writes one (itemID, fieldID) → value association.
func upsertField(q querier, itemID, fid int64, value string) error {
	var valueID int64
	err := q.QueryRow(
		"SELECT valueID FROM itemData WHERE itemID = ? AND fieldID = ?",
		itemID, fid,
	).Scan(&valueID)

	switch {
	case err == nil:
		// Overwrite the existing value row in place.
		_, err = q.Exec("UPDATE itemDataValues SET value = ? WHERE valueID = ?", value, valueID)
		return mapErr(err)
	case err == sql.ErrNoRows:
		valueID, err = nextID(q, "itemDataValues", "valueID")
		if err != nil {
			return err
		}
		if _, err = q.Exec(
			"INSERT INTO itemDataValues (valueID, value) VALUES (?, ?)", valueID, value); err != nil {
			return mapErr(err)
		}
		_, err = q.Exec(
			"INSERT INTO itemData (itemID, fieldID, valueID) VALUES (?, ?, ?)",
			itemID, fid, valueID)
		return mapErr(err)
	default:
		return mapErr(err)
	}
}

// nextID allocates MAX(column)+1 from the given table. The store manages
// its own row IDs this way rather than with AUTOINCREMENT. Safe only
// because every allocate-and-insert sequence here runs inside a single
// transaction, which serializes against SQLite's write lock; see the
// concurrency notes in DESIGN.md.
func nextID(q querier, table, column string) (int64, error) {
	var maxID sql.NullInt64
	if err := q.QueryRow("SELECT MAX(" + column + ") FROM " + table).Scan(&maxID); err != nil {
		return 0, mapErr(err)
	}
	return maxID.Int64 + 1, nil
}
