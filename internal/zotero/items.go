package zotero

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// GetItemByKey reads a full item record from the live store: every field
// value, creators in stored order, tags, attachments, and notes.
func (s *Store) GetItemByKey(key string) (*types.Item, error) {
	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	item, err := s.hydrateItem(db, key)
	if err != nil {
		return nil, err
	}

	item.Tags, err = getTags(db, item.ID)
	if err != nil {
		return nil, err
	}
	item.Attachments, err = getAttachments(db, item.ID)
	if err != nil {
		return nil, err
	}
	item.Notes, err = getNotes(db, item.ID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// hydrateItem loads the item row, its field values, and its ordered creators.
func (s *Store) hydrateItem(q querier, key string) (*types.Item, error) {
	item := &types.Item{Fields: make(map[string]string)}
	err := q.QueryRow(`
		SELECT i.itemID, i.key, t.typeName, i.dateAdded, i.dateModified
		FROM items i
		JOIN itemTypes t ON i.itemTypeID = t.itemTypeID
		WHERE i.key = ? AND i.libraryID = ?`,
		key, s.cfg.LibraryID,
	).Scan(&item.ID, &item.Key, &item.ItemType, &item.DateAdded, &item.DateModified)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", types.ErrItemNotFound, key)
	}
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := q.Query(`
		SELECT f.fieldName, v.value
		FROM itemData d
		JOIN fields f ON d.fieldID = f.fieldID
		JOIN itemDataValues v ON d.valueID = v.valueID
		WHERE d.itemID = ?`, item.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		item.Fields[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	item.Creators, err = getCreators(q, item.ID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// getCreators returns creators ordered by their stored position. Order is
// significant: author lists are meaningful only in sequence.
func getCreators(q querier, itemID int64) ([]types.Creator, error) {
	rows, err := q.Query(`
		SELECT c.firstName, c.lastName, ct.creatorType
		FROM itemCreators ic
		JOIN creators c ON ic.creatorID = c.creatorID
		JOIN creatorTypes ct ON ic.creatorTypeID = ct.creatorTypeID
		WHERE ic.itemID = ?
		ORDER BY ic.orderIndex`, itemID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var creators []types.Creator
	for rows.Next() {
		var c types.Creator
		var first, last sql.NullString
		if err := rows.Scan(&first, &last, &c.CreatorType); err != nil {
			return nil, err
		}
		c.FirstName = first.String
		c.LastName = last.String
		creators = append(creators, c)
	}
	return creators, rows.Err()
}

// ListItems returns a page of the library ordered newest-first, from a
// snapshot copy so long scans never contend with the owning application.
// Attachment and note rows are excluded; they surface as children of their
// parents. With details enabled each summary also carries attachment, note,
// and tag counts plus the first five tag names.
func (s *Store) ListItems(offset, limit int, withDetails bool) ([]types.ItemSummary, error) {
	var items []types.ItemSummary
	err := s.withSnapshot(func(db *sql.DB) error {
		rows, err := db.Query(`
			SELECT i.itemID, i.key, t.typeName, i.dateAdded, i.dateModified,
			       COALESCE((SELECT v.value FROM itemData d
			                 JOIN fields f ON d.fieldID = f.fieldID
			                 JOIN itemDataValues v ON d.valueID = v.valueID
			                 WHERE d.itemID = i.itemID AND f.fieldName = 'title'), 'Untitled')
			FROM items i
			JOIN itemTypes t ON i.itemTypeID = t.itemTypeID
			WHERE i.libraryID = ? AND t.typeName NOT IN (?, ?)
			ORDER BY i.dateAdded DESC
			LIMIT ? OFFSET ?`,
			s.cfg.LibraryID, types.ItemTypeAttachment, types.ItemTypeNote, limit, offset)
		if err != nil {
			return mapErr(err)
		}
		defer rows.Close()

		for rows.Next() {
			var it types.ItemSummary
			if err := rows.Scan(&it.ID, &it.Key, &it.ItemType, &it.DateAdded, &it.DateModified, &it.Title); err != nil {
				return err
			}
			items = append(items, it)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		if !withDetails {
			return nil
		}
		for i := range items {
			atts, err := getAttachments(db, items[i].ID)
			if err != nil {
				return err
			}
			notes, err := getNotes(db, items[i].ID)
			if err != nil {
				return err
			}
			tags, err := getTags(db, items[i].ID)
			if err != nil {
				return err
			}
			items[i].AttachmentCount = len(atts)
			items[i].NoteCount = len(notes)
			items[i].TagCount = len(tags)
			for _, tag := range tags[:min(len(tags), 5)] {
				items[i].Tags = append(items[i].Tags, tag.Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItemsByTitle returns up to 50 items whose title contains the query,
// newest first, from a snapshot copy.
func (s *Store) SearchItemsByTitle(query string) ([]types.ItemSummary, error) {
	var items []types.ItemSummary
	err := s.withSnapshot(func(db *sql.DB) error {
		rows, err := db.Query(`
			SELECT DISTINCT i.itemID, i.key, t.typeName, i.dateAdded, i.dateModified, v.value
			FROM items i
			JOIN itemTypes t ON i.itemTypeID = t.itemTypeID
			JOIN itemData d ON i.itemID = d.itemID
			JOIN itemDataValues v ON d.valueID = v.valueID
			JOIN fields f ON d.fieldID = f.fieldID
			WHERE i.libraryID = ? AND f.fieldName = 'title' AND v.value LIKE ?
			ORDER BY i.dateAdded DESC
			LIMIT 50`,
			s.cfg.LibraryID, "%"+query+"%")
		if err != nil {
			return mapErr(err)
		}
		defer rows.Close()

		for rows.Next() {
			var it types.ItemSummary
			if err := rows.Scan(&it.ID, &it.Key, &it.ItemType, &it.DateAdded, &it.DateModified, &it.Title); err != nil {
				return err
			}
			items = append(items, it)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem removes the item and all of its child rows. Children go first
// so a partial failure can never leave links pointing at a missing item;
// the whole sequence runs in one transaction and rolls back on any failure.
func (s *Store) DeleteItem(key string) error {
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

	itemID, err := s.itemIDByKey(tx, key)
	if err != nil {
		return err
	}

	childTables := []string{
		"itemTags", "itemCreators", "itemData", "collectionItems",
		"itemAttachments", "itemNotes",
	}
	for _, table := range childTables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE itemID = ?", itemID); err != nil {
			return mapErr(err)
		}
	}
	if _, err := tx.Exec("DELETE FROM items WHERE itemID = ?", itemID); err != nil {
		return mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return mapErr(err)
	}
	s.log.Info().Str("key", key).Int64("itemID", itemID).Msg("deleted item")
	return nil
}
