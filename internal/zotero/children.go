package zotero

import (
	"database/sql"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// GetAttachments returns the attachment children of an item.
func (s *Store) GetAttachments(itemKey string) ([]types.Attachment, error) {
	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	itemID, err := s.itemIDByKey(db, itemKey)
	if err != nil {
		return nil, err
	}
	return getAttachments(db, itemID)
}

func getAttachments(q querier, parentItemID int64) ([]types.Attachment, error) {
	rows, err := q.Query(`
		SELECT a.itemID, i.key, a.parentItemID, a.filename, a.contentType,
		       a.path, COALESCE(a.storagePath, '')
		FROM itemAttachments a
		JOIN items i ON a.itemID = i.itemID
		WHERE a.parentItemID = ?
		ORDER BY a.itemID`, parentItemID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var attachments []types.Attachment
	for rows.Next() {
		var a types.Attachment
		var filename, contentType, path sql.NullString
		if err := rows.Scan(&a.ItemID, &a.Key, &a.ParentItemID,
			&filename, &contentType, &path, &a.StoragePath); err != nil {
			return nil, err
		}
		a.Filename = filename.String
		a.ContentType = contentType.String
		a.Path = path.String
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// GetNotes returns the note children of an item.
func (s *Store) GetNotes(itemKey string) ([]types.Note, error) {
	db, err := s.openLive()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	itemID, err := s.itemIDByKey(db, itemKey)
	if err != nil {
		return nil, err
	}
	return getNotes(db, itemID)
}

func getNotes(q querier, parentItemID int64) ([]types.Note, error) {
	rows, err := q.Query(`
		SELECT n.itemID, i.key, n.parentItemID, n.note
		FROM itemNotes n
		JOIN items i ON n.itemID = i.itemID
		WHERE n.parentItemID = ?
		ORDER BY n.itemID`, parentItemID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var notes []types.Note
	for rows.Next() {
		var n types.Note
		var body sql.NullString
		if err := rows.Scan(&n.ItemID, &n.Key, &n.ParentItemID, &body); err != nil {
			return nil, err
		}
		n.Note = body.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
