package zotero

import (
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// linkModeImportedFile marks an attachment whose payload lives in the
// application's own storage directory.
const linkModeImportedFile = 0

// provenance creator stub recorded on every attachment this system writes,
// so the origin stays auditable independent of later metadata edits.
const (
	provenanceFirstName = "Shelfmark"
	provenanceLastName  = "PDF"
)

// CreateAttachment allocates a new attachment item under parentKey, with a
// display title, a filename/contentType pointer row, and the provenance
// creator stub. Everything runs in one transaction: ID allocation, the item
// row, the title field pair, the attachment row, and the creator link
// either all land or none do.
//
// No dedup is attempted; calling this twice for the same document yields
// two attachment rows. Callers wanting at-most-one semantics check
// GetAttachments first.
func (s *Store) CreateAttachment(parentKey, title, filename, contentType, path string) (*types.Attachment, error) {
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

	parentID, err := s.itemIDByKey(tx, parentKey)
	if err != nil {
		return nil, err
	}

	attachmentTypeID, err := itemTypeID(tx, types.ItemTypeAttachment)
	if err != nil {
		return nil, err
	}
	titleFieldID, err := fieldID(tx, types.FieldTitle)
	if err != nil {
		return nil, err
	}
	authorTypeID, err := creatorTypeID(tx, types.CreatorTypeAuthor)
	if err != nil {
		return nil, err
	}

	itemID, err := nextID(tx, "items", "itemID")
	if err != nil {
		return nil, err
	}
	valueID, err := nextID(tx, "itemDataValues", "valueID")
	if err != nil {
		return nil, err
	}
	creatorID, err := nextID(tx, "creators", "creatorID")
	if err != nil {
		return nil, err
	}

	key, err := generateItemKey()
	if err != nil {
		return nil, err
	}

	// A key collision trips the items.key uniqueness constraint here and
	// surfaces as ErrConstraintViolation; callers retry with a fresh key.
	_, err = tx.Exec(`
		INSERT INTO items (itemID, itemTypeID, dateAdded, dateModified, libraryID, key)
		VALUES (?, ?, datetime('now'), datetime('now'), ?, ?)`,
		itemID, attachmentTypeID, s.cfg.LibraryID, key)
	if err != nil {
		return nil, mapErr(err)
	}

	if _, err = tx.Exec(
		"INSERT INTO itemDataValues (valueID, value) VALUES (?, ?)", valueID, title); err != nil {
		return nil, mapErr(err)
	}
	if _, err = tx.Exec(
		"INSERT INTO itemData (itemID, fieldID, valueID) VALUES (?, ?, ?)",
		itemID, titleFieldID, valueID); err != nil {
		return nil, mapErr(err)
	}

	_, err = tx.Exec(`
		INSERT INTO itemAttachments (itemID, parentItemID, linkMode, contentType, filename, path)
		VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, parentID, linkModeImportedFile, contentType, filename, path)
	if err != nil {
		return nil, mapErr(err)
	}

	if _, err = tx.Exec(
		"INSERT INTO creators (creatorID, firstName, lastName) VALUES (?, ?, ?)",
		creatorID, provenanceFirstName, provenanceLastName); err != nil {
		return nil, mapErr(err)
	}
	if _, err = tx.Exec(
		"INSERT INTO itemCreators (itemID, creatorID, creatorTypeID, orderIndex) VALUES (?, ?, ?, 0)",
		itemID, creatorID, authorTypeID); err != nil {
		return nil, mapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(err)
	}

	s.log.Info().Str("parent", parentKey).Str("key", key).Str("filename", filename).
		Msg("created attachment")

	return &types.Attachment{
		ItemID:       itemID,
		Key:          key,
		ParentItemID: parentID,
		Filename:     filename,
		ContentType:  contentType,
		Path:         path,
	}, nil
}
