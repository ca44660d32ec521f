package zotero

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// The store keeps its controlled vocabularies in lookup tables rather than
// enums: fields, itemTypes, and creatorTypes each map a name to an integer
// ID that every link row references. Nothing here is cached; vocabulary
// rows never change while the owning application is installed, but the
// lookups are cheap and caching would outlive snapshot handles.

// fieldID resolves a field name to its fieldID.
// Returns ErrFieldUnknown for names absent from the vocabulary.
func fieldID(q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRow("SELECT fieldID FROM fields WHERE fieldName = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", types.ErrFieldUnknown, name)
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// itemTypeID resolves an item type name, e.g. "attachment".
func itemTypeID(q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRow("SELECT itemTypeID FROM itemTypes WHERE typeName = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("unknown item type %q", name)
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// creatorTypeID resolves a creator type name, e.g. "author".
func creatorTypeID(q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRow("SELECT creatorTypeID FROM creatorTypes WHERE creatorType = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("unknown creator type %q", name)
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// FieldID is the exported vocabulary lookup for callers outside the
// adapter that need to know whether a field name is settable at all.
func (s *Store) FieldID(name string) (int64, error) {
	db, err := s.openLive()
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return fieldID(db, name)
}
