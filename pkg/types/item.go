package types

import "strings"

// Item type names as stored in the itemTypes vocabulary table.
const (
	ItemTypeJournalArticle = "journalArticle"
	ItemTypePreprint       = "preprint"
	ItemTypeAttachment     = "attachment"
	ItemTypeNote           = "note"
)

// Creator type names from the creatorTypes vocabulary table.
const (
	CreatorTypeAuthor = "author"
	CreatorTypeEditor = "editor"
)

// Field names this system reads and writes. The store knows many more;
// these are the ones the reconciler and attachment writer touch.
const (
	FieldTitle            = "title"
	FieldAbstract         = "abstractNote"
	FieldDate             = "date"
	FieldDOI              = "DOI"
	FieldURL              = "url"
	FieldPublicationTitle = "publicationTitle"
	FieldExtra            = "extra"
)

// Tag link types in the itemTags table.
const (
	TagTypeManual    = 0
	TagTypeAutomatic = 1
)

// Item is a bibliographic record as read from the store. ID is the
// store-local row ID and is never exposed outside this system; Key is the
// stable external identifier.
type Item struct {
	ID           int64             `json:"itemID"`
	Key          string            `json:"itemKey"`
	ItemType     string            `json:"itemType"`
	DateAdded    string            `json:"dateAdded"`
	DateModified string            `json:"dateModified"`
	Fields       map[string]string `json:"fields,omitempty"`
	Creators     []Creator         `json:"creators,omitempty"`
	Tags         []Tag             `json:"tags,omitempty"`
	Attachments  []Attachment      `json:"attachments,omitempty"`
	Notes        []Note            `json:"notes,omitempty"`
}

// Field returns the value of a named field, or "" when unset.
func (i *Item) Field(name string) string {
	if i.Fields == nil {
		return ""
	}
	return i.Fields[name]
}

// Title returns the item's title field, or "Untitled" when unset, matching
// how the store's own UI labels title-less rows.
func (i *Item) Title() string {
	if t := i.Field(FieldTitle); t != "" {
		return t
	}
	return "Untitled"
}

// AuthorLastNames returns the last names of author-role creators in stored
// order. Used for set-wise author comparison during reconciliation.
func (i *Item) AuthorLastNames() []string {
	var names []string
	for _, c := range i.Creators {
		if c.CreatorType != CreatorTypeAuthor && c.CreatorType != "coauthor" {
			continue
		}
		if ln := strings.TrimSpace(c.LastName); ln != "" {
			names = append(names, ln)
		}
	}
	return names
}

// Creator is one name attached to an item. Order among an item's creators
// is significant and preserved by the store adapter.
type Creator struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CreatorType string `json:"creatorType"`
}

// Tag is a named label linked to an item. Type distinguishes manual tags
// from ones added automatically by ingestion.
type Tag struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

// Attachment is a child item of type "attachment". The store holds only a
// pointer to the file; the payload lives under the storage directory.
type Attachment struct {
	ItemID       int64  `json:"attachmentItemID"`
	Key          string `json:"key"`
	ParentItemID int64  `json:"parentItemID"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
	Path         string `json:"path"`
	StoragePath  string `json:"storagePath,omitempty"`
}

// Note is a child item of type "note" with a free-text body.
type Note struct {
	ItemID       int64  `json:"noteItemID"`
	Key          string `json:"key"`
	ParentItemID int64  `json:"parentItemID"`
	Note         string `json:"note"`
}

// Collection is a named, optionally nested folder of items.
type Collection struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	ParentID int64  `json:"parentCollection,omitempty"` // 0 = top level
}

// ItemSummary is the compact listing row returned by bulk scans.
type ItemSummary struct {
	ID              int64    `json:"itemID"`
	Key             string   `json:"itemKey"`
	ItemType        string   `json:"itemType"`
	Title           string   `json:"title"`
	DateAdded       string   `json:"dateAdded"`
	DateModified    string   `json:"dateModified"`
	AttachmentCount int      `json:"attachment_count,omitempty"`
	NoteCount       int      `json:"note_count,omitempty"`
	TagCount        int      `json:"tag_count,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}
