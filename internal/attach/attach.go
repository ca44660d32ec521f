// Package attach turns validated document bytes into a stored attachment
// linked to its parent item, including the on-disk file the store row
// points at.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Store is the persistence surface the writer needs. Satisfied by
// *zotero.Store.
type Store interface {
	CreateAttachment(parentKey, title, filename, contentType, path string) (*types.Attachment, error)
	DeleteItem(key string) error
	StorageDir() string
}

const pdfContentType = "application/pdf"

// Writer links fetched documents to their parent items. Creating the same
// logical document twice yields two rows; dedup is the caller's call,
// checked against existing attachments beforehand.
type Writer struct {
	store Store
	log   zerolog.Logger
}

func NewWriter(store Store, log zerolog.Logger) *Writer {
	return &Writer{
		store: store,
		log:   log.With().Str("component", "attach").Logger(),
	}
}

// Attach persists data as a new attachment under the parent item and
// returns the created row. The row is written first so the attachment key
// can name the storage folder; if the file cannot be written afterwards
// the row is rolled back so the store never points at a missing file.
func (w *Writer) Attach(parentKey string, data []byte, suggestedFilename string) (*types.Attachment, error) {
	filename := SanitizeFilename(suggestedFilename)
	title := TitleFromFilename(filename)

	att, err := w.store.CreateAttachment(parentKey, title, filename, pdfContentType, "storage:"+filename)
	if err != nil {
		return nil, fmt.Errorf("create attachment row: %w", err)
	}

	if dir := w.store.StorageDir(); dir != "" {
		if err := w.writeFile(filepath.Join(dir, att.Key, filename), data); err != nil {
			if delErr := w.store.DeleteItem(att.Key); delErr != nil {
				w.log.Error().Str("key", att.Key).Err(delErr).Msg("rollback of attachment row failed")
			}
			return nil, fmt.Errorf("write attachment file: %w", err)
		}
	}

	w.log.Info().Str("parent", parentKey).Str("key", att.Key).Int("bytes", len(data)).Msg("attachment stored")
	return att, nil
}

func (w *Writer) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SanitizeFilename strips path separators and characters the desktop
// application refuses, and guarantees a .pdf suffix. Empty or unusable
// input falls back to "document.pdf".
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "", "?", "",
		"\"", "", "<", "", ">", "", "|", "-",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, ". ")

	if name == "" || name == "." {
		name = "document"
	}
	name = cutAtRune(name, 100)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// TitleFromFilename derives a display title from the stored filename.
func TitleFromFilename(filename string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "Full Text PDF"
	}
	return title
}

// FilenameForRecord picks the download filename for a record, preferring
// the title over an opaque identifier.
func FilenameForRecord(rec types.Record) string {
	if rec.Title != "" {
		return SanitizeFilename(cutAtRune(rec.Title, 80) + ".pdf")
	}
	if rec.ArchiveID != "" {
		return SanitizeFilename(rec.ArchiveID + ".pdf")
	}
	return "document.pdf"
}

// cutAtRune trims s to at most n bytes without splitting a multi-byte rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
