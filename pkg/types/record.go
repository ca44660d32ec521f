package types

import "regexp"

// Record is the identifier bundle a document provider needs to locate a
// full-text PDF for an item. It is derived from a stored Item and carries
// no store-local state.
type Record struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	DOI       string `json:"doi"`
	URL       string `json:"url"`
	ArchiveID string `json:"archiveID"` // preprint-server identifier, e.g. "2301.12345"
}

var arxivIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`arxiv\.org/abs/(\d+\.\d+)`),
	regexp.MustCompile(`arxiv\.org/pdf/(\d+\.\d+)`),
	regexp.MustCompile(`(?i)arxiv[.:]\s*(\d+\.\d+)`),
}

// ArxivID extracts a modern-format arXiv identifier from a URL or DOI
// string. Returns "" when none is present.
func ArxivID(s string) string {
	for _, re := range arxivIDPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// RecordFromItem builds the provider-facing Record for a stored item.
// The archive ID is recovered from the URL first, then the DOI, matching
// how preprint DOIs embed the archive identifier.
func RecordFromItem(item *Item) Record {
	rec := Record{
		Key:   item.Key,
		Title: item.Field(FieldTitle),
		DOI:   item.Field(FieldDOI),
		URL:   item.Field(FieldURL),
	}
	if id := ArxivID(rec.URL); id != "" {
		rec.ArchiveID = id
	} else if id := ArxivID(rec.DOI); id != "" {
		rec.ArchiveID = id
	}
	return rec
}
