// Package arxiv talks to the arXiv Atom API for bibliographic metadata.
// This is the authoritative source the reconciler compares stored records
// against, and the metadata source when registering new preprints.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// DefaultBaseURL is the public query endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

// ErrNoEntry means the API answered but had no record for the identifier.
var ErrNoEntry = errors.New("no matching arXiv entry")

// Metadata is one paper's bibliographic record as arXiv publishes it.
// Dates are normalized to YYYY/MM/DD, the format the store uses.
type Metadata struct {
	ID             string          `json:"arxivID"`
	Title          string          `json:"title"`
	Abstract       string          `json:"abstract"`
	Date           string          `json:"date"`
	Updated        string          `json:"updated,omitempty"`
	DOI            string          `json:"doi,omitempty"`
	PrimarySubject string          `json:"primarySubject,omitempty"`
	Subjects       []string        `json:"subjects,omitempty"`
	Comment        string          `json:"comment,omitempty"`
	JournalRef     string          `json:"journalRef,omitempty"`
	Authors        []types.Creator `json:"authors,omitempty"`
	AbsURL         string          `json:"absURL"`
	PDFURL         string          `json:"pdfURL"`
}

// Client queries the arXiv API. The zero value is not usable; construct
// with NewClient.
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

func NewClient(log zerolog.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: DefaultBaseURL,
		log:     log.With().Str("component", "arxiv").Logger(),
	}
}

// Atom feed shapes. The arxiv-namespace extension elements carry DOI,
// comment and journal reference when the paper has them.
type atomFeed struct {
	TotalResults int         `xml:"http://a9.com/-/spec/opensearch/1.0/ totalResults"`
	Entries      []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string `xml:"id"`
	Title      string `xml:"title"`
	Summary    string `xml:"summary"`
	Published  string `xml:"published"`
	Updated    string `xml:"updated"`
	DOI        string `xml:"http://arxiv.org/schemas/atom doi"`
	Comment    string `xml:"http://arxiv.org/schemas/atom comment"`
	JournalRef string `xml:"http://arxiv.org/schemas/atom journal_ref"`

	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"http://arxiv.org/schemas/atom primary_category"`

	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`

	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`

	Links []struct {
		Rel  string `xml:"rel,attr"`
		Type string `xml:"type,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// GetByID fetches the metadata record for one arXiv identifier.
func (c *Client) GetByID(ctx context.Context, id string) (*Metadata, error) {
	q := url.Values{}
	q.Set("id_list", id)
	q.Set("max_results", "1")

	feed, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoEntry, id)
	}

	md := entryToMetadata(feed.Entries[0])
	if md.ID == "" {
		md.ID = id
	}
	if md.AbsURL == "" {
		md.AbsURL = "https://arxiv.org/abs/" + md.ID
	}
	if md.PDFURL == "" {
		md.PDFURL = "https://arxiv.org/pdf/" + md.ID + ".pdf"
	}
	return &md, nil
}

// SearchResult bundles search hits with the API's total match count,
// which can exceed the page returned.
type SearchResult struct {
	Total   int        `json:"total"`
	Entries []Metadata `json:"entries"`
}

// Search runs a free-form query. Field prefixes like ti:, au: and abs:
// pass straight through to the API.
func (c *Client) Search(ctx context.Context, query string, maxResults int, sortBy string) (*SearchResult, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	switch sortBy {
	case "relevance", "lastUpdatedDate", "submittedDate":
	default:
		sortBy = "submittedDate"
	}

	q := url.Values{}
	q.Set("search_query", query)
	q.Set("max_results", fmt.Sprint(maxResults))
	q.Set("sortBy", sortBy)
	q.Set("sortOrder", "descending")

	feed, err := c.query(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Total: feed.TotalResults}
	for _, e := range feed.Entries {
		result.Entries = append(result.Entries, entryToMetadata(e))
	}
	return result, nil
}

func (c *Client) query(ctx context.Context, q url.Values) (*atomFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query arxiv: HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 8*1024*1024)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse arxiv response: %w", err)
	}
	return &feed, nil
}

func entryToMetadata(e atomEntry) Metadata {
	md := Metadata{
		ID:             types.ArxivID(e.ID),
		Title:          collapse(e.Title),
		Abstract:       collapse(e.Summary),
		Date:           normalizeDate(e.Published),
		Updated:        strings.TrimSpace(e.Updated),
		DOI:            strings.TrimSpace(e.DOI),
		PrimarySubject: e.PrimaryCategory.Term,
		Comment:        strings.TrimSpace(e.Comment),
		JournalRef:     strings.TrimSpace(e.JournalRef),
	}

	for _, a := range e.Authors {
		first, last := SplitAuthorName(a.Name)
		if last == "" {
			continue
		}
		md.Authors = append(md.Authors, types.Creator{
			FirstName:   first,
			LastName:    last,
			CreatorType: types.CreatorTypeAuthor,
		})
	}

	for _, cat := range e.Categories {
		if cat.Term != "" {
			md.Subjects = append(md.Subjects, cat.Term)
		}
	}
	if md.PrimarySubject == "" && len(md.Subjects) > 0 {
		md.PrimarySubject = md.Subjects[0]
	}

	for _, l := range e.Links {
		switch {
		case strings.Contains(l.Href, "/abs/"):
			md.AbsURL = l.Href
		case strings.Contains(l.Href, "/pdf/"):
			md.PDFURL = l.Href
		}
	}
	return md
}

// SplitAuthorName separates a display name into first and last parts.
// "Last, First" order is honored when a comma is present; otherwise the
// final word is the last name.
func SplitAuthorName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[i+1:]), strings.TrimSpace(name[:i])
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// collapse trims and folds internal whitespace runs, which the Atom feed
// is full of because titles wrap inside the XML.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeDate converts an Atom timestamp to YYYY/MM/DD.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006/01/02")
	}
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
