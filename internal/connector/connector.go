// Package connector speaks the desktop application's local HTTP API, the
// same one the official browser extension uses. It is the only sanctioned
// write path for registering new items; direct store writes stay reserved
// for operations the API does not expose.
package connector

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/internal/arxiv"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// The extension protocol version the desktop app accepts.
const (
	zoteroVersion       = "5.0.97"
	connectorAPIVersion = "3"
)

// Client talks to one desktop instance, normally on localhost:23119.
type Client struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

func New(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = types.DefaultConnectorURL
	}
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("component", "connector").Logger(),
	}
}

// Ping reports whether the desktop application is up and answering its
// connector endpoint. Any failure maps to ErrNotRunning so callers can
// give one consistent message.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/connector/ping", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned HTTP %d", types.ErrNotRunning, resp.StatusCode)
	}
	return nil
}

// Version returns a human-readable description of the running instance.
// The ping endpoint answers with an HTML page, not JSON, so this is a
// best-effort probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/connector/ping", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ping returned HTTP %d", types.ErrNotRunning, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read ping response: %w", err)
	}
	if strings.Contains(string(body), "Zotero is running") {
		return "Zotero Desktop", nil
	}
	return "unknown", nil
}

// SaveItem is one item in a saveItems payload. The desktop app requires
// the empty collections to be present, not omitted.
type SaveItem struct {
	ID               string            `json:"id"`
	ItemType         string            `json:"itemType"`
	Title            string            `json:"title"`
	URL              string            `json:"url,omitempty"`
	Creators         []types.Creator   `json:"creators,omitempty"`
	AbstractNote     string            `json:"abstractNote,omitempty"`
	Date             string            `json:"date,omitempty"`
	DOI              string            `json:"DOI,omitempty"`
	PublicationTitle string            `json:"publicationTitle,omitempty"`
	Repository       string            `json:"repository,omitempty"`
	ArchiveID        string            `json:"archiveID,omitempty"`
	LibraryCatalog   string            `json:"libraryCatalog,omitempty"`
	Extra            string            `json:"extra,omitempty"`
	AccessDate       string            `json:"accessDate,omitempty"`
	Tags             []string          `json:"tags"`
	Notes            []string          `json:"notes"`
	SeeAlso          []string          `json:"seeAlso"`
	Attachments      []LinkAttachment  `json:"attachments"`
}

// LinkAttachment is a non-downloading link attachment on a saved item.
type LinkAttachment struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Snapshot bool   `json:"snapshot"`
}

type saveItemsPayload struct {
	SessionID string     `json:"sessionID"`
	URI       string     `json:"uri"`
	Items     []SaveItem `json:"items"`
	Target    string     `json:"target,omitempty"`
}

// SaveItems registers items through the connector API under a fresh
// session. Returns the session ID, which later attachment or collection
// operations on the same save need.
func (c *Client) SaveItems(ctx context.Context, uri string, items []SaveItem, target string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("no items to save")
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = randomItemID()
		}
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
		if items[i].Notes == nil {
			items[i].Notes = []string{}
		}
		if items[i].SeeAlso == nil {
			items[i].SeeAlso = []string{}
		}
		if items[i].Attachments == nil {
			items[i].Attachments = []LinkAttachment{}
		}
	}

	payload := saveItemsPayload{
		SessionID: uuid.NewString(),
		URI:       uri,
		Items:     items,
		Target:    target,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/connector/saveItems", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Zotero-Version", zoteroVersion)
	req.Header.Set("X-Zotero-Connector-API-Version", connectorAPIVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrNotRunning, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("saveItems returned HTTP %d", resp.StatusCode)
	}

	c.log.Info().Int("items", len(items)).Str("session", payload.SessionID).Msg("items saved")
	return payload.SessionID, nil
}

const itemIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomItemID mimics the 8-character payload IDs the official extension
// generates. These IDs only scope the save session; the app assigns real
// item keys itself.
func randomItemID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = itemIDAlphabet[int(b)%len(itemIDAlphabet)]
	}
	return string(buf)
}

// PreprintFromMetadata shapes an arXiv record into the preprint item the
// connector API expects, including the extra-field convention the
// official extension writes ("arXiv:ID [subject]").
func PreprintFromMetadata(md *arxiv.Metadata) SaveItem {
	extra := "arXiv:" + md.ID
	if abbr := subjectAbbrev(md.PrimarySubject); abbr != "" {
		extra += " [" + abbr + "]"
	}

	item := SaveItem{
		ItemType:       types.ItemTypePreprint,
		Title:          md.Title,
		URL:            md.AbsURL,
		Creators:       md.Authors,
		AbstractNote:   md.Abstract,
		Date:           md.Date,
		DOI:            md.DOI,
		Repository:     "arXiv",
		ArchiveID:      "arXiv:" + md.ID,
		LibraryCatalog: "arXiv.org",
		Extra:          extra,
		AccessDate:     time.Now().Format("2006-01-02"),
	}
	if md.JournalRef != "" {
		item.PublicationTitle = md.JournalRef
	}
	if md.PDFURL != "" {
		item.Attachments = []LinkAttachment{{
			Title:    "arXiv Snapshot",
			URL:      md.AbsURL,
			Snapshot: false,
		}}
	}
	return item
}

// subjectAbbrev reduces a category term like "cs.CL" to its archive
// group "cs".
func subjectAbbrev(term string) string {
	if term == "" {
		return ""
	}
	if i := strings.Index(term, "."); i > 0 {
		return term[:i]
	}
	return term
}
