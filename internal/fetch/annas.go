package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// AnnasArchiveProvider searches the Anna's Archive API, by DOI first and
// record title second, and downloads the first PDF file link that pans out.
type AnnasArchiveProvider struct {
	client *client
	log    zerolog.Logger

	apiURL string
}

func NewAnnasArchiveProvider(log zerolog.Logger) *AnnasArchiveProvider {
	return &AnnasArchiveProvider{
		client: newClient(),
		log:    log.With().Str("provider", "annas_archive").Logger(),
		apiURL: "https://api.annas-archive.org",
	}
}

func (p *AnnasArchiveProvider) Name() string { return "annas_archive" }

type annasResult struct {
	Title     string `json:"title"`
	FileLinks []struct {
		FileFormat string `json:"file_format"`
		URL        string `json:"url"`
	} `json:"file_links"`
}

func (p *AnnasArchiveProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	if rec.DOI == "" && rec.Title == "" {
		return nil, nil
	}

	if rec.DOI != "" {
		cand, err := p.search(ctx, rec.DOI, 5, "")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.log.Debug().Err(err).Msg("search by DOI failed")
		} else if cand != nil {
			return cand, nil
		}
	}

	if rec.Title != "" {
		return p.search(ctx, rec.Title, 10, rec.Title)
	}
	return nil, nil
}

// search queries the API and downloads the first PDF link among the
// results. With matchTitle set, a result is eligible only when its title
// and matchTitle contain one another case-insensitively; DOI queries are
// precise enough to skip that check.
func (p *AnnasArchiveProvider) search(ctx context.Context, query string, limit int, matchTitle string) (*Candidate, error) {
	var reply struct {
		Results []annasResult `json:"results"`
	}
	lookup := fmt.Sprintf("%s/v3/search?query=%s&limit=%d", p.apiURL, url.QueryEscape(query), limit)
	if err := p.client.getJSON(ctx, lookup, &reply); err != nil {
		return nil, err
	}

	for _, res := range reply.Results {
		if matchTitle != "" && !titlesOverlap(res.Title, matchTitle) {
			continue
		}
		for _, link := range res.FileLinks {
			if link.FileFormat != "pdf" || link.URL == "" {
				continue
			}
			cand, err := p.client.get(ctx, link.URL, "application/pdf")
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				p.log.Debug().Str("url", link.URL).Err(err).Msg("file link fetch failed")
				continue
			}
			if bytes.HasPrefix(cand.Data, pdfMagic) {
				return cand, nil
			}
		}
	}
	return nil, nil
}

func titlesOverlap(a, b string) bool {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(al, bl) || strings.Contains(bl, al)
}
