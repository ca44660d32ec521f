package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// findPDFLink parses an HTML page and returns the first href or embed
// source pointing at a PDF, resolved against the page URL. Mirror sites
// serve a landing page with the actual document behind one such link.
func findPDFLink(page []byte, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var found string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode {
			var attr string
			switch n.Data {
			case "a":
				attr = "href"
			case "embed", "iframe":
				attr = "src"
			}
			if attr != "" {
				for _, a := range n.Attr {
					if a.Key != attr {
						continue
					}
					link := strings.TrimSpace(a.Val)
					if link == "" || !strings.Contains(strings.ToLower(link), ".pdf") {
						continue
					}
					ref, err := url.Parse(link)
					if err != nil {
						continue
					}
					found = base.ResolveReference(ref).String()
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// SciHubProvider resolves a DOI through Sci-Hub mirrors. Each mirror
// either serves the PDF directly or a landing page linking to it.
type SciHubProvider struct {
	client  *client
	log     zerolog.Logger
	mirrors []string
}

var defaultSciHubMirrors = []string{
	"https://sci-hub.se",
	"https://sci-hub.st",
	"https://sci-hub.ru",
}

func NewSciHubProvider(log zerolog.Logger) *SciHubProvider {
	return &SciHubProvider{
		client:  newClient(),
		log:     log.With().Str("provider", "scihub").Logger(),
		mirrors: defaultSciHubMirrors,
	}
}

func (p *SciHubProvider) Name() string { return "scihub" }

func (p *SciHubProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	if rec.DOI == "" {
		return nil, nil
	}

	for _, mirror := range p.mirrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageURL := mirror + "/" + rec.DOI
		cand, err := p.client.get(ctx, pageURL, "")
		if err != nil {
			p.log.Debug().Str("mirror", mirror).Err(err).Msg("mirror unreachable")
			continue
		}

		if bytes.HasPrefix(cand.Data, pdfMagic) {
			return cand, nil
		}

		link := findPDFLink(cand.Data, cand.URL)
		if link == "" {
			continue
		}
		pdf, err := p.client.get(ctx, link, "application/pdf")
		if err != nil {
			p.log.Debug().Str("mirror", mirror).Err(err).Msg("pdf link fetch failed")
			continue
		}
		return pdf, nil
	}
	return nil, nil
}

// LibgenProvider searches Library Genesis mirrors by DOI, falling back to
// the record title when no DOI is known.
type LibgenProvider struct {
	client  *client
	log     zerolog.Logger
	mirrors []string
}

var defaultLibgenMirrors = []string{
	"https://libgen.is",
	"https://libgen.st",
	"https://libgen.li",
}

func NewLibgenProvider(log zerolog.Logger) *LibgenProvider {
	return &LibgenProvider{
		client:  newClient(),
		log:     log.With().Str("provider", "libgen").Logger(),
		mirrors: defaultLibgenMirrors,
	}
}

func (p *LibgenProvider) Name() string { return "libgen" }

func (p *LibgenProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	query := rec.DOI
	if query == "" {
		query = rec.Title
	}
	if query == "" {
		return nil, nil
	}
	// Long titles defeat the search; the leading words are enough.
	if len(query) > 50 {
		cut := 50
		for cut > 0 && !utf8.RuneStart(query[cut]) {
			cut--
		}
		query = query[:cut]
	}

	for _, mirror := range p.mirrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		searchURL := fmt.Sprintf("%s/search.php?req=%s&res=1", mirror, url.QueryEscape(query))
		page, err := p.client.get(ctx, searchURL, "")
		if err != nil {
			p.log.Debug().Str("mirror", mirror).Err(err).Msg("mirror unreachable")
			continue
		}

		link := findPDFLink(page.Data, page.URL)
		if link == "" {
			continue
		}
		pdf, err := p.client.get(ctx, link, "application/pdf")
		if err != nil {
			p.log.Debug().Str("mirror", mirror).Err(err).Msg("pdf link fetch failed")
			continue
		}
		return pdf, nil
	}
	return nil, nil
}
