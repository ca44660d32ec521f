package fetch

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// PublisherProvider goes to the publisher's own site, via the DOI
// resolver first and the record URL second. Landing pages get scraped for
// a PDF link; a direct PDF response is used as-is.
type PublisherProvider struct {
	client *client
	log    zerolog.Logger

	doiURL string
}

func NewPublisherProvider(log zerolog.Logger) *PublisherProvider {
	return &PublisherProvider{
		client: newClient(),
		log:    log.With().Str("provider", "publisher").Logger(),
		doiURL: "https://doi.org",
	}
}

func (p *PublisherProvider) Name() string { return "publisher" }

func (p *PublisherProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	var landings []string
	if rec.DOI != "" {
		landings = append(landings, p.doiURL+"/"+rec.DOI)
	}
	if rec.URL != "" {
		landings = append(landings, rec.URL)
	}
	if len(landings) == 0 {
		return nil, nil
	}

	for _, landing := range landings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cand, err := p.client.get(ctx, landing, "")
		if err != nil {
			p.log.Debug().Str("url", landing).Err(err).Msg("landing page fetch failed")
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
			p.log.Debug().Str("url", link).Err(err).Msg("pdf link fetch failed")
			continue
		}
		return pdf, nil
	}
	return nil, nil
}

// DefaultProviders assembles the standard chain in resolution order.
func DefaultProviders(unpaywallEmail string, log zerolog.Logger) []Provider {
	return []Provider{
		NewArxivProvider(),
		NewOpenAccessProvider(unpaywallEmail, log),
		NewSciHubProvider(log),
		NewAnnasArchiveProvider(log),
		NewLibgenProvider(log),
		NewPublisherProvider(log),
	}
}
