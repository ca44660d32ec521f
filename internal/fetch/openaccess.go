package fetch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// OpenAccessProvider consults legal open-access indexes in a fixed order
// and downloads the first PDF any of them points at. Index lookups that
// fail are skipped so one flaky API cannot mask another.
type OpenAccessProvider struct {
	client *client
	log    zerolog.Logger

	unpaywallURL string
	pmcIDConvURL string
	pmcURL       string
	s2URL        string
	email        string
}

// DefaultUnpaywallEmail identifies us to the Unpaywall API, which requires
// a contact address on every request.
const DefaultUnpaywallEmail = "research@example.com"

func NewOpenAccessProvider(email string, log zerolog.Logger) *OpenAccessProvider {
	if email == "" {
		email = DefaultUnpaywallEmail
	}
	return &OpenAccessProvider{
		client:       newClient(),
		log:          log.With().Str("provider", "open_access").Logger(),
		unpaywallURL: "https://api.unpaywall.org",
		pmcIDConvURL: "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/",
		pmcURL:       "https://www.ncbi.nlm.nih.gov/pmc/articles",
		s2URL:        "https://api.semanticscholar.org",
		email:        email,
	}
}

func (p *OpenAccessProvider) Name() string { return "open_access" }

func (p *OpenAccessProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	if rec.DOI == "" {
		return nil, nil
	}

	lookups := []struct {
		name string
		fn   func(context.Context, string) (*Candidate, error)
	}{
		{"unpaywall", p.fromUnpaywall},
		{"pubmed_central", p.fromPubMedCentral},
		{"semantic_scholar", p.fromSemanticScholar},
	}

	for _, l := range lookups {
		cand, err := l.fn(ctx, rec.DOI)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.log.Debug().Str("index", l.name).Err(err).Msg("index lookup failed")
			continue
		}
		if cand != nil {
			return cand, nil
		}
	}
	return nil, nil
}

func (p *OpenAccessProvider) fromUnpaywall(ctx context.Context, doi string) (*Candidate, error) {
	var reply struct {
		BestOALocation struct {
			URLForPDF string `json:"url_for_pdf"`
		} `json:"best_oa_location"`
	}
	lookup := fmt.Sprintf("%s/v2/%s?email=%s", p.unpaywallURL, url.PathEscape(doi), url.QueryEscape(p.email))
	if err := p.client.getJSON(ctx, lookup, &reply); err != nil {
		return nil, err
	}
	if reply.BestOALocation.URLForPDF == "" {
		return nil, nil
	}
	return p.client.get(ctx, reply.BestOALocation.URLForPDF, "application/pdf")
}

func (p *OpenAccessProvider) fromPubMedCentral(ctx context.Context, doi string) (*Candidate, error) {
	var reply struct {
		Records []struct {
			PMCID string `json:"pmcid"`
		} `json:"records"`
	}
	lookup := fmt.Sprintf("%s?ids=%s&format=json", p.pmcIDConvURL, url.QueryEscape(doi))
	if err := p.client.getJSON(ctx, lookup, &reply); err != nil {
		return nil, err
	}
	if len(reply.Records) == 0 || reply.Records[0].PMCID == "" {
		return nil, nil
	}
	return p.client.get(ctx, fmt.Sprintf("%s/%s/pdf/", p.pmcURL, reply.Records[0].PMCID), "application/pdf")
}

func (p *OpenAccessProvider) fromSemanticScholar(ctx context.Context, doi string) (*Candidate, error) {
	var reply struct {
		OpenAccessPDF struct {
			URL string `json:"url"`
		} `json:"openAccessPdf"`
	}
	lookup := fmt.Sprintf("%s/graph/v1/paper/DOI:%s?fields=openAccessPdf", p.s2URL, url.PathEscape(doi))
	if err := p.client.getJSON(ctx, lookup, &reply); err != nil {
		return nil, err
	}
	if reply.OpenAccessPDF.URL == "" {
		return nil, nil
	}
	return p.client.get(ctx, reply.OpenAccessPDF.URL, "application/pdf")
}
