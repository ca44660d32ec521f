package fetch

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// ArxivProvider downloads preprints straight from arXiv. It only applies
// to records whose URL or DOI carries a recognizable arXiv identifier.
type ArxivProvider struct {
	client  *client
	baseURL string
}

// NewArxivProvider uses the public arXiv PDF endpoint. baseURL is
// overridable for tests.
func NewArxivProvider() *ArxivProvider {
	return &ArxivProvider{client: newClient(), baseURL: "https://arxiv.org"}
}

func (p *ArxivProvider) Name() string { return "arxiv" }

func (p *ArxivProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	if rec.ArchiveID == "" {
		return nil, nil
	}
	return p.client.get(ctx, fmt.Sprintf("%s/pdf/%s.pdf", p.baseURL, rec.ArchiveID), "application/pdf")
}
