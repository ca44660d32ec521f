package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

type stubProvider struct {
	name string
	cand *Candidate
	err  error
	hits int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, rec types.Record) (*Candidate, error) {
	s.hits++
	return s.cand, s.err
}

func validCandidate() *Candidate {
	return &Candidate{Data: pdfBytes(8192), Header: pdfHeader(), URL: "https://example.org/paper.pdf"}
}

func testRecord() types.Record {
	return types.Record{Key: "ABCD1234", Title: "Attention Is All You Need", DOI: "10.1000/xyz"}
}

func TestAcquireFirstSuccessWins(t *testing.T) {
	failing := &stubProvider{name: "one", err: errors.New("connection refused")}
	empty := &stubProvider{name: "two"}
	winning := &stubProvider{name: "three", cand: validCandidate()}
	never := &stubProvider{name: "four", cand: validCandidate()}

	r := NewResolver([]Provider{failing, empty, winning, never}, time.Second, zerolog.Nop())
	doc, err := r.Acquire(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.Equal(t, "three", doc.Provider)
	assert.Len(t, doc.Attempts, 2)
	assert.Equal(t, "one", doc.Attempts[0].Provider)
	assert.Contains(t, doc.Attempts[0].Disposition, "connection refused")
	assert.Equal(t, "two", doc.Attempts[1].Provider)
	assert.Equal(t, "no candidate found", doc.Attempts[1].Disposition)
	assert.Equal(t, 0, never.hits)
}

func TestAcquireRejectedCandidateContinuesChain(t *testing.T) {
	htmlServed := &stubProvider{name: "bad", cand: &Candidate{
		Data:   []byte("<html><body>nope</body></html>"),
		Header: http.Header{},
		URL:    "https://example.org/x",
	}}
	good := &stubProvider{name: "good", cand: validCandidate()}

	r := NewResolver([]Provider{htmlServed, good}, time.Second, zerolog.Nop())
	doc, err := r.Acquire(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.Equal(t, "good", doc.Provider)
	require.Len(t, doc.Attempts, 1)
	assert.Contains(t, doc.Attempts[0].Disposition, "rejected")
}

func TestAcquireExhaustedCarriesDiagnostics(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("timeout")}
	b := &stubProvider{name: "b"}

	r := NewResolver([]Provider{a, b}, time.Second, zerolog.Nop())
	doc, err := r.Acquire(context.Background(), testRecord(), "")
	require.Nil(t, doc)
	require.Error(t, err)

	assert.ErrorIs(t, err, types.ErrProviderExhausted)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	require.Len(t, ex.Attempts, 2)
	assert.Equal(t, "a", ex.Attempts[0].Provider)
	assert.Equal(t, "b", ex.Attempts[1].Provider)
}

func TestAcquirePreferredProviderMovesToHead(t *testing.T) {
	first := &stubProvider{name: "first"}
	second := &stubProvider{name: "second", cand: validCandidate()}
	third := &stubProvider{name: "third"}

	r := NewResolver([]Provider{first, second, third}, time.Second, zerolog.Nop())
	doc, err := r.Acquire(context.Background(), testRecord(), "second")
	require.NoError(t, err)

	assert.Equal(t, "second", doc.Provider)
	// Preferred provider ran first, so nothing else was touched.
	assert.Empty(t, doc.Attempts)
	assert.Equal(t, 0, first.hits)
	assert.Equal(t, 0, third.hits)
}

func TestAcquirePreferredStillFallsBack(t *testing.T) {
	first := &stubProvider{name: "first", cand: validCandidate()}
	second := &stubProvider{name: "second"}

	r := NewResolver([]Provider{first, second}, time.Second, zerolog.Nop())
	doc, err := r.Acquire(context.Background(), testRecord(), "second")
	require.NoError(t, err)

	assert.Equal(t, "first", doc.Provider)
	assert.Equal(t, 1, second.hits)
}

func TestAcquireUnknownPreferenceUsesDefaultOrder(t *testing.T) {
	first := &stubProvider{name: "first", cand: validCandidate()}
	r := NewResolver([]Provider{first}, time.Second, zerolog.Nop())

	doc, err := r.Acquire(context.Background(), testRecord(), "no-such-source")
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Provider)
}

func TestAcquireHonorsCancelledContext(t *testing.T) {
	prov := &stubProvider{name: "one", cand: validCandidate()}
	r := NewResolver([]Provider{prov}, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Acquire(ctx, testRecord(), "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, prov.hits)
}

func TestProvidersListsDefaultOrder(t *testing.T) {
	r := NewResolver(DefaultProviders("", zerolog.Nop()), time.Second, zerolog.Nop())
	assert.Equal(t, []string{"arxiv", "open_access", "scihub", "annas_archive", "libgen", "publisher"}, r.Providers())
}
