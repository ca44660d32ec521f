package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

func servePDF(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Write(pdfBytes(8192))
}

func TestArxivProviderFetchesByArchiveID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdf/2301.12345.pdf", r.URL.Path)
		servePDF(w)
	}))
	defer srv.Close()

	p := NewArxivProvider()
	p.baseURL = srv.URL

	cand, err := p.Fetch(context.Background(), types.Record{ArchiveID: "2301.12345"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	require.NoError(t, Validate(cand.Data, cand.Header, cand.URL))
}

func TestArxivProviderSkipsRecordsWithoutID(t *testing.T) {
	p := NewArxivProvider()
	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestOpenAccessProviderUnpaywallPath(t *testing.T) {
	pdfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	}))
	defer pdfSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "email=")
		fmt.Fprintf(w, `{"best_oa_location":{"url_for_pdf":%q}}`, pdfSrv.URL+"/oa.pdf")
	}))
	defer apiSrv.Close()

	p := NewOpenAccessProvider("oa@example.org", zerolog.Nop())
	p.unpaywallURL = apiSrv.URL

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	require.NoError(t, Validate(cand.Data, cand.Header, cand.URL))
}

func TestOpenAccessProviderFallsThroughToSemanticScholar(t *testing.T) {
	pdfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	}))
	defer pdfSrv.Close()

	emptyJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer emptyJSON.Close()

	s2Srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"openAccessPdf":{"url":%q}}`, pdfSrv.URL+"/s2.pdf")
	}))
	defer s2Srv.Close()

	p := NewOpenAccessProvider("", zerolog.Nop())
	p.unpaywallURL = emptyJSON.URL
	p.pmcIDConvURL = emptyJSON.URL + "/"
	p.s2URL = s2Srv.URL

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
}

func TestOpenAccessProviderRequiresDOI(t *testing.T) {
	p := NewOpenAccessProvider("", zerolog.Nop())
	cand, err := p.Fetch(context.Background(), types.Record{Title: "No identifiers here"})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestSciHubProviderFollowsLandingPageLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/paper.pdf", func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><embed src="/files/paper.pdf" type="application/pdf"></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewSciHubProvider(zerolog.Nop())
	p.mirrors = []string{srv.URL}

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	require.NoError(t, Validate(cand.Data, cand.Header, cand.URL))
}

func TestSciHubProviderTriesNextMirror(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()

	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	}))
	defer alive.Close()

	p := NewSciHubProvider(zerolog.Nop())
	p.mirrors = []string{dead.URL, alive.URL}

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
}

func TestLibgenProviderSearchesByDOI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/download/book.pdf", func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	})
	mux.HandleFunc("/search.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10.1000/xyz", r.URL.Query().Get("req"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/download/book.pdf">GET</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewLibgenProvider(zerolog.Nop())
	p.mirrors = []string{srv.URL}

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
}

func TestLibgenProviderTruncatesLongTitleQuery(t *testing.T) {
	long := "An Extremely Long Title That Goes On And On Far Past The Search Limit"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, long[:50], r.URL.Query().Get("req"))
		fmt.Fprint(w, `<html><body>nothing found</body></html>`)
	}))
	defer srv.Close()

	p := NewLibgenProvider(zerolog.Nop())
	p.mirrors = []string{srv.URL}

	cand, err := p.Fetch(context.Background(), types.Record{Title: long})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestAnnasArchiveProviderSearchesByDOI(t *testing.T) {
	pdfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	}))
	defer pdfSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/search", r.URL.Path)
		assert.Equal(t, "10.1000/xyz", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `{"results":[{"title":"whatever","file_links":[{"file_format":"epub","url":"%s/book.epub"},{"file_format":"pdf","url":"%s/book.pdf"}]}]}`,
			pdfSrv.URL, pdfSrv.URL)
	}))
	defer apiSrv.Close()

	p := NewAnnasArchiveProvider(zerolog.Nop())
	p.apiURL = apiSrv.URL

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	require.NoError(t, Validate(cand.Data, cand.Header, cand.URL))
}

func TestAnnasArchiveProviderTitleSearchRequiresOverlap(t *testing.T) {
	pdfSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match.pdf", r.URL.Path)
		servePDF(w)
	}))
	defer pdfSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Attention Is All You Need", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `{"results":[{"title":"Unrelated Monograph","file_links":[{"file_format":"pdf","url":"%s/wrong.pdf"}]},{"title":"attention is all you need (preprint)","file_links":[{"file_format":"pdf","url":"%s/match.pdf"}]}]}`,
			pdfSrv.URL, pdfSrv.URL)
	}))
	defer apiSrv.Close()

	p := NewAnnasArchiveProvider(zerolog.Nop())
	p.apiURL = apiSrv.URL

	cand, err := p.Fetch(context.Background(), types.Record{Title: "Attention Is All You Need"})
	require.NoError(t, err)
	require.NotNil(t, cand)
}

func TestAnnasArchiveProviderNoIdentifiers(t *testing.T) {
	p := NewAnnasArchiveProvider(zerolog.Nop())
	cand, err := p.Fetch(context.Background(), types.Record{ArchiveID: "2301.12345"})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestPublisherProviderDirectPDFResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	}))
	defer srv.Close()

	p := NewPublisherProvider(zerolog.Nop())
	p.doiURL = srv.URL

	cand, err := p.Fetch(context.Background(), types.Record{DOI: "10.1000/xyz"})
	require.NoError(t, err)
	require.NotNil(t, cand)
}

func TestPublisherProviderScrapesLandingPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/article/full.pdf", func(w http.ResponseWriter, r *http.Request) {
		servePDF(w)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><a href="/article/full.pdf">Download PDF</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewPublisherProvider(zerolog.Nop())

	cand, err := p.Fetch(context.Background(), types.Record{URL: srv.URL + "/article"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	require.NoError(t, Validate(cand.Data, cand.Header, cand.URL))
}

func TestPublisherProviderNoIdentifiers(t *testing.T) {
	p := NewPublisherProvider(zerolog.Nop())
	cand, err := p.Fetch(context.Background(), types.Record{})
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestFindPDFLinkResolvesRelative(t *testing.T) {
	page := []byte(`<html><body><a href="downloads/x.pdf">pdf</a></body></html>`)
	got := findPDFLink(page, "https://mirror.example/paper/123")
	assert.Equal(t, "https://mirror.example/paper/downloads/x.pdf", got)
}

func TestFindPDFLinkIgnoresNonPDF(t *testing.T) {
	page := []byte(`<html><body><a href="/about">about</a><a href="/terms">terms</a></body></html>`)
	assert.Empty(t, findPDFLink(page, "https://mirror.example/"))
}
