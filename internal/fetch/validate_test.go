package fetch

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pdfBytes builds a structurally plausible document of the given size.
func pdfBytes(size int) []byte {
	buf := make([]byte, size)
	copy(buf, "%PDF-1.5\n")
	copy(buf[size-len("%%EOF\n"):], "%%EOF\n")
	return buf
}

func pdfHeader() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/pdf")
	return h
}

func TestValidateAcceptsGenuineDocument(t *testing.T) {
	err := Validate(pdfBytes(2*1024*1024), pdfHeader(), "https://arxiv.org/pdf/2301.12345.pdf")
	require.NoError(t, err)
}

func TestValidateRejections(t *testing.T) {
	htmlPage := append([]byte("%PDF-1.5\n<html><body>Access denied</body></html>"), make([]byte, 4096)...)

	tests := []struct {
		name   string
		data   []byte
		header http.Header
		url    string
		reason string
	}{
		{
			name:   "undersized payload",
			data:   pdfBytes(500),
			header: pdfHeader(),
			url:    "https://example.org/paper.pdf",
			reason: "too small",
		},
		{
			name: "html content type",
			data: pdfBytes(4096),
			header: func() http.Header {
				h := http.Header{}
				h.Set("Content-Type", "text/html; charset=utf-8")
				return h
			}(),
			url:    "https://example.org/paper.pdf",
			reason: "not a document",
		},
		{
			name:   "missing signature",
			data:   bytes.Repeat([]byte("A"), 4096),
			header: pdfHeader(),
			url:    "https://example.org/paper.pdf",
			reason: "signature",
		},
		{
			name:   "html disguised as document",
			data:   htmlPage,
			header: pdfHeader(),
			url:    "https://example.org/paper.pdf",
			reason: "HTML markup",
		},
		{
			name:   "publisher stub",
			data:   pdfBytes(100_000),
			header: pdfHeader(),
			url:    "https://www.nature.com/articles/s41586-024-1.pdf",
			reason: "undersized for nature.com",
		},
		{
			name: "truncated transfer",
			data: func() []byte {
				b := pdfBytes(4096)
				copy(b[len(b)-len("%%EOF\n"):], "AAAAAA")
				return b
			}(),
			header: pdfHeader(),
			url:    "https://example.org/paper.pdf",
			reason: "end-of-file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.data, tc.header, tc.url)
			require.Error(t, err)
			var rej *RejectError
			require.ErrorAs(t, err, &rej)
			assert.Contains(t, rej.Reason, tc.reason)
		})
	}
}

func TestValidateSizeFloorIsAbsolute(t *testing.T) {
	// A 500-byte payload with valid header bytes still fails on size alone.
	data := []byte("%PDF-1.5\n")
	data = append(data, bytes.Repeat([]byte("x"), 480)...)
	data = append(data, []byte("%%EOF\n")...)

	err := Validate(data, pdfHeader(), "https://example.org/paper.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestValidateOctetStreamPassesToMagicCheck(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/octet-stream")
	require.NoError(t, Validate(pdfBytes(8192), h, "https://example.org/paper.pdf"))
}

func TestValidateEmptyContentTypeAllowed(t *testing.T) {
	require.NoError(t, Validate(pdfBytes(8192), http.Header{}, "https://example.org/paper.pdf"))
}

func TestValidateNatureFloorSatisfied(t *testing.T) {
	err := Validate(pdfBytes(600_000), pdfHeader(), "https://www.nature.com/articles/x.pdf")
	require.NoError(t, err)
}
