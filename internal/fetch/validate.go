package fetch

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
)

// pdfMagic is the signature every genuine document starts with.
var pdfMagic = []byte("%PDF")

// pdfTrailer must appear within the final kilobyte of a complete transfer.
var pdfTrailer = []byte("%%EOF")

// htmlTokens are markup fragments that betray an error page served with a
// spoofed document content type.
var htmlTokens = []string{"<html", "<body", "<!doctype", "<title>"}

// minDocumentSize rejects responses that are almost certainly error pages.
const minDocumentSize = 1024

// htmlProbeSize is how far into the payload the disguised-HTML check looks.
const htmlProbeSize = 2048

// publisherFloors maps host substrings to the smallest plausible document
// size for that publisher. Some are known to serve truncated preview stubs
// that pass every structural check.
var publisherFloors = map[string]int{
	"nature.com": 500_000,
}

// RejectError reports why fetched bytes were not accepted as a document.
// Rejections are diagnostic, never fatal mid-chain: the resolver records
// the reason and moves to the next provider.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return "document rejected: " + e.Reason }

func reject(format string, args ...any) *RejectError {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

// Validate applies the acceptance rules in order and returns a *RejectError
// naming the first rule that fails, or nil when the bytes look like a
// complete, genuine document. A 200 response is not proof of a valid
// document; these checks are what stand between an error page and the store.
func Validate(data []byte, header http.Header, sourceURL string) error {
	if len(data) < minDocumentSize {
		return reject("too small (%d bytes), likely an error page", len(data))
	}

	// Some providers mislabel valid documents as generic binary, so
	// octet-stream passes through to the magic-byte check.
	contentType := strings.ToLower(header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "pdf") &&
		!strings.Contains(contentType, "application/octet-stream") {
		return reject("content type %q is not a document", contentType)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return reject("missing document signature in first bytes")
	}

	probe := strings.ToLower(string(data[:min(len(data), htmlProbeSize)]))
	for _, token := range htmlTokens {
		if strings.Contains(probe, token) {
			return reject("contains HTML markup (%s), likely an error page", token)
		}
	}

	host := strings.ToLower(sourceURL)
	for needle, floor := range publisherFloors {
		if strings.Contains(host, needle) && len(data) < floor {
			return reject("undersized for %s (%d bytes, expected at least %d)", needle, len(data), floor)
		}
	}

	tail := data[max(0, len(data)-1024):]
	if !bytes.Contains(tail, pdfTrailer) {
		return reject("missing end-of-file marker, transfer likely incomplete")
	}

	return nil
}
