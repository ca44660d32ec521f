// Package fetch resolves a full-text PDF for a bibliographic record by
// trying an ordered chain of external providers, validating every candidate
// before it is allowed anywhere near the store.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Provider is one named document source. Fetch returns a candidate, or
// (nil, nil) when the source has nothing for this record; transport
// failures come back as errors and are treated as diagnostics, never as
// chain-terminating failures.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, rec types.Record) (*Candidate, error)
}

// Candidate is a provider's raw response before validation.
type Candidate struct {
	Data   []byte
	Header http.Header
	URL    string
}

// Attempt is the diagnostic record of one provider in a resolution chain.
type Attempt struct {
	Provider    string `json:"provider"`
	Disposition string `json:"disposition"`
}

// Document is an accepted result, with the attempts that preceded it.
type Document struct {
	Data     []byte
	Provider string
	URL      string
	Attempts []Attempt
}

// ExhaustedError reports that every provider was tried without an accepted
// result, carrying the per-provider dispositions so a human can judge
// whether a manual source is worth trying.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Provider + ": " + a.Disposition
	}
	return fmt.Sprintf("%v (%s)", types.ErrProviderExhausted, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() error { return types.ErrProviderExhausted }

// DefaultTimeout bounds each provider attempt. An unresponsive provider
// must never stall the whole chain.
const DefaultTimeout = 60 * time.Second

// Resolver iterates providers strictly in order, first accepted result
// wins. Providers are never tried concurrently, so accepting a result
// cannot race a slower earlier attempt.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	log       zerolog.Logger
}

// NewResolver builds a resolver over the given provider chain.
func NewResolver(providers []Provider, timeout time.Duration, log zerolog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
		log:       log.With().Str("component", "resolver").Logger(),
	}
}

// order returns the provider chain with the preferred provider, when named
// and present, moved to the head. Everything else keeps its default order
// and nothing is ever dropped, so diagnostics stay complete even when a
// caller asks for a specific source first.
func (r *Resolver) order(preferred string) []Provider {
	if preferred == "" || preferred == "auto" {
		return r.providers
	}
	ordered := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Name() == preferred {
			ordered = append(ordered, p)
			break
		}
	}
	if len(ordered) == 0 {
		// Unknown preference: fall back to the default order.
		return r.providers
	}
	for _, p := range r.providers {
		if p.Name() != preferred {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// Providers returns the names of the chain in default order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Acquire tries providers in order until one yields a validated document.
// Each attempt runs under its own deadline; a timed-out or failed attempt
// is logged, recorded, and the chain moves on. When the chain is exhausted
// the returned error is an *ExhaustedError wrapping ErrProviderExhausted.
func (r *Resolver) Acquire(ctx context.Context, rec types.Record, preferred string) (*Document, error) {
	var attempts []Attempt

	for _, p := range r.order(preferred) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.log.Info().Str("provider", p.Name()).Str("key", rec.Key).Msg("trying provider")

		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		cand, err := p.Fetch(attemptCtx, rec)
		cancel()

		switch {
		case err != nil:
			// Transient provider failures are diagnostics, not errors.
			r.log.Warn().Str("provider", p.Name()).Err(err).Msg("provider failed")
			attempts = append(attempts, Attempt{p.Name(), "network error: " + err.Error()})
		case cand == nil:
			attempts = append(attempts, Attempt{p.Name(), "no candidate found"})
		default:
			if verr := Validate(cand.Data, cand.Header, cand.URL); verr != nil {
				var rej *RejectError
				reason := verr.Error()
				if errors.As(verr, &rej) {
					reason = rej.Reason
				}
				r.log.Warn().Str("provider", p.Name()).Str("reason", reason).Msg("candidate rejected")
				attempts = append(attempts, Attempt{p.Name(), "rejected: " + reason})
				continue
			}
			r.log.Info().Str("provider", p.Name()).Int("bytes", len(cand.Data)).Msg("document accepted")
			return &Document{
				Data:     cand.Data,
				Provider: p.Name(),
				URL:      cand.URL,
				Attempts: attempts,
			}, nil
		}
	}

	return nil, &ExhaustedError{Attempts: attempts}
}
