// Package reconcile compares stored bibliographic records against the
// authoritative preprint API and optionally applies the authoritative
// values back into the store.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shelfmark/internal/arxiv"
	"github.com/mesh-intelligence/shelfmark/pkg/types"
)

// Store is the persistence surface the reconciler needs. Satisfied by
// *zotero.Store.
type Store interface {
	GetItemByKey(key string) (*types.Item, error)
	SetFields(itemKey string, fields map[string]string) ([]string, error)
}

// MetadataSource is the authoritative record lookup. Satisfied by
// *arxiv.Client.
type MetadataSource interface {
	GetByID(ctx context.Context, id string) (*arxiv.Metadata, error)
}

// Entry is one side of a field difference.
type Entry struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// Diff maps a field name to its stored and authoritative values. An empty
// diff means the record is already consistent.
type Diff map[string][2]Entry

// Sources named in diff entries.
const (
	sourceStore         = "store"
	sourceAuthoritative = "arxiv"
)

// abstractDisplayLimit truncates reported abstract values; full abstracts
// are paragraphs long and the diff is for human review.
const abstractDisplayLimit = 200

// Result is the outcome of one reconciliation run.
type Result struct {
	ItemKey    string   `json:"itemKey"`
	ArchiveID  string   `json:"archiveID"`
	Diff       Diff     `json:"diff,omitempty"`
	Applied    []string `json:"applied,omitempty"`
	Consistent bool     `json:"consistent"`
}

// Reconciler diffs stored records against the preprint API.
type Reconciler struct {
	store  Store
	source MetadataSource
	log    zerolog.Logger
}

func New(store Store, source MetadataSource, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		source: source,
		log:    log.With().Str("component", "reconcile").Logger(),
	}
}

// Diff compares the stored item against its authoritative record.
// The item must carry an identifier recognizable to the preprint archive
// in its URL or DOI; otherwise ErrNoExternalID is returned.
func (r *Reconciler) Diff(ctx context.Context, itemKey string) (*Result, error) {
	result, _, err := r.diff(ctx, itemKey)
	return result, err
}

func (r *Reconciler) diff(ctx context.Context, itemKey string) (*Result, *arxiv.Metadata, error) {
	item, err := r.store.GetItemByKey(itemKey)
	if err != nil {
		return nil, nil, err
	}

	rec := types.RecordFromItem(item)
	if rec.ArchiveID == "" {
		return nil, nil, fmt.Errorf("%w: item %s has no recognizable archive identifier", types.ErrNoExternalID, itemKey)
	}

	md, err := r.source.GetByID(ctx, rec.ArchiveID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch authoritative record: %w", err)
	}

	diff := compare(item, md)
	r.log.Info().Str("key", itemKey).Str("id", rec.ArchiveID).Int("differences", len(diff)).Msg("record compared")

	return &Result{
		ItemKey:    itemKey,
		ArchiveID:  rec.ArchiveID,
		Diff:       diff,
		Consistent: len(diff) == 0,
	}, md, nil
}

// ReconcileAndApply diffs the item and, when apply is set, writes every
// differing field except authors back to the store with the authoritative
// value. Authors stay advisory; name formatting is too ambiguous to
// overwrite unattended.
func (r *Reconciler) ReconcileAndApply(ctx context.Context, itemKey string, apply bool) (*Result, error) {
	result, md, err := r.diff(ctx, itemKey)
	if err != nil {
		return nil, err
	}
	if !apply || result.Consistent {
		return result, nil
	}

	updates := map[string]string{}
	for field := range result.Diff {
		switch field {
		case "authors":
			continue
		case types.FieldTitle:
			updates[field] = md.Title
		case types.FieldAbstract:
			updates[field] = md.Abstract
		case types.FieldDate:
			updates[field] = md.Date
		case types.FieldDOI:
			updates[field] = md.DOI
		}
	}
	if len(updates) == 0 {
		return result, nil
	}

	applied, err := r.store.SetFields(itemKey, updates)
	if err != nil {
		return nil, fmt.Errorf("apply reconciled fields: %w", err)
	}
	sort.Strings(applied)
	result.Applied = applied
	return result, nil
}

func compare(item *types.Item, md *arxiv.Metadata) Diff {
	diff := Diff{}

	storedTitle := item.Field(types.FieldTitle)
	if !strings.EqualFold(strings.TrimSpace(storedTitle), strings.TrimSpace(md.Title)) {
		diff[types.FieldTitle] = [2]Entry{
			{sourceStore, storedTitle},
			{sourceAuthoritative, md.Title},
		}
	}

	storedAbstract := item.Field(types.FieldAbstract)
	if collapse(storedAbstract) != collapse(md.Abstract) {
		diff[types.FieldAbstract] = [2]Entry{
			{sourceStore, truncate(collapse(storedAbstract), abstractDisplayLimit)},
			{sourceAuthoritative, truncate(collapse(md.Abstract), abstractDisplayLimit)},
		}
	}

	// Only the date portion is comparable; stored values may carry a
	// time-of-day suffix the API never reports.
	storedDate := item.Field(types.FieldDate)
	if storedDate != "" && md.Date != "" && datePart(storedDate) != datePart(md.Date) {
		diff[types.FieldDate] = [2]Entry{
			{sourceStore, storedDate},
			{sourceAuthoritative, md.Date},
		}
	}

	storedAuthors := item.AuthorLastNames()
	authorityAuthors := lastNames(md.Authors)
	if !sameNameSet(storedAuthors, authorityAuthors) {
		diff["authors"] = [2]Entry{
			{sourceStore, formatCreators(item.Creators)},
			{sourceAuthoritative, formatCreators(md.Authors)},
		}
	}

	storedDOI := item.Field(types.FieldDOI)
	if storedDOI != "" && md.DOI != "" && !strings.EqualFold(storedDOI, md.DOI) {
		diff[types.FieldDOI] = [2]Entry{
			{sourceStore, storedDOI},
			{sourceAuthoritative, md.DOI},
		}
	}

	return diff
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up to a rune boundary so the cut never leaves invalid UTF-8.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func datePart(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	// Store dates use slashes, the API uses whichever; compare digits only.
	return strings.NewReplacer("/", "-", ".", "-").Replace(s)
}

func lastNames(creators []types.Creator) []string {
	var names []string
	for _, c := range creators {
		if ln := strings.TrimSpace(c.LastName); ln != "" {
			names = append(names, ln)
		}
	}
	return names
}

func sameNameSet(a, b []string) bool {
	set := func(names []string) map[string]bool {
		m := make(map[string]bool, len(names))
		for _, n := range names {
			m[strings.ToLower(n)] = true
		}
		return m
	}
	sa, sb := set(a), set(b)
	if len(sa) != len(sb) {
		return false
	}
	for n := range sa {
		if !sb[n] {
			return false
		}
	}
	return true
}

func formatCreators(creators []types.Creator) string {
	parts := make([]string, 0, len(creators))
	for _, c := range creators {
		name := strings.TrimSpace(c.LastName)
		if c.FirstName != "" {
			name += ", " + c.FirstName
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "; ")
}
