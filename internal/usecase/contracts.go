package usecase

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/domain/quote"
)

// DayQuery is the slice of a search request a provider needs: which day to
// fetch, an optional per-request token overriding the configured one, and
// optional league/bookmaker identifier filters (provider-native ids).
type DayQuery struct {
	Day          time.Time
	Token        string
	LeagueIDs    []string
	BookmakerIDs []string
}

// DateString renders the day the way every covered provider spells it.
func (q DayQuery) DateString() string {
	return q.Day.UTC().Format("2006-01-02")
}

// DayQuotes is a provider's normalized output for one day. EventsFailed
// counts per-event fetches that were skipped after errors; a provider that
// fetches the whole day in one call reports either all or nothing.
type DayQuotes struct {
	Rows          []quote.Row
	EventsFetched int
	EventsFailed  int
}

// QuoteProvider is implemented by each external odds client.
type QuoteProvider interface {
	Kind() quote.ProviderKind
	FetchDayQuotes(ctx context.Context, q DayQuery) (DayQuotes, error)
}

// ProviderRegistry resolves a provider kind to its client. Registration
// happens once at startup; lookups are read-only afterwards.
type ProviderRegistry struct {
	providers map[quote.ProviderKind]QuoteProvider
}

func NewProviderRegistry(providers ...QuoteProvider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[quote.ProviderKind]QuoteProvider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

func (r *ProviderRegistry) Register(p QuoteProvider) {
	r.providers[p.Kind()] = p
}

func (r *ProviderRegistry) Get(kind quote.ProviderKind) (QuoteProvider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, crerr.Wrapf(ErrInvalidInput, "provider %q is not configured", kind)
	}
	return p, nil
}

// Kinds returns the registered provider kinds in stable order.
func (r *ProviderRegistry) Kinds() []quote.ProviderKind {
	kinds := make([]quote.ProviderKind, 0, len(r.providers))
	for _, k := range quote.AllProviderKinds() {
		if _, ok := r.providers[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
