package refdata

import "context"

// Directory maps provider-side identifiers to display names. Entries are
// pure pass-throughs of the provider's reference endpoints; the only
// guarantee is bounded staleness via the caching layer in front.
type Directory map[string]string

// Source lists the reference tables a provider can expose. Implementations
// may return an error when the provider has no such endpoint; callers must
// degrade to raw identifiers, never fail a search over reference data.
type Source interface {
	BookmakerNames(ctx context.Context) (Directory, error)
	LeagueNames(ctx context.Context) (Directory, error)
}
