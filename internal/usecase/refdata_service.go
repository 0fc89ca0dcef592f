package usecase

import (
	"context"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/domain/refdata"
	"github.com/maberrio/cornerscout/internal/platform/cache"
	"github.com/maberrio/cornerscout/internal/platform/logging"
)

// RefDataService resolves provider-native bookmaker and league identifiers
// to display names through a TTL cache. Reference lookups are best-effort:
// a failing provider endpoint degrades to raw identifiers, never to a
// failed search.
type RefDataService struct {
	sources map[quote.ProviderKind]refdata.Source
	store   *cache.Store
	logger  *logging.Logger
}

func NewRefDataService(store *cache.Store, logger *logging.Logger) *RefDataService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefDataService{
		sources: make(map[quote.ProviderKind]refdata.Source),
		store:   store,
		logger:  logger,
	}
}

// RegisterSource attaches a provider's reference endpoints. Providers
// without reference endpoints are simply never registered.
func (s *RefDataService) RegisterSource(kind quote.ProviderKind, source refdata.Source) {
	if source != nil {
		s.sources[kind] = source
	}
}

// BookmakerNames returns the bookmaker id-to-name table for the provider,
// or an empty table when the provider has none or the lookup failed.
func (s *RefDataService) BookmakerNames(ctx context.Context, kind quote.ProviderKind) refdata.Directory {
	return s.lookup(ctx, kind, "bookmakers", func(source refdata.Source) (refdata.Directory, error) {
		return source.BookmakerNames(ctx)
	})
}

// LeagueNames returns the league id-to-name table for the provider, with
// the same degrade-to-empty contract as BookmakerNames.
func (s *RefDataService) LeagueNames(ctx context.Context, kind quote.ProviderKind) refdata.Directory {
	return s.lookup(ctx, kind, "leagues", func(source refdata.Source) (refdata.Directory, error) {
		return source.LeagueNames(ctx)
	})
}

func (s *RefDataService) lookup(ctx context.Context, kind quote.ProviderKind, table string, load func(refdata.Source) (refdata.Directory, error)) refdata.Directory {
	source, ok := s.sources[kind]
	if !ok {
		return refdata.Directory{}
	}

	key := "refdata:" + string(kind) + ":" + table
	value, err := s.store.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return load(source)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "reference data lookup failed",
			"provider", string(kind),
			"table", table,
			"error", err,
		)
		return refdata.Directory{}
	}

	directory, ok := value.(refdata.Directory)
	if !ok {
		return refdata.Directory{}
	}
	return directory
}
