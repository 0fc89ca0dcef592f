package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/domain/refdata"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
)

// SearchInput is a fully-parsed search request. KnownBookmakers is
// client-held session state: the id-to-name pairs the caller has seen on
// previous searches, echoed back enriched in the output.
type SearchInput struct {
	Provider        quote.ProviderKind
	Token           string
	Day             time.Time
	Line            float64
	FirstSideMin    float64
	SecondSideMin   float64
	LeagueIDs       []string
	BookmakerIDs    []string
	KnownBookmakers map[string]string
}

// SearchStats counts what each pipeline stage saw, so an empty result is
// explainable without re-running the search.
type SearchStats struct {
	EventsFetched int `json:"eventsFetched"`
	EventsFailed  int `json:"eventsFailed"`
	RowsParsed    int `json:"rowsParsed"`
	RowsAtLine    int `json:"rowsAtLine"`
	MarketGroups  int `json:"marketGroups"`
	Matches       int `json:"matches"`
}

type SearchOutput struct {
	Results         []quote.ResultRow
	Stats           SearchStats
	KnownBookmakers map[string]string
}

// SearchService runs the full pipeline: provider fetch, line filter, pivot,
// threshold selection, bookmaker-name enrichment.
type SearchService struct {
	providers *ProviderRegistry
	refData   *RefDataService
	logger    *logging.Logger
}

func NewSearchService(providers *ProviderRegistry, refData *RefDataService, logger *logging.Logger) *SearchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SearchService{
		providers: providers,
		refData:   refData,
		logger:    logger,
	}
}

func (s *SearchService) Search(ctx context.Context, input SearchInput) (SearchOutput, error) {
	ctx, span := startUsecaseSpan(ctx, "SearchService.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", string(input.Provider)),
		attribute.Float64("line", input.Line),
	)

	if err := s.validate(input); err != nil {
		return SearchOutput{}, err
	}

	provider, err := s.providers.Get(input.Provider)
	if err != nil {
		return SearchOutput{}, err
	}

	day, err := provider.FetchDayQuotes(ctx, DayQuery{
		Day:          input.Day,
		Token:        input.Token,
		LeagueIDs:    input.LeagueIDs,
		BookmakerIDs: input.BookmakerIDs,
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			return SearchOutput{}, fmt.Errorf("%w: %s circuit open", ErrDependencyUnavailable, input.Provider)
		}
		return SearchOutput{}, err
	}

	stats := SearchStats{
		EventsFetched: day.EventsFetched,
		EventsFailed:  day.EventsFailed,
		RowsParsed:    len(day.Rows),
	}
	if day.EventsFetched == 0 && len(day.Rows) == 0 {
		return SearchOutput{Stats: stats}, fmt.Errorf("%w: provider=%s day=%s", ErrNoFixtures, input.Provider, input.Day.UTC().Format("2006-01-02"))
	}

	atLine := quote.SelectLine(day.Rows, input.Line)
	stats.RowsAtLine = len(atLine)
	if len(atLine) == 0 {
		return SearchOutput{Stats: stats}, fmt.Errorf("%w: line=%v", ErrNoLineQuotes, input.Line)
	}

	groups := quote.Pivot(atLine)
	stats.MarketGroups = len(groups)

	results := quote.SelectByThresholds(groups, input.FirstSideMin, input.SecondSideMin)
	stats.Matches = len(results)
	if len(results) == 0 {
		return SearchOutput{Stats: stats}, fmt.Errorf("%w: mins=%v/%v", ErrNoThresholdMatches, input.FirstSideMin, input.SecondSideMin)
	}

	known := s.enrichBookmakers(ctx, input, results)

	s.logger.InfoContext(ctx, "corner search completed",
		"provider", string(input.Provider),
		"day", input.Day.UTC().Format("2006-01-02"),
		"line", input.Line,
		"eventsFetched", stats.EventsFetched,
		"eventsFailed", stats.EventsFailed,
		"rowsParsed", stats.RowsParsed,
		"rowsAtLine", stats.RowsAtLine,
		"matches", stats.Matches,
	)

	return SearchOutput{
		Results:         results,
		Stats:           stats,
		KnownBookmakers: known,
	}, nil
}

func (s *SearchService) validate(input SearchInput) error {
	if _, ok := quote.ParseProviderKind(string(input.Provider)); !ok {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, input.Provider)
	}
	if input.Day.IsZero() {
		return fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	if input.Line <= 0 {
		return fmt.Errorf("%w: line must be positive", ErrInvalidInput)
	}
	if input.FirstSideMin < 0 || input.SecondSideMin < 0 {
		return fmt.Errorf("%w: minimum prices cannot be negative", ErrInvalidInput)
	}
	return nil
}

// enrichBookmakers merges the caller's known names with the provider's
// reference table, covering exactly the bookmakers present in the results.
func (s *SearchService) enrichBookmakers(ctx context.Context, input SearchInput, results []quote.ResultRow) map[string]string {
	known := make(map[string]string, len(input.KnownBookmakers))
	for id, name := range input.KnownBookmakers {
		known[id] = name
	}

	var directory refdata.Directory
	if s.refData != nil {
		directory = s.refData.BookmakerNames(ctx, input.Provider)
	}

	for _, row := range results {
		if _, ok := known[row.Bookmaker]; ok {
			continue
		}
		if name, ok := directory[row.Bookmaker]; ok {
			known[row.Bookmaker] = name
		}
	}
	return known
}
