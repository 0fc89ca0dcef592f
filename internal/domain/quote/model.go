package quote

import (
	"strconv"
	"strings"
	"time"
)

// ProviderKind tags which upstream schema a payload came from. Normalization
// is selected by this tag, never by structural guessing.
type ProviderKind string

const (
	ProviderSportMonks ProviderKind = "sportmonks"
	ProviderOddsAPI    ProviderKind = "oddsapi"
	ProviderRapidAPI   ProviderKind = "rapidapi"
	ProviderSportradar ProviderKind = "sportradar"
)

// AllProviderKinds lists every supported kind in a stable, documented order.
func AllProviderKinds() []ProviderKind {
	return []ProviderKind{ProviderSportMonks, ProviderOddsAPI, ProviderRapidAPI, ProviderSportradar}
}

func ParseProviderKind(raw string) (ProviderKind, bool) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderSportMonks:
		return ProviderSportMonks, true
	case ProviderOddsAPI:
		return ProviderOddsAPI, true
	case ProviderRapidAPI:
		return ProviderRapidAPI, true
	case ProviderSportradar:
		return ProviderSportradar, true
	default:
		return "", false
	}
}

// OutcomeLabel is the canonical side of a quote. Totals markets use
// Over/Under; corner handicap markets carry the team side instead.
type OutcomeLabel string

const (
	LabelOver  OutcomeLabel = "Over"
	LabelUnder OutcomeLabel = "Under"
	LabelHome  OutcomeLabel = "Home"
	LabelAway  OutcomeLabel = "Away"
)

type MarketKind string

const (
	MarketTotals   MarketKind = "totals"
	MarketHandicap MarketKind = "handicap"
)

func (l OutcomeLabel) Kind() MarketKind {
	if l == LabelHome || l == LabelAway {
		return MarketHandicap
	}
	return MarketTotals
}

// Row is one priced outcome: one bookmaker's price for one side of one
// corner market line in one event. A Row exists only when both Line and
// Price parsed as finite numbers; normalizers drop anything else.
type Row struct {
	EventID    string
	KickoffRaw string
	KickoffAt  time.Time
	HomeName   string
	AwayName   string
	Bookmaker  string
	MarketID   string
	Label      OutcomeLabel
	Line       float64
	Price      float64
}

func (r Row) MatchName() string {
	home := strings.TrimSpace(r.HomeName)
	away := strings.TrimSpace(r.AwayName)
	if home != "" && away != "" {
		return home + " vs " + away
	}
	if home != "" {
		return home
	}
	if away != "" {
		return away
	}
	return "Event " + r.EventID
}

// MarketGroup pairs the two sides of one (event, bookmaker, line, kind)
// market. A side never quoted stays nil; it is not zero and not an error.
type MarketGroup struct {
	EventID    string
	MatchName  string
	KickoffRaw string
	KickoffAt  time.Time
	Bookmaker  string
	Line       float64
	Kind       MarketKind

	OverPrice  *float64
	UnderPrice *float64
	HomePrice  *float64
	AwayPrice  *float64
}

func (g MarketGroup) key() string {
	return g.EventID + "|" + g.Bookmaker + "|" + strconv.FormatFloat(g.Line, 'f', -1, 64) + "|" + string(g.Kind)
}

// FirstSide is the slot compared against the Over minimum: Over for totals,
// Home for handicap markets.
func (g MarketGroup) FirstSide() *float64 {
	if g.Kind == MarketHandicap {
		return g.HomePrice
	}
	return g.OverPrice
}

// SecondSide is the slot compared against the Under minimum.
func (g MarketGroup) SecondSide() *float64 {
	if g.Kind == MarketHandicap {
		return g.AwayPrice
	}
	return g.UnderPrice
}

// ResultRow is a MarketGroup that passed threshold selection, enriched with
// the derived ranking price. Request-scoped; never persisted.
type ResultRow struct {
	MarketGroup
	RankPrice float64
}
