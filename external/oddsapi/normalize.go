package oddsapi

import (
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/domain/quote"
)

type eventItem struct {
	ID           string `json:"id"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}

type eventOdds struct {
	Bookmakers []bookmakerItem `json:"bookmakers"`
}

type bookmakerItem struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []marketItem `json:"markets"`
}

type marketItem struct {
	Key      string        `json:"key"`
	Outcomes []outcomeItem `json:"outcomes"`
}

type outcomeItem struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

func decodeEventOdds(raw []byte, target *eventOdds) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode event odds")
	}
	return nil
}

// normalizeEvent flattens one event's bookmaker tree. Totals markets map
// outcome names onto Over/Under; spreads_corners maps the team name onto
// the Home/Away side. Outcomes without a point are dropped.
func normalizeEvent(event eventItem, odds eventOdds) []quote.Row {
	kickoffAt := quote.ParseKickoff(event.CommenceTime)
	rows := make([]quote.Row, 0, len(odds.Bookmakers)*4)

	for _, bookmaker := range odds.Bookmakers {
		bookmakerID := firstNonEmpty(bookmaker.Key, bookmaker.Title)
		for _, market := range bookmaker.Markets {
			if !strings.Contains(market.Key, "corner") {
				continue
			}
			handicap := strings.Contains(market.Key, "spread")

			for _, outcome := range market.Outcomes {
				if outcome.Point == nil {
					continue
				}
				line, ok := quote.ParseFiniteFloat(*outcome.Point)
				if !ok {
					continue
				}
				price, ok := quote.ParseFiniteFloat(outcome.Price)
				if !ok {
					continue
				}

				var label quote.OutcomeLabel
				if handicap {
					label, ok = sideForTeam(outcome.Name, event)
				} else {
					label, ok = quote.CanonicalLabel(outcome.Name)
				}
				if !ok {
					continue
				}

				rows = append(rows, quote.Row{
					EventID:    event.ID,
					KickoffRaw: event.CommenceTime,
					KickoffAt:  kickoffAt,
					HomeName:   event.HomeTeam,
					AwayName:   event.AwayTeam,
					Bookmaker:  bookmakerID,
					MarketID:   market.Key,
					Label:      label,
					Line:       line,
					Price:      price,
				})
			}
		}
	}
	return rows
}

// sideForTeam resolves a spread outcome, named after the team, to its side.
func sideForTeam(name string, event eventItem) (quote.OutcomeLabel, bool) {
	trimmed := strings.TrimSpace(name)
	switch {
	case strings.EqualFold(trimmed, event.HomeTeam):
		return quote.LabelHome, true
	case strings.EqualFold(trimmed, event.AwayTeam):
		return quote.LabelAway, true
	default:
		return "", false
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
