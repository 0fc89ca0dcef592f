package sportradar

import (
	"strings"

	"github.com/maberrio/cornerscout/internal/domain/quote"
)

type scheduleEnvelope struct {
	SportEvents []sportEventMarkets `json:"sport_events"`
}

type sportEventMarkets struct {
	SportEvent sportEvent   `json:"sport_event"`
	Markets    []marketItem `json:"markets"`
}

type sportEvent struct {
	ID          string           `json:"id"`
	StartTime   string           `json:"start_time"`
	Competitors []competitorItem `json:"competitors"`
}

type competitorItem struct {
	Name      string `json:"name"`
	Qualifier string `json:"qualifier"`
}

type marketItem struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Books []bookItem `json:"books"`
}

type bookItem struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Outcomes []outcomeItem `json:"outcomes"`
}

type outcomeItem struct {
	Type        string `json:"type"`
	Total       any    `json:"total"`
	Handicap    any    `json:"handicap"`
	OddsDecimal any    `json:"odds_decimal"`
}

// normalizeSchedule flattens the market/book/outcome tree. Only corner
// markets contribute; outcome type carries the side, total or handicap
// carries the line, odds_decimal the price.
func normalizeSchedule(envelope scheduleEnvelope) []quote.Row {
	rows := make([]quote.Row, 0, len(envelope.SportEvents)*4)
	for _, entry := range envelope.SportEvents {
		event := entry.SportEvent
		home, away := event.teamNames()

		for _, market := range entry.Markets {
			if !quote.MentionsCorners(market.Name) {
				continue
			}

			for _, book := range market.Books {
				bookmaker := book.Name
				if strings.TrimSpace(bookmaker) == "" {
					bookmaker = book.ID
				}

				for _, outcome := range book.Outcomes {
					label, ok := outcomeLabel(outcome.Type)
					if !ok {
						continue
					}
					line, ok := quote.ParseFiniteFloat(outcome.lineValue())
					if !ok {
						continue
					}
					price, ok := quote.ParseFiniteFloat(outcome.OddsDecimal)
					if !ok {
						continue
					}

					rows = append(rows, quote.Row{
						EventID:    event.ID,
						KickoffRaw: event.StartTime,
						KickoffAt:  quote.ParseKickoff(event.StartTime),
						HomeName:   home,
						AwayName:   away,
						Bookmaker:  bookmaker,
						MarketID:   market.Name,
						Label:      label,
						Line:       line,
						Price:      price,
					})
				}
			}
		}
	}
	return rows
}

func (e sportEvent) teamNames() (home, away string) {
	for _, competitor := range e.Competitors {
		switch strings.ToLower(competitor.Qualifier) {
		case "home":
			home = competitor.Name
		case "away":
			away = competitor.Name
		}
	}
	return home, away
}

func (o outcomeItem) lineValue() any {
	if o.Total != nil {
		return o.Total
	}
	return o.Handicap
}

func outcomeLabel(outcomeType string) (quote.OutcomeLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(outcomeType)) {
	case "over":
		return quote.LabelOver, true
	case "under":
		return quote.LabelUnder, true
	case "home":
		return quote.LabelHome, true
	case "away":
		return quote.LabelAway, true
	default:
		return "", false
	}
}
