package sportmonks

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/maberrio/cornerscout/internal/domain/quote"
)

type fixturesEnvelope struct {
	Data []fixtureItem `json:"data"`
}

type fixtureItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	StartingAt   string          `json:"starting_at"`
	Participants participantList `json:"participants"`
	Odds         oddsList        `json:"odds"`
}

type participantItem struct {
	Name string `json:"name"`
	Meta struct {
		Location string `json:"location"`
	} `json:"meta"`
}

type oddsItem struct {
	MarketID    int64  `json:"market_id"`
	BookmakerID int64  `json:"bookmaker_id"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Total       any    `json:"total"`
	Value       any    `json:"value"`
}

// participantList and oddsList accept both API generations: v3 sends
// relations as plain arrays, v2-era payloads wrap them in {"data": [...]}.
type participantList []participantItem

func (l *participantList) UnmarshalJSON(raw []byte) error {
	return unmarshalRelation(raw, (*[]participantItem)(l))
}

type oddsList []oddsItem

func (l *oddsList) UnmarshalJSON(raw []byte) error {
	return unmarshalRelation(raw, (*[]oddsItem)(l))
}

func unmarshalRelation[T any](raw []byte, target *[]T) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		*target = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		return sonic.Unmarshal(raw, target)
	}
	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	*target = wrapped.Data
	return nil
}

type referenceEnvelope struct {
	Data []referenceItem `json:"data"`
}

type referenceItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// normalizeFixtures flattens the day payload into quote rows. Odds on other
// markets, unlabeled outcomes, and quotes with unparseable line or price
// are dropped silently per record.
func normalizeFixtures(fixtures []fixtureItem) []quote.Row {
	rows := make([]quote.Row, 0, len(fixtures)*4)
	for _, fixture := range fixtures {
		home, away := fixture.teamNames()
		eventID := strconv.FormatInt(fixture.ID, 10)

		for _, odd := range fixture.Odds {
			if odd.MarketID != alternativeCornersMarketID {
				continue
			}

			label, ok := quote.CanonicalLabel(firstNonEmpty(odd.Label, odd.Name))
			if !ok {
				continue
			}
			line, ok := quote.ParseFiniteFloat(odd.Total)
			if !ok {
				continue
			}
			price, ok := quote.ParseFiniteFloat(odd.Value)
			if !ok {
				continue
			}

			rows = append(rows, quote.Row{
				EventID:    eventID,
				KickoffRaw: fixture.StartingAt,
				KickoffAt:  quote.ParseKickoff(fixture.StartingAt),
				HomeName:   home,
				AwayName:   away,
				Bookmaker:  strconv.FormatInt(odd.BookmakerID, 10),
				MarketID:   strconv.FormatInt(odd.MarketID, 10),
				Label:      label,
				Line:       line,
				Price:      price,
			})
		}
	}
	return rows
}

func (f fixtureItem) teamNames() (home, away string) {
	for _, participant := range f.Participants {
		switch strings.ToLower(participant.Meta.Location) {
		case "home":
			home = participant.Name
		case "away":
			away = participant.Name
		}
	}
	if home == "" && away == "" && f.Name != "" {
		parts := strings.SplitN(f.Name, " vs ", 2)
		home = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			away = strings.TrimSpace(parts[1])
		}
	}
	return home, away
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
