package rapidapi

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/maberrio/cornerscout/internal/domain/quote"
)

// Candidate key tables for the free-form payloads. Aggregators rename
// fields between versions; lookup tries each candidate in order.
var (
	eventListKeys = []string{"data", "events", "results", "fixtures", "matches", "response"}
	eventIDKeys   = []string{"id", "event_id", "fixture_id", "match_id"}
	kickoffKeys   = []string{"commence_time", "starting_at", "start_time", "kickoff", "date"}
	homeKeys      = []string{"home_team", "home", "home_name", "localteam"}
	awayKeys      = []string{"away_team", "away", "away_name", "visitorteam"}
	bookmakerKeys = []string{"bookmaker", "bookmaker_name", "bookmaker_id", "bookie", "book"}
	marketKeys    = []string{"market", "market_name", "bet_name", "key", "type"}
	labelKeys     = []string{"label", "name", "outcome", "selection", "header"}
	lineKeys      = []string{"line", "total", "handicap", "points", "point"}
	priceKeys     = []string{"price", "odds", "odd", "value", "rate"}
)

const maxWalkDepth = 8

// normalizeFreeForm turns an arbitrary aggregator payload into quote rows.
// It locates the event list by candidate keys, then walks each event's
// subtree collecting records that carry both a line and a price under a
// corner-related market. Returns the rows and the number of events seen.
func normalizeFreeForm(raw []byte) ([]quote.Row, int) {
	var root any
	if err := sonic.Unmarshal(raw, &root); err != nil {
		return nil, 0
	}

	events := extractEvents(root)
	rows := make([]quote.Row, 0, len(events)*4)
	for _, item := range events {
		event, ok := item.(map[string]any)
		if !ok {
			continue
		}

		kickoffRaw := stringAt(event, kickoffKeys)
		template := quote.Row{
			EventID:    stringAt(event, eventIDKeys),
			KickoffRaw: kickoffRaw,
			KickoffAt:  quote.ParseKickoff(kickoffRaw),
			HomeName:   stringAt(event, homeKeys),
			AwayName:   stringAt(event, awayKeys),
		}
		if template.EventID == "" {
			continue
		}

		walkOdds(event, template, walkScope{}, 0, &rows)
	}
	return rows, len(events)
}

func extractEvents(root any) []any {
	switch typed := root.(type) {
	case []any:
		return typed
	case map[string]any:
		for _, key := range eventListKeys {
			if list, ok := typed[key].([]any); ok {
				return list
			}
			// Some hosts nest once more: {"data": {"events": [...]}}.
			if nested, ok := typed[key].(map[string]any); ok {
				if list := extractEvents(nested); len(list) > 0 {
					return list
				}
			}
		}
	}
	return nil
}

// walkScope carries the nearest enclosing bookmaker and market names while
// descending an event subtree.
type walkScope struct {
	bookmaker string
	market    string
}

func walkOdds(node any, template quote.Row, scope walkScope, depth int, out *[]quote.Row) {
	if depth > maxWalkDepth {
		return
	}

	switch typed := node.(type) {
	case []any:
		for _, item := range typed {
			walkOdds(item, template, scope, depth+1, out)
		}
	case map[string]any:
		if name := stringAt(typed, bookmakerKeys); name != "" {
			scope.bookmaker = name
		}
		if name := stringAt(typed, marketKeys); name != "" {
			scope.market = name
		}

		if row, ok := quoteFromRecord(typed, template, scope); ok {
			*out = append(*out, row)
			return
		}

		for key, value := range typed {
			childScope := scope
			if quote.MentionsCorners(key) {
				childScope.market = key
			}
			walkOdds(value, template, childScope, depth+1, out)
		}
	}
}

// quoteFromRecord recognizes a leaf record: it must carry a parseable line
// and price, a label resolvable to Over/Under, and mention corners in
// either its market or its outcome name. Aggregators that file corner
// totals under a generic "totals" market spell the sport in the outcome
// ("Corners Over 8.5"), so the outcome name counts too. Records missing
// any of that are not quotes and the walk goes on.
func quoteFromRecord(record map[string]any, template quote.Row, scope walkScope) (quote.Row, bool) {
	line, ok := quote.ParseFiniteFloat(valueAt(record, lineKeys))
	if !ok {
		return quote.Row{}, false
	}
	price, ok := quote.ParseFiniteFloat(valueAt(record, priceKeys))
	if !ok {
		return quote.Row{}, false
	}

	label, ok := quote.CanonicalLabel(stringAt(record, labelKeys))
	if !ok {
		return quote.Row{}, false
	}
	if !quote.MentionsCorners(scope.market, stringAt(record, marketKeys), stringAt(record, labelKeys)) {
		return quote.Row{}, false
	}

	row := template
	row.Bookmaker = firstNonEmptyString(stringAt(record, bookmakerKeys), scope.bookmaker, "unknown")
	row.MarketID = firstNonEmptyString(stringAt(record, marketKeys), scope.market)
	row.Label = label
	row.Line = line
	row.Price = price
	return row, true
}

func valueAt(record map[string]any, keys []string) any {
	for _, key := range keys {
		if value, ok := record[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// stringAt coerces the first present candidate to a string; numeric ids
// are rendered without an exponent.
func stringAt(record map[string]any, keys []string) string {
	switch value := valueAt(record, keys).(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return ""
	}
}

func firstNonEmptyString(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
