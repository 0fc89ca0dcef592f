package quote

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseFiniteFloat coerces the loosely-typed numerics providers send
// (float64, int, numeric string) into a finite float64. NaN, infinities and
// anything non-numeric report ok=false so the caller can drop the record.
func ParseFiniteFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case nil:
		return 0, false
	case float64:
		return typed, isFinite(typed)
	case float32:
		return float64(typed), isFinite(float64(typed))
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return parsed, isFinite(parsed)
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var kickoffLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseKickoff parses the provider-supplied kickoff string into UTC. The raw
// string is kept on the Row regardless; a zero time means unparseable.
func ParseKickoff(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range kickoffLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// CanonicalLabel maps a provider-native outcome label onto Over/Under via
// case-insensitive substring match. Free-text labels that mention neither
// side report ok=false.
func CanonicalLabel(raw string) (OutcomeLabel, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(value, "over"):
		return LabelOver, true
	case strings.Contains(value, "under"):
		return LabelUnder, true
	default:
		return "", false
	}
}

// MentionsCorners reports whether any of the given names refers to a corner
// market. Matching is a case-insensitive substring test, OR'd across values.
func MentionsCorners(values ...string) bool {
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), "corner") {
			return true
		}
	}
	return false
}
