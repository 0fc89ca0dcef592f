package quote

import "sort"

// SelectLine keeps rows whose line equals target exactly. Exact float64
// equality is the observed behavior of every dashboard this replaces; callers
// enter half lines which are exactly representable. A provider that returns
// 8.500000001 will silently not match, which is latent but intentional here.
func SelectLine(rows []Row, target float64) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Line == target {
			out = append(out, row)
		}
	}
	return out
}

// Pivot groups rows by (event, bookmaker, line, market kind) and projects
// each side's price into its slot. Grouping preserves input order and the
// first price seen for a side wins, so duplicate quotes from a provider
// resolve deterministically.
func Pivot(rows []Row) []MarketGroup {
	keys := make([]string, 0, len(rows))
	byKey := make(map[string]*MarketGroup, len(rows))

	for _, row := range rows {
		candidate := MarketGroup{
			EventID:    row.EventID,
			MatchName:  row.MatchName(),
			KickoffRaw: row.KickoffRaw,
			KickoffAt:  row.KickoffAt,
			Bookmaker:  row.Bookmaker,
			Line:       row.Line,
			Kind:       row.Label.Kind(),
		}
		key := candidate.key()

		group, ok := byKey[key]
		if !ok {
			group = &candidate
			byKey[key] = group
			keys = append(keys, key)
		}

		price := row.Price
		switch row.Label {
		case LabelOver:
			if group.OverPrice == nil {
				group.OverPrice = &price
			}
		case LabelUnder:
			if group.UnderPrice == nil {
				group.UnderPrice = &price
			}
		case LabelHome:
			if group.HomePrice == nil {
				group.HomePrice = &price
			}
		case LabelAway:
			if group.AwayPrice == nil {
				group.AwayPrice = &price
			}
		}
	}

	out := make([]MarketGroup, 0, len(keys))
	for _, key := range keys {
		out = append(out, *byKey[key])
	}
	return out
}

// SelectByThresholds keeps groups where both sides are quoted and meet their
// minimum, computes the ranking price, and orders the result: earliest
// kickoff first, ties broken by ranking price descending, then event id and
// bookmaker for a fully deterministic order.
func SelectByThresholds(groups []MarketGroup, firstMin, secondMin float64) []ResultRow {
	out := make([]ResultRow, 0, len(groups))
	for _, group := range groups {
		first := group.FirstSide()
		second := group.SecondSide()
		if first == nil || second == nil {
			continue
		}
		if *first < firstMin || *second < secondMin {
			continue
		}

		rank := *first
		if *second > rank {
			rank = *second
		}
		out = append(out, ResultRow{MarketGroup: group, RankPrice: rank})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		if out[i].RankPrice != out[j].RankPrice {
			return out[i].RankPrice > out[j].RankPrice
		}
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		return out[i].Bookmaker < out[j].Bookmaker
	})

	return out
}
