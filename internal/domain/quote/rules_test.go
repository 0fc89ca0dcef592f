package quote

import (
	"reflect"
	"testing"
	"time"
)

func totalsRow(eventID, bookmaker string, line float64, label OutcomeLabel, price float64) Row {
	return Row{
		EventID:    eventID,
		KickoffRaw: "2026-08-28 18:00:00",
		KickoffAt:  time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC),
		HomeName:   "Home FC",
		AwayName:   "Away FC",
		Bookmaker:  bookmaker,
		MarketID:   "69",
		Label:      label,
		Line:       line,
		Price:      price,
	}
}

func TestSelectLine_ExactMatchOnly(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 9.5, LabelOver, 1.8),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
		totalsRow("2", "B", 10.5, LabelOver, 2.4),
	}

	got := SelectLine(rows, 8.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows at line 8.5, got %d", len(got))
	}
	for _, row := range got {
		if row.Line != 8.5 {
			t.Fatalf("row leaked through line filter: %+v", row)
		}
	}

	if got := SelectLine(rows, 7.5); len(got) != 0 {
		t.Fatalf("expected no rows at untraded line, got %d", len(got))
	}
}

func TestPivot_PairsSidesAndIsInjectivePerKey(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
		totalsRow("1", "B", 8.5, LabelOver, 2.0),
		totalsRow("2", "A", 8.5, LabelUnder, 1.9),
	}

	groups := Pivot(rows)
	if len(groups) != 3 {
		t.Fatalf("expected 3 market groups, got %d", len(groups))
	}

	seen := map[string]struct{}{}
	for _, group := range groups {
		key := group.key()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate group key %q", key)
		}
		seen[key] = struct{}{}
	}

	paired := groups[0]
	if paired.OverPrice == nil || *paired.OverPrice != 2.1 {
		t.Fatalf("expected over price 2.1, got %v", paired.OverPrice)
	}
	if paired.UnderPrice == nil || *paired.UnderPrice != 1.7 {
		t.Fatalf("expected under price 1.7, got %v", paired.UnderPrice)
	}

	oneSided := groups[1]
	if oneSided.UnderPrice != nil {
		t.Fatalf("expected missing under side to stay nil, got %v", *oneSided.UnderPrice)
	}
}

func TestPivot_FirstSeenPriceWins(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 8.5, LabelOver, 2.5),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
	}

	groups := Pivot(rows)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if *groups[0].OverPrice != 2.1 {
		t.Fatalf("expected first-seen over price 2.1, got %v", *groups[0].OverPrice)
	}
}

func TestPivot_SeparatesTotalsFromHandicap(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 1.5, LabelOver, 2.1),
		totalsRow("1", "A", 1.5, LabelHome, 1.9),
		totalsRow("1", "A", 1.5, LabelAway, 1.9),
	}

	groups := Pivot(rows)
	if len(groups) != 2 {
		t.Fatalf("expected totals and handicap groups to stay apart, got %d", len(groups))
	}
	if groups[0].Kind != MarketTotals || groups[1].Kind != MarketHandicap {
		t.Fatalf("unexpected group kinds: %s, %s", groups[0].Kind, groups[1].Kind)
	}
	if groups[1].FirstSide() == nil || *groups[1].FirstSide() != 1.9 {
		t.Fatalf("expected handicap home side 1.9, got %v", groups[1].FirstSide())
	}
}

func TestSelectByThresholds_BothSidesMustPass(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
	}
	groups := Pivot(SelectLine(rows, 8.5))

	if got := SelectByThresholds(groups, 2.0, 2.0); len(got) != 0 {
		t.Fatalf("expected empty result when under side fails threshold, got %d rows", len(got))
	}

	got := SelectByThresholds(groups, 2.0, 1.5)
	if len(got) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(got))
	}
	if *got[0].OverPrice != 2.1 || *got[0].UnderPrice != 1.7 {
		t.Fatalf("unexpected prices: over=%v under=%v", *got[0].OverPrice, *got[0].UnderPrice)
	}
	if got[0].RankPrice != 2.1 {
		t.Fatalf("expected rank price 2.1, got %v", got[0].RankPrice)
	}
}

func TestSelectByThresholds_SkipsIncompleteGroups(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 3.0),
	}
	groups := Pivot(rows)

	if got := SelectByThresholds(groups, 1.0, 1.0); len(got) != 0 {
		t.Fatalf("one-sided group must never pass thresholds, got %d rows", len(got))
	}
}

func TestSelectByThresholds_Monotonic(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
		totalsRow("1", "B", 8.5, LabelOver, 1.9),
		totalsRow("1", "B", 8.5, LabelUnder, 2.2),
		totalsRow("2", "A", 8.5, LabelOver, 2.5),
		totalsRow("2", "A", 8.5, LabelUnder, 1.5),
	}
	groups := Pivot(rows)

	loose := SelectByThresholds(groups, 1.0, 1.0)
	tight := SelectByThresholds(groups, 2.0, 1.6)

	if len(tight) > len(loose) {
		t.Fatalf("raising thresholds grew the result: %d > %d", len(tight), len(loose))
	}

	looseKeys := map[string]struct{}{}
	for _, row := range loose {
		looseKeys[row.key()] = struct{}{}
	}
	for _, row := range tight {
		if _, ok := looseKeys[row.key()]; !ok {
			t.Fatalf("tightened result contains row absent from loose result: %+v", row.MarketGroup)
		}
	}
}

func TestSelectByThresholds_OrderIsDeterministic(t *testing.T) {
	early := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)

	mk := func(eventID, bookmaker string, kickoff time.Time, over, under float64) []Row {
		overRow := totalsRow(eventID, bookmaker, 8.5, LabelOver, over)
		underRow := totalsRow(eventID, bookmaker, 8.5, LabelUnder, under)
		overRow.KickoffAt = kickoff
		underRow.KickoffAt = kickoff
		return []Row{overRow, underRow}
	}

	var rows []Row
	rows = append(rows, mk("2", "A", late, 2.4, 2.0)...)
	rows = append(rows, mk("1", "B", early, 2.2, 2.0)...)
	rows = append(rows, mk("1", "A", early, 3.0, 2.0)...)

	got := SelectByThresholds(Pivot(rows), 1.0, 1.0)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}

	// Earliest kickoff first; within a kickoff, higher rank price first.
	if got[0].EventID != "1" || got[0].Bookmaker != "A" {
		t.Fatalf("expected event 1 bookmaker A first, got %s/%s", got[0].EventID, got[0].Bookmaker)
	}
	if got[1].EventID != "1" || got[1].Bookmaker != "B" {
		t.Fatalf("expected event 1 bookmaker B second, got %s/%s", got[1].EventID, got[1].Bookmaker)
	}
	if got[2].EventID != "2" {
		t.Fatalf("expected late kickoff last, got event %s", got[2].EventID)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	rows := []Row{
		totalsRow("1", "A", 8.5, LabelOver, 2.1),
		totalsRow("1", "A", 8.5, LabelUnder, 1.7),
		totalsRow("2", "B", 8.5, LabelOver, 2.6),
		totalsRow("2", "B", 8.5, LabelUnder, 1.4),
	}

	run := func() []ResultRow {
		return SelectByThresholds(Pivot(SelectLine(rows, 8.5)), 1.0, 1.0)
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pipeline is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
