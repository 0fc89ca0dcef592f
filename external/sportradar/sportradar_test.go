package sportradar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/usecase"
)

const schedulePayload = `{
  "sport_events": [
    {
      "sport_event": {
        "id": "sr:sport_event:33615091",
        "start_time": "2026-08-28T18:30:00+00:00",
        "competitors": [
          {"name": "Juventus", "qualifier": "home"},
          {"name": "Inter", "qualifier": "away"}
        ]
      },
      "markets": [
        {
          "id": 166,
          "name": "Total corners",
          "books": [
            {
              "id": "sr:book:18",
              "name": "Bet365",
              "outcomes": [
                {"type": "over", "total": 9.5, "odds_decimal": "2.15"},
                {"type": "under", "total": 9.5, "odds_decimal": "1.72"},
                {"type": "over", "total": null, "odds_decimal": "1.50"},
                {"type": "exact", "total": 9.5, "odds_decimal": "7.00"}
              ]
            },
            {
              "id": "sr:book:171",
              "outcomes": [
                {"type": "over", "total": 9.5, "odds_decimal": "bad"}
              ]
            }
          ]
        },
        {
          "id": 60,
          "name": "Total goals",
          "books": [
            {
              "name": "Bet365",
              "outcomes": [{"type": "over", "total": 2.5, "odds_decimal": "1.85"}]
            }
          ]
        },
        {
          "id": 167,
          "name": "Corner handicap",
          "books": [
            {
              "name": "Bet365",
              "outcomes": [
                {"type": "home", "handicap": -2.5, "odds_decimal": "1.95"},
                {"type": "away", "handicap": 2.5, "odds_decimal": "1.88"}
              ]
            }
          ]
        }
      ]
    }
  ]
}`

func TestNormalizeSchedule(t *testing.T) {
	var envelope scheduleEnvelope
	if err := sonic.Unmarshal([]byte(schedulePayload), &envelope); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}

	rows := normalizeSchedule(envelope)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %+v", len(rows), rows)
	}

	over := rows[0]
	if over.EventID != "sr:sport_event:33615091" {
		t.Fatalf("unexpected event id %q", over.EventID)
	}
	if over.Bookmaker != "Bet365" {
		t.Fatalf("unexpected bookmaker %q", over.Bookmaker)
	}
	if over.Label != quote.LabelOver || over.Line != 9.5 || over.Price != 2.15 {
		t.Fatalf("unexpected over row: %+v", over)
	}
	if over.HomeName != "Juventus" || over.AwayName != "Inter" {
		t.Fatalf("unexpected teams: %q / %q", over.HomeName, over.AwayName)
	}

	if rows[2].Label != quote.LabelHome || rows[2].Line != -2.5 || rows[2].Price != 1.95 {
		t.Fatalf("unexpected handicap home row: %+v", rows[2])
	}
	if rows[3].Label != quote.LabelAway || rows[3].Line != 2.5 {
		t.Fatalf("unexpected handicap away row: %+v", rows[3])
	}
}

func TestClient_FetchDayQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/sr:sport:1/schedules/2026-08-28/sport_event_markets.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "srk" {
			t.Errorf("missing api key")
		}
		_, _ = w.Write([]byte(schedulePayload))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "srk",
		Timeout: 2 * time.Second,
	})

	out, err := client.FetchDayQuotes(context.Background(), usecase.DayQuery{
		Day: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("fetch day quotes: %v", err)
	}
	if out.EventsFetched != 1 || len(out.Rows) != 4 {
		t.Fatalf("unexpected result: events=%d rows=%d", out.EventsFetched, len(out.Rows))
	}
}
