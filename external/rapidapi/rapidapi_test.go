package rapidapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/usecase"
)

const freeFormPayload = `{
  "results": [
    {
      "event_id": 9001,
      "start_time": "2026-08-28 17:00:00",
      "home": "Lyon",
      "away": "Lille",
      "bookmakers": [
        {
          "bookmaker_name": "bwin",
          "markets": [
            {
              "market_name": "Total Corners",
              "odds": [
                {"label": "Over 8.5", "line": "8.5", "price": "2.02"},
                {"label": "Under 8.5", "line": "8.5", "price": "1.81"},
                {"label": "Over 9.5", "line": "9.5", "price": "abc"}
              ]
            },
            {
              "market_name": "Total Goals",
              "odds": [
                {"label": "Over 2.5", "line": "2.5", "price": "1.90"}
              ]
            }
          ]
        }
      ]
    },
    {
      "start_time": "2026-08-28 19:00:00",
      "home": "Nice",
      "away": "Monaco"
    }
  ]
}`

func TestNormalizeFreeForm(t *testing.T) {
	rows, events := normalizeFreeForm([]byte(freeFormPayload))
	if events != 2 {
		t.Fatalf("expected 2 events, got %d", events)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 corner rows, got %d: %+v", len(rows), rows)
	}

	over := rows[0]
	if over.EventID != "9001" {
		t.Fatalf("unexpected event id %q", over.EventID)
	}
	if over.Bookmaker != "bwin" {
		t.Fatalf("unexpected bookmaker %q", over.Bookmaker)
	}
	if over.Label != quote.LabelOver || over.Line != 8.5 || over.Price != 2.02 {
		t.Fatalf("unexpected over row: %+v", over)
	}
	if over.HomeName != "Lyon" || over.AwayName != "Lille" {
		t.Fatalf("unexpected teams: %q / %q", over.HomeName, over.AwayName)
	}

	if rows[1].Label != quote.LabelUnder || rows[1].Price != 1.81 {
		t.Fatalf("unexpected under row: %+v", rows[1])
	}
}

func TestNormalizeFreeForm_TopLevelArray(t *testing.T) {
	payload := `[
	  {
	    "id": "m1",
	    "kickoff": "2026-08-28T20:00:00Z",
	    "home_team": "Betis",
	    "away_team": "Sevilla",
	    "odds": {
	      "market": "Corners Over/Under",
	      "selections": [
	        {"name": "Over", "total": 10.5, "odd": 2.3, "bookie": "888sport"}
	      ]
	    }
	  }
	]`

	rows, events := normalizeFreeForm([]byte(payload))
	if events != 1 {
		t.Fatalf("expected 1 event, got %d", events)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Bookmaker != "888sport" || rows[0].Line != 10.5 || rows[0].Price != 2.3 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestNormalizeFreeForm_CornerMentionInOutcomeName(t *testing.T) {
	// Some hosts file corner totals under a generic "totals" market and
	// spell the sport only in the outcome name.
	payload := `{
	  "events": [
	    {
	      "event_id": "e77",
	      "start_time": "2026-08-28 21:00:00",
	      "home": "Porto",
	      "away": "Braga",
	      "odds": [
	        {"market": "totals", "label": "Corners Over 8.5", "line": 8.5, "price": 2.1, "bookmaker": "bet365"},
	        {"market": "totals", "label": "Over 2.5", "line": 2.5, "price": 1.9, "bookmaker": "bet365"}
	      ]
	    }
	  ]
	}`

	rows, events := normalizeFreeForm([]byte(payload))
	if events != 1 {
		t.Fatalf("expected 1 event, got %d", events)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the corner outcome, got %d rows: %+v", len(rows), rows)
	}
	if rows[0].Label != quote.LabelOver || rows[0].Line != 8.5 || rows[0].Price != 2.1 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestNormalizeFreeForm_GarbageInput(t *testing.T) {
	if rows, events := normalizeFreeForm([]byte(`not json`)); rows != nil || events != 0 {
		t.Fatalf("expected empty result for garbage input")
	}
	if rows, _ := normalizeFreeForm([]byte(`{"data": "nothing here"}`)); len(rows) != 0 {
		t.Fatalf("expected no rows for shapeless payload")
	}
}

func TestClient_EndpointDetection(t *testing.T) {
	var oddsHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/odds", func(w http.ResponseWriter, r *http.Request) {
		oddsHits.Add(1)
		if r.Header.Get("X-RapidAPI-Key") != "rk" {
			t.Errorf("missing rapidapi key header")
		}
		_, _ = w.Write([]byte(freeFormPayload))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "rk",
		Timeout: 2 * time.Second,
	})

	day := usecase.DayQuery{Day: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)}

	out, err := client.FetchDayQuotes(context.Background(), day)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.Rows))
	}

	// Second fetch must reuse the memoized suffix: exactly one more hit on
	// /odds, no fresh probe walk.
	if _, err := client.FetchDayQuotes(context.Background(), day); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := oddsHits.Load(); got != 2 {
		t.Fatalf("expected 2 hits on detected endpoint, got %d", got)
	}
}

func TestClient_EndpointDetection_AllSuffixesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "rk"})
	_, err := client.FetchDayQuotes(context.Background(), usecase.DayQuery{
		Day: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatalf("expected detection failure when every suffix 404s")
	}
}
