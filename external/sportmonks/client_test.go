package sportmonks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/usecase"
)

func TestClient_FetchDayQuotes(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(fixtureDayPayload))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "tkn",
		Timeout: 2 * time.Second,
	})

	day := usecase.DayQuery{
		Day:          time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		LeagueIDs:    []string{"501"},
		BookmakerIDs: []string{"2", "5"},
	}
	out, err := client.FetchDayQuotes(context.Background(), day)
	if err != nil {
		t.Fatalf("fetch day quotes: %v", err)
	}

	if gotPath != "/fixtures/date/2026-08-28" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	for _, fragment := range []string{"markets%3A69", "fixtureLeagues%3A501", "bookmakers%3A2%2C5", "api_token=tkn"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("query %q missing %q", gotQuery, fragment)
		}
	}

	if out.EventsFetched != 1 {
		t.Fatalf("expected 1 fixture, got %d", out.EventsFetched)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out.Rows))
	}
}

func TestClient_FetchDayQuotes_RequiresToken(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://localhost:0"})

	_, err := client.FetchDayQuotes(context.Background(), usecase.DayQuery{
		Day: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	})
	if !crerr.Is(err, usecase.ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestClient_FetchDayQuotes_RequestTokenOverridesConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_token") != "request-token" {
			t.Errorf("expected request token, got %q", r.URL.Query().Get("api_token"))
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "config-token"})
	if _, err := client.FetchDayQuotes(context.Background(), usecase.DayQuery{
		Day:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Token: "request-token",
	}); err != nil {
		t.Fatalf("fetch with request token: %v", err)
	}
}

func TestClient_BookmakerNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/odds/bookmakers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":2,"name":"bet365"},{"id":5,"name":"Unibet"},{"id":0,"name":"ghost"}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tkn"})
	names, err := client.BookmakerNames(context.Background())
	if err != nil {
		t.Fatalf("bookmaker names: %v", err)
	}
	if len(names) != 2 || names["2"] != "bet365" || names["5"] != "Unibet" {
		t.Fatalf("unexpected directory: %+v", names)
	}
}
