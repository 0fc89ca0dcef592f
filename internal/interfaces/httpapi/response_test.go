package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/maberrio/cornerscout/internal/usecase"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantReason string
	}{
		{err: fmt.Errorf("%w: line must be positive", usecase.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{err: usecase.ErrMissingCredential, wantStatus: http.StatusUnauthorized, wantReason: "missingCredential"},
		{err: usecase.ErrDependencyUnavailable, wantStatus: http.StatusServiceUnavailable, wantReason: "dependencyUnavailable"},
		{err: usecase.ErrNoFixtures, wantStatus: http.StatusNotFound, wantReason: "noFixtures"},
		{err: usecase.ErrNoLineQuotes, wantStatus: http.StatusNotFound, wantReason: "noQuotesAtLine"},
		{err: usecase.ErrNoThresholdMatches, wantStatus: http.StatusNotFound, wantReason: "noThresholdMatches"},
		{err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tc := range cases {
		got := mapError(tc.err)
		if got.HTTPStatus != tc.wantStatus {
			t.Fatalf("mapError(%v) status = %d, want %d", tc.err, got.HTTPStatus, tc.wantStatus)
		}
		if got.Reason != tc.wantReason {
			t.Fatalf("mapError(%v) reason = %q, want %q", tc.err, got.Reason, tc.wantReason)
		}
	}
}
