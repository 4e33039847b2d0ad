package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/summitathletics/summit-data/internal/api/respond"
	"github.com/summitathletics/summit-data/internal/cache"
)

// testHandler builds a Handler with just the response cache wired; the
// request validation paths under test never touch the store.
func testHandler() *Handler {
	return New(nil, nil, nil, nil, cache.New(false), nil)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) respond.ErrorResponse {
	t.Helper()
	var e respond.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return e
}

func TestListGamesRejectsMalformedSportID(t *testing.T) {
	h := testHandler()

	rec := httptest.NewRecorder()
	h.ListGames(rec, httptest.NewRequest(http.MethodGet, "/games?sportId=basketball", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "INVALID_SPORT_ID" {
		t.Fatalf("error code = %q", e.Code)
	}
}

func TestListTeamsRejectsMalformedFilters(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
	}{
		{"bad schoolId", "schoolId=west", "INVALID_SCHOOL_ID"},
		{"bad sportId", "sportId=1.5", "INVALID_SPORT_ID"},
		{"bad sportId with good schoolId", "schoolId=1&sportId=x", "INVALID_SPORT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler()
			rec := httptest.NewRecorder()
			h.ListTeams(rec, httptest.NewRequest(http.MethodGet, "/teams?"+tt.query, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if e := decodeError(t, rec); e.Code != tt.wantCode {
				t.Fatalf("error code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}
