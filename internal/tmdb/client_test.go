package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/snapetech/strmsync/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("  ", "", "en-US"); !errors.Is(err, tmdb.ErrAPIKeyRequired) {
		t.Fatalf("err = %v, want ErrAPIKeyRequired", err)
	}
}

func newServer(t *testing.T, searchBody string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if q.Get("language") != "nl-NL" {
			t.Errorf("language = %q", q.Get("language"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/search/tv":
			if q.Get("query") != "Dark" {
				t.Errorf("query = %q, want year stripped", q.Get("query"))
			}
			_, _ = w.Write([]byte(searchBody))
		case r.URL.Path == "/tv/70523":
			_, _ = w.Write([]byte(`{"id":70523,"name":"Dark","overview":"Time <travel> & more","first_air_date":"2017-12-01","vote_average":8.4}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLookupSeriesSuccess(t *testing.T) {
	server := newServer(t, `{"page":1,"results":[{"id":70523,"name":"Dark"},{"id":1,"name":"Other"}]}`)
	e := tmdb.FromKey("key", server.URL, "nl-NL", nil)

	got := e.LookupSeries(context.Background(), "Dark (2017)")
	if got.Unavailable != nil {
		t.Fatalf("Unavailable = %v", got.Unavailable)
	}
	want := tmdb.SeriesMetadata{Title: "Dark", Overview: "Time <travel> & more", FirstAirDate: "2017-12-01", Rating: "8.4"}
	if *got.Metadata != want {
		t.Fatalf("metadata = %+v, want %+v", *got.Metadata, want)
	}
}

func TestLookupSeriesNoResults(t *testing.T) {
	server := newServer(t, `{"page":1,"results":[]}`)
	e := tmdb.FromKey("key", server.URL, "nl-NL", nil)
	got := e.LookupSeries(context.Background(), "Dark [2017]")
	if !errors.Is(got.Unavailable, tmdb.ErrNoMatch) || got.Metadata != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestLookupSeriesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	got := tmdb.FromKey("key", server.URL, "", nil).LookupSeries(context.Background(), "x")
	if got.Unavailable == nil || got.Metadata != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestLookupSeriesUnreachableHidesKey(t *testing.T) {
	got := tmdb.FromKey("secretkey", "http://127.0.0.1:1", "", nil).LookupSeries(context.Background(), "x")
	if got.Unavailable == nil {
		t.Fatal("expected unavailable")
	}
	if strings.Contains(got.Unavailable.Error(), "secretkey") {
		t.Errorf("api key leaked: %v", got.Unavailable)
	}
}

func TestLookupSeriesDisabled(t *testing.T) {
	e := tmdb.FromKey("", "", "en-US", nil)
	if e.Enabled() {
		t.Fatal("enricher without key should be disabled")
	}
	if got := e.LookupSeries(context.Background(), "x"); !errors.Is(got.Unavailable, tmdb.ErrNoKey) {
		t.Fatalf("got %+v", got)
	}
	var nilEnricher *tmdb.Enricher
	if got := nilEnricher.LookupSeries(context.Background(), "x"); !errors.Is(got.Unavailable, tmdb.ErrNoKey) {
		t.Fatalf("nil enricher: %+v", got)
	}
}

func TestStripYear(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Dark (2017)", "Dark"},
		{"Dark [2017]", "Dark"},
		{"  Dark  ", "Dark"},
		{"1899 (2022)", "1899"},
		{"Show (17)", "Show (17)"},
	}
	for _, tt := range tests {
		if got := tmdb.StripYear(tt.in); got != tt.want {
			t.Errorf("StripYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
