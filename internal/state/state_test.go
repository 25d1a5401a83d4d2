package state

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/provider"
)

func TestLoad_missingFileGivesDefaults(t *testing.T) {
	st, err := NewStore(filepath.Join(t.TempDir(), "none.json")).Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(st, Defaults()) {
		t.Errorf("got %+v", st)
	}
}

func TestLoad_corruptFileGivesDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := NewStore(path).Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if !reflect.DeepEqual(st, Defaults()) {
		t.Errorf("got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.json")
	store := NewStore(path)
	in := AppState{
		SelectedLive:   []string{"News"},
		SelectedMovies: []string{"Action", "Drama"},
		SelectedSeries: []string{},
		Providers: []provider.Provider{
			{Name: "p1", ServerBaseURL: "http://h", Username: "u", Secret: "enc:v1:abc"},
		},
		LastProvider: "p1",
		TMDBAPIKey:   "k",
		Language:     "nl-nl",
	}
	if err := store.Save(in); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}
	out, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	in.Language = "nl-NL"
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip:\n got %+v\nwant %+v", out, in)
	}
}

func TestSave_jsonKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := NewStore(path).Save(Defaults()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"selected_live"`, `"selected_movies"`, `"selected_series"`, `"providers"`, `"last_provider"`, `"tmdb_api_key"`, `"language"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("missing key %s in %s", key, data)
		}
	}
}

func TestLoad_legacyFileWithoutNewKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	legacy := `{"selected_live":["A"],"selected_movies":[],"selected_series":["S"],"providers":[{"name":"p","server":"http://x","username":"u","password":"plain"}],"tmdb_api_key":""}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := NewStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	if st.Language != DefaultLanguage || st.LastProvider != "" {
		t.Errorf("defaults not applied: %+v", st)
	}
	if st.Providers[0].Secret != "plain" {
		t.Errorf("provider = %+v", st.Providers[0])
	}
	sel := st.Selection()
	if !sel.Contains(catalog.KindSeries, "S") || sel.Len(catalog.KindMovie) != 0 {
		t.Errorf("selection = %+v", sel)
	}
}

func TestCanonicalLanguage(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", DefaultLanguage},
		{"nl-nl", "nl-NL"},
		{"de", "de"},
		{"!!", DefaultLanguage},
	}
	for _, tt := range tests {
		if got := CanonicalLanguage(tt.in); got != tt.want {
			t.Errorf("CanonicalLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
