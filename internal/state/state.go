// Package state persists the user's providers, selections and preferences to a
// single JSON file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/text/language"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/provider"
	"github.com/snapetech/strmsync/internal/selection"
)

// DefaultLanguage is used when no (valid) locale is stored.
const DefaultLanguage = "en-US"

// ErrCorrupt is returned by Load alongside defaults when the file exists but cannot be decoded.
var ErrCorrupt = errors.New("state: file is corrupt")

// AppState is everything that survives between runs.
type AppState struct {
	SelectedLive   []string            `json:"selected_live"`
	SelectedMovies []string            `json:"selected_movies"`
	SelectedSeries []string            `json:"selected_series"`
	Providers      []provider.Provider `json:"providers"`
	LastProvider   string              `json:"last_provider"`
	TMDBAPIKey     string              `json:"tmdb_api_key"`
	Language       string              `json:"language"`
}

// Defaults returns the state used when nothing has been saved yet.
func Defaults() AppState {
	return AppState{
		SelectedLive:   []string{},
		SelectedMovies: []string{},
		SelectedSeries: []string{},
		Providers:      []provider.Provider{},
		Language:       DefaultLanguage,
	}
}

// Selection returns the selected groups as a mutable selection.State.
func (s AppState) Selection() *selection.State {
	return selection.FromLists(s.SelectedLive, s.SelectedMovies, s.SelectedSeries)
}

// SetSelection stores sel as sorted lists.
func (s *AppState) SetSelection(sel *selection.State) {
	s.SelectedLive = sel.Set(catalog.KindLive)
	s.SelectedMovies = sel.Set(catalog.KindMovie)
	s.SelectedSeries = sel.Set(catalog.KindSeries)
}

// CanonicalLanguage parses a BCP 47 tag and returns its canonical form, or
// DefaultLanguage when tag is empty or invalid.
func CanonicalLanguage(tag string) string {
	if tag == "" {
		return DefaultLanguage
	}
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLanguage
	}
	return t.String()
}

// Store reads and writes AppState at Path.
type Store struct {
	Path string
}

// NewStore returns a store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the state file. A missing file yields defaults and nil; an unreadable
// or malformed file yields defaults and an error wrapping ErrCorrupt.
func (s *Store) Load() (AppState, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	st := Defaults()
	if err := json.Unmarshal(data, &st); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	normalize(&st)
	return st, nil
}

func normalize(st *AppState) {
	if st.SelectedLive == nil {
		st.SelectedLive = []string{}
	}
	if st.SelectedMovies == nil {
		st.SelectedMovies = []string{}
	}
	if st.SelectedSeries == nil {
		st.SelectedSeries = []string{}
	}
	if st.Providers == nil {
		st.Providers = []provider.Provider{}
	}
	st.Language = CanonicalLanguage(st.Language)
}

// Save writes st atomically (temp file then rename, mode 0600). A sibling lock
// file serialises writers across processes.
func (s *Store) Save(st AppState) error {
	normalize(&st)
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(s.Path))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("state save: mkdir: %w", err)
	}
	lock := flock.New(s.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("state save: lock: %w", err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".state-*.json.tmp")
	if err != nil {
		return fmt.Errorf("state save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("state save: write: %w", writeErr)
		}
		return fmt.Errorf("state save: close: %w", closeErr)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state save: chmod: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state save: rename: %w", err)
	}
	return nil
}
