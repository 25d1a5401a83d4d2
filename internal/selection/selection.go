// Package selection tracks which category groups the user picked for export, per kind.
package selection

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/snapetech/strmsync/internal/catalog"
)

// State holds the selected group labels per kind. Labels are kept even when the
// current catalog no longer lists them; only Prune drops them.
type State struct {
	Live   map[string]struct{}
	Movies map[string]struct{}
	Series map[string]struct{}
}

// New returns an empty selection.
func New() *State {
	return &State{
		Live:   make(map[string]struct{}),
		Movies: make(map[string]struct{}),
		Series: make(map[string]struct{}),
	}
}

// FromLists builds a selection from persisted lists.
func FromLists(live, movies, series []string) *State {
	s := New()
	s.Select(catalog.KindLive, live...)
	s.Select(catalog.KindMovie, movies...)
	s.Select(catalog.KindSeries, series...)
	return s
}

func (s *State) set(kind catalog.Kind) map[string]struct{} {
	var m *map[string]struct{}
	switch kind {
	case catalog.KindLive:
		m = &s.Live
	case catalog.KindMovie:
		m = &s.Movies
	case catalog.KindSeries:
		m = &s.Series
	default:
		panic(fmt.Sprintf("selection: unknown kind %d", int(kind)))
	}
	if *m == nil {
		*m = make(map[string]struct{})
	}
	return *m
}

// Set returns the selected groups of kind, sorted.
func (s *State) Set(kind catalog.Kind) []string {
	return sortedKeys(s.set(kind))
}

// Contains reports whether group is selected for kind.
func (s *State) Contains(kind catalog.Kind, group string) bool {
	_, ok := s.set(kind)[group]
	return ok
}

// Select adds groups to kind's selection. Empty labels are ignored.
func (s *State) Select(kind catalog.Kind, groups ...string) {
	m := s.set(kind)
	for _, g := range groups {
		if g != "" {
			m[g] = struct{}{}
		}
	}
}

// Deselect removes groups from kind's selection.
func (s *State) Deselect(kind catalog.Kind, groups ...string) {
	m := s.set(kind)
	for _, g := range groups {
		delete(m, g)
	}
}

// Clear empties kind's selection.
func (s *State) Clear(kind catalog.Kind) {
	m := s.set(kind)
	for g := range m {
		delete(m, g)
	}
}

// Replace sets kind's selection to exactly groups.
func (s *State) Replace(kind catalog.Kind, groups []string) {
	s.Clear(kind)
	s.Select(kind, groups...)
}

// Len returns the number of groups selected for kind.
func (s *State) Len(kind catalog.Kind) int {
	return len(s.set(kind))
}

// Prune drops the groups of kind that are not in known and returns them, sorted.
func (s *State) Prune(kind catalog.Kind, known []string) []string {
	keep := make(map[string]struct{}, len(known))
	for _, k := range known {
		keep[k] = struct{}{}
	}
	m := s.set(kind)
	var dropped []string
	for g := range m {
		if _, ok := keep[g]; !ok {
			dropped = append(dropped, g)
			delete(m, g)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Stale returns the selected groups of kind missing from known, without changing anything.
func (s *State) Stale(kind catalog.Kind, known []string) []string {
	keep := make(map[string]struct{}, len(known))
	for _, k := range known {
		keep[k] = struct{}{}
	}
	var out []string
	for g := range s.set(kind) {
		if _, ok := keep[g]; !ok {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

type jsonState struct {
	Live   []string `json:"live"`
	Movies []string `json:"movies"`
	Series []string `json:"series"`
}

// MarshalJSON encodes each set as a sorted list.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonState{
		Live:   s.Set(catalog.KindLive),
		Movies: s.Set(catalog.KindMovie),
		Series: s.Set(catalog.KindSeries),
	})
}

// UnmarshalJSON decodes the list form written by MarshalJSON.
func (s *State) UnmarshalJSON(b []byte) error {
	var js jsonState
	if err := json.Unmarshal(b, &js); err != nil {
		return err
	}
	*s = *FromLists(js.Live, js.Movies, js.Series)
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
