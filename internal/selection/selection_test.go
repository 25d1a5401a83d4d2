package selection

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/snapetech/strmsync/internal/catalog"
)

func TestSelectDeselect(t *testing.T) {
	s := New()
	s.Select(catalog.KindMovie, "Action", "Drama", "", "Action")
	if got := s.Set(catalog.KindMovie); !reflect.DeepEqual(got, []string{"Action", "Drama"}) {
		t.Fatalf("Set = %v", got)
	}
	if s.Len(catalog.KindLive) != 0 || s.Len(catalog.KindSeries) != 0 {
		t.Error("other kinds should be untouched")
	}
	s.Deselect(catalog.KindMovie, "Action", "Missing")
	if s.Contains(catalog.KindMovie, "Action") || !s.Contains(catalog.KindMovie, "Drama") {
		t.Errorf("after deselect: %v", s.Set(catalog.KindMovie))
	}
	s.Replace(catalog.KindMovie, []string{"Kids"})
	if got := s.Set(catalog.KindMovie); !reflect.DeepEqual(got, []string{"Kids"}) {
		t.Errorf("Replace = %v", got)
	}
	s.Clear(catalog.KindMovie)
	if s.Len(catalog.KindMovie) != 0 {
		t.Error("Clear left groups behind")
	}
}

func TestZeroValueUsable(t *testing.T) {
	var s State
	s.Select(catalog.KindLive, "News")
	if !s.Contains(catalog.KindLive, "News") {
		t.Fatal("zero State should lazily allocate")
	}
}

func TestStaleLabelsKeptUntilPrune(t *testing.T) {
	s := FromLists([]string{"News", "Gone"}, nil, nil)
	known := []string{"News", "Sports"}
	if got := s.Stale(catalog.KindLive, known); !reflect.DeepEqual(got, []string{"Gone"}) {
		t.Fatalf("Stale = %v", got)
	}
	if !s.Contains(catalog.KindLive, "Gone") {
		t.Fatal("Stale must not modify the selection")
	}
	if got := s.Prune(catalog.KindLive, known); !reflect.DeepEqual(got, []string{"Gone"}) {
		t.Fatalf("Prune = %v", got)
	}
	if got := s.Set(catalog.KindLive); !reflect.DeepEqual(got, []string{"News"}) {
		t.Errorf("after prune: %v", got)
	}
}

func TestJSONSortedLists(t *testing.T) {
	s := FromLists([]string{"b", "a"}, []string{"z"}, nil)
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"live":["a","b"],"movies":["z"],"series":[]}` {
		t.Fatalf("json = %s", data)
	}
	var back State
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Set(catalog.KindLive), []string{"a", "b"}) || back.Len(catalog.KindSeries) != 0 {
		t.Errorf("decoded = %+v", back)
	}
}

func TestUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown kind")
		}
	}()
	New().Len(catalog.Kind(42))
}
