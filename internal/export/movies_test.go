package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/selection"
)

func TestExportMovies_layout(t *testing.T) {
	root := t.TempDir()
	snap := catalog.Snapshot{Movies: []catalog.MovieStream{
		{Name: "Inception (2010)", Group: "Sci/Fi", PlaybackURL: "http://h/movie/u/p/1.mkv"},
		{Name: "Movie Title", Group: "Sci/Fi", PlaybackURL: "http://h/movie/u/p/2.mp4"},
		{Name: "???", Group: "Sci/Fi", PlaybackURL: "http://h/movie/u/p/3.mp4"},
		{Name: "Skipped", Group: "Other", PlaybackURL: "http://h/movie/u/p/4.mp4"},
	}}
	sel := selection.New()
	sel.Select(catalog.KindMovie, "Sci/Fi")

	r := (&Exporter{Provider: "p1"}).ExportMovies(context.Background(), snap, sel, root)
	if r.Written != 2 || r.Considered != 3 || r.Failed != 1 || r.State != StateSucceeded {
		t.Fatalf("report = %+v", r)
	}
	for path, want := range map[string]string{
		"SciFi/Inception (2010)/Inception (2010).strm": "http://h/movie/u/p/1.mkv",
		"SciFi/Movie Title/Movie Title.strm":           "http://h/movie/u/p/2.mp4",
	} {
		got, err := os.ReadFile(filepath.Join(root, path))
		if err != nil {
			t.Errorf("%s: %v", path, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "Other")); !os.IsNotExist(err) {
		t.Error("unselected group was exported")
	}
}

func TestExportMovies_idempotentAndCustomExt(t *testing.T) {
	root := t.TempDir()
	snap := catalog.Snapshot{Movies: []catalog.MovieStream{{Name: "Heat", Group: "G", PlaybackURL: "old"}}}
	sel := selection.New()
	sel.Select(catalog.KindMovie, "G")
	e := &Exporter{Provider: "p1", LinkExt: "url"}
	e.ExportMovies(context.Background(), snap, sel, root)
	snap.Movies[0].PlaybackURL = "new"
	r := e.ExportMovies(context.Background(), snap, sel, root)
	if r.State != StateSucceeded || r.Written != 1 {
		t.Fatalf("report = %+v", r)
	}
	got, err := os.ReadFile(filepath.Join(root, "G", "Heat", "Heat.url"))
	if err != nil || string(got) != "new" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestExportMovies_unwritableRootCountsFailures(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "file")
	if err := os.WriteFile(root, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	snap := catalog.Snapshot{Movies: []catalog.MovieStream{{Name: "A", Group: "G"}, {Name: "B", Group: "G"}}}
	sel := selection.New()
	sel.Select(catalog.KindMovie, "G")
	r := (&Exporter{Provider: "p1"}).ExportMovies(context.Background(), snap, sel, root)
	if r.Written != 0 || r.Failed != 2 || r.State != StateSucceeded {
		t.Fatalf("report = %+v", r)
	}
}

func TestExportMovies_itemFailureKeepsBatchSucceeded(t *testing.T) {
	root := t.TempDir()
	snap := catalog.Snapshot{Movies: []catalog.MovieStream{
		{Name: "Heat", Group: "G", PlaybackURL: "http://h/movie/u/p/1.mp4"},
		{Name: "???", Group: "G", PlaybackURL: "http://h/movie/u/p/2.mp4"},
	}}
	sel := selection.New()
	sel.Select(catalog.KindMovie, "G")
	r := (&Exporter{Provider: "p1"}).ExportMovies(context.Background(), snap, sel, root)
	if r.State != StateSucceeded || r.Written != 1 || r.Err != nil {
		t.Fatalf("report = %+v", r)
	}
	if got, want := r.Summary(), "1 movies exported (1 failed)"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
