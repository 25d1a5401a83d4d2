package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/selection"
)

func liveSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		Provider: "p1",
		EPGURL:   "http://h/xmltv.php?username=u&password=p",
		Live: []catalog.LiveStream{
			{Name: "A", Group: "G1", LogoURL: "L", PlaybackURL: "U1", EPGChannelID: "a.tv"},
			{Name: "B", Group: "G2", PlaybackURL: "U2"},
		},
	}
}

func TestExportLive_selectedGroupOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "live.m3u")
	e := &Exporter{Provider: "p1"}
	sel := selection.New()
	sel.Select(catalog.KindLive, "G1")

	r := e.ExportLive(context.Background(), liveSnapshot(), sel, path)
	if r.State != StateSucceeded || r.Written != 1 {
		t.Fatalf("report = %+v", r)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `#EXTM3U url-tvg="http://h/xmltv.php?username=u&password=p" x-tvg-url="http://h/xmltv.php?username=u&password=p"
#EXTINF:-1 tvg-id="a.tv" tvg-name="A" tvg-logo="L" group-title="G1",A
U1
`
	if string(data) != want {
		t.Errorf("playlist:\n%s\nwant:\n%s", data, want)
	}
}

func TestExportLive_nothingMatchingWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.m3u")
	sel := selection.New()
	sel.Select(catalog.KindLive, "Elsewhere")
	r := (&Exporter{Provider: "p1"}).ExportLive(context.Background(), liveSnapshot(), sel, path)
	if r.Written != 0 || r.State != StateSucceeded {
		t.Fatalf("report = %+v", r)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "#EXTM3U") {
		t.Errorf("playlist = %q", data)
	}
}

func TestExportLive_rejections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.m3u")
	sel := selection.New()
	sel.Select(catalog.KindLive, "G1")

	r := (&Exporter{}).ExportLive(context.Background(), liveSnapshot(), sel, path)
	if r.State != StateRejected || !errors.Is(r.Err, ErrNoProvider) {
		t.Errorf("no provider: %+v", r)
	}
	r = (&Exporter{Provider: "p1"}).ExportLive(context.Background(), liveSnapshot(), selection.New(), path)
	if r.State != StateRejected || !errors.Is(r.Err, ErrEmptySelection) {
		t.Errorf("empty selection: %+v", r)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("rejected batch touched the filesystem: %v", err)
	}
}

func TestBuildPlaylist_escapesQuotes(t *testing.T) {
	data, n := Playlist("", []catalog.LiveStream{{Name: `Say "Hi"`, Group: "G", PlaybackURL: "U\n"}}, func(string) bool { return true })
	if n != 1 {
		t.Fatalf("n = %d", n)
	}
	got := string(data)
	if !strings.Contains(got, `tvg-name="Say 'Hi'"`) || !strings.HasPrefix(got, "#EXTM3U\n") || !strings.HasSuffix(got, "\nU\n") {
		t.Errorf("playlist = %q", got)
	}
}

func TestExportLive_writeFailureIsPartiallyFailed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	sel := selection.New()
	sel.Select(catalog.KindLive, "G1")
	r := (&Exporter{Provider: "p1"}).ExportLive(context.Background(), liveSnapshot(), sel, filepath.Join(blocker, "live.m3u"))
	if r.State != StatePartiallyFailed || r.Written != 0 || r.Failed != 1 || r.Err == nil {
		t.Fatalf("report = %+v", r)
	}
}
