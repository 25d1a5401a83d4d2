package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// LiveStream is one live channel as listed by the provider.
type LiveStream struct {
	Name         string `json:"name"`
	Group        string `json:"group"`
	PlaybackURL  string `json:"url"`
	LogoURL      string `json:"logo,omitempty"`
	EPGChannelID string `json:"epg_channel_id,omitempty"` // tvg-id in the exported playlist
}

// MovieStream is one VOD movie.
type MovieStream struct {
	Name        string `json:"name"`
	Group       string `json:"group"`
	PlaybackURL string `json:"url"`
}

// SeriesSummary is the catalog-level stub of a show; episodes are fetched lazily at export time.
type SeriesSummary struct {
	Name     string `json:"name"`
	Group    string `json:"group"`
	SeriesID string `json:"series_id"`
	CoverURL string `json:"cover,omitempty"`
	Plot     string `json:"plot,omitempty"`
}

// SeriesDetail is the get_series_info payload for one show.
type SeriesDetail struct {
	Seasons []Season     `json:"seasons"`
	Info    ProviderInfo `json:"info"`
}

// Season groups episodes under the season key the provider used. Number is kept
// verbatim so a malformed key only fails its own episodes.
type Season struct {
	Number   string    `json:"number"`
	Episodes []Episode `json:"episodes"`
}

// ProviderInfo is the provider's own show-level metadata.
type ProviderInfo struct {
	Plot   string `json:"plot,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Rating string `json:"rating,omitempty"`
	Cover  string `json:"cover,omitempty"`
}

// Episode is a single episode entry of a SeriesDetail.
type Episode struct {
	EpisodeNumber      string `json:"episode_num"`
	ContainerExtension string `json:"container_extension,omitempty"`
	RemoteID           string `json:"id"`
	Title              string `json:"title"`
	Plot               string `json:"plot,omitempty"`
	ThumbnailURL       string `json:"thumb,omitempty"`
}

// EpisodeCount returns the total number of episodes across all seasons.
func (d *SeriesDetail) EpisodeCount() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, s := range d.Seasons {
		n += len(s.Episodes)
	}
	return n
}

// Snapshot is one complete fetch of the provider catalog.
type Snapshot struct {
	Provider  string          `json:"provider"`
	EPGURL    string          `json:"epg_url"`
	FetchedAt time.Time       `json:"fetched_at"`
	Live      []LiveStream    `json:"live"`
	Movies    []MovieStream   `json:"movies"`
	Series    []SeriesSummary `json:"series"`
}

// Groups returns the sorted, de-duplicated group labels present for kind.
func (s Snapshot) Groups(kind Kind) []string {
	seen := make(map[string]struct{})
	switch kind {
	case KindLive:
		for _, it := range s.Live {
			seen[it.Group] = struct{}{}
		}
	case KindMovie:
		for _, it := range s.Movies {
			seen[it.Group] = struct{}{}
		}
	case KindSeries:
		for _, it := range s.Series {
			seen[it.Group] = struct{}{}
		}
	default:
		panic(fmt.Sprintf("catalog: unknown kind %d", int(kind)))
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of items of kind.
func (s Snapshot) Count(kind Kind) int {
	switch kind {
	case KindLive:
		return len(s.Live)
	case KindMovie:
		return len(s.Movies)
	case KindSeries:
		return len(s.Series)
	default:
		panic(fmt.Sprintf("catalog: unknown kind %d", int(kind)))
	}
}

// Catalog holds the session's current snapshot. Fetches replace it wholesale.
type Catalog struct {
	mu   sync.RWMutex
	snap Snapshot
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Replace swaps in a freshly fetched snapshot; nothing from the previous one is kept.
func (c *Catalog) Replace(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = s
}

// Snapshot returns a copy of the current snapshot for read-only use.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.snap
	out.Live = append([]LiveStream(nil), c.snap.Live...)
	out.Movies = append([]MovieStream(nil), c.snap.Movies...)
	out.Series = append([]SeriesSummary(nil), c.snap.Series...)
	return out
}

// Save writes the catalog to path as JSON using a temp-file-then-rename strategy
// so readers never see a partially-written file (atomic on most Unix filesystems).
// The file carries playback URLs with embedded credentials, hence 0600.
func (c *Catalog) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.snap, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	dir := filepath.Dir(filepath.Clean(path))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("catalog save: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json.tmp")
	if err != nil {
		return fmt.Errorf("catalog save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpName)
		if writeErr != nil {
			return fmt.Errorf("catalog save: write: %w", writeErr)
		}
		return fmt.Errorf("catalog save: close: %w", closeErr)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog save: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("catalog save: rename: %w", err)
	}
	return nil
}

// Load replaces the catalog with the contents of path (JSON).
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c.Replace(s)
	return nil
}
