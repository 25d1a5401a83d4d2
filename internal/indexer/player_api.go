package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/snapetech/strmsync/internal/catalog"
)

// ErrNoEpisodes is the Unavailable reason for a series whose info carries no episode map.
var ErrNoEpisodes = errors.New("indexer: series info has no episodes")

// flexString decodes a JSON string, number, or null into a string. Providers are
// inconsistent about quoting ids, so every id-ish field goes through it.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexString(streamIDStr(v, 0))
	return nil
}

func streamIDStr(v interface{}, fallback int) string {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	}
	if fallback > 0 {
		return strconv.Itoa(fallback)
	}
	return ""
}

// RawItem is one row of get_live_streams, get_vod_streams or get_series, before
// group resolution. Fields not present for a kind stay empty.
type RawItem struct {
	Name               string     `json:"name"`
	CategoryID         flexString `json:"category_id"`
	StreamID           flexString `json:"stream_id"`
	SeriesID           flexString `json:"series_id"`
	StreamIcon         string     `json:"stream_icon"`
	EPGChannelID       flexString `json:"epg_channel_id"`
	ContainerExtension string     `json:"container_extension"`
	Cover              string     `json:"cover"`
	Plot               string     `json:"plot"`
}

var (
	categoryActions = map[catalog.Kind]string{
		catalog.KindLive:   "get_live_categories",
		catalog.KindMovie:  "get_vod_categories",
		catalog.KindSeries: "get_series_categories",
	}
	itemActions = map[catalog.Kind]string{
		catalog.KindLive:   "get_live_streams",
		catalog.KindMovie:  "get_vod_streams",
		catalog.KindSeries: "get_series",
	}
)

// FetchCategories returns the category id to name mapping for kind, in provider order.
func (c *Client) FetchCategories(ctx context.Context, kind catalog.Kind) Response[catalog.Categories] {
	action := categoryActions[kind]
	body, err := c.apiGet(ctx, action, nil)
	if err != nil {
		c.warn("category request failed", action, err)
		return unavailable[catalog.Categories](err)
	}
	var rows []struct {
		CategoryID   flexString `json:"category_id"`
		CategoryName string     `json:"category_name"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		err = fmt.Errorf("%s: decode: %w", action, err)
		c.warn("category response not usable", action, err)
		return unavailable[catalog.Categories](err)
	}
	cats := catalog.NewCategories()
	for _, r := range rows {
		if r.CategoryID == "" {
			continue
		}
		cats.Add(string(r.CategoryID), strings.TrimSpace(r.CategoryName))
	}
	return Response[catalog.Categories]{Data: cats}
}

// FetchItems returns the raw item list for kind in provider order.
func (c *Client) FetchItems(ctx context.Context, kind catalog.Kind) Response[[]RawItem] {
	action := itemActions[kind]
	body, err := c.apiGet(ctx, action, nil)
	if err != nil {
		c.warn("item request failed", action, err)
		return unavailable[[]RawItem](err)
	}
	items, err := decodeItems(body)
	if err != nil {
		err = fmt.Errorf("%s: decode: %w", action, err)
		c.warn("item response not usable", action, err)
		return unavailable[[]RawItem](err)
	}
	return Response[[]RawItem]{Data: items}
}

// decodeItems accepts the usual JSON array and, for panels that key rows by id,
// an object; object rows are ordered by key.
func decodeItems(body []byte) ([]RawItem, error) {
	var list []RawItem
	err := json.Unmarshal(body, &list)
	if err == nil {
		return list, nil
	}
	var m map[string]RawItem
	if json.Unmarshal(body, &m) != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list = make([]RawItem, 0, len(m))
	for _, k := range keys {
		list = append(list, m[k])
	}
	return list, nil
}

type rawEpisode struct {
	ID                 flexString      `json:"id"`
	EpisodeNum         flexString      `json:"episode_num"`
	Title              string          `json:"title"`
	Season             flexString      `json:"season"`
	ContainerExtension string          `json:"container_extension"`
	Info               json.RawMessage `json:"info"`
}

type rawEpisodeInfo struct {
	Plot       string `json:"plot"`
	MovieImage string `json:"movie_image"`
}

type rawSeriesInfo struct {
	Plot   string     `json:"plot"`
	Genre  string     `json:"genre"`
	Rating flexString `json:"rating"`
	Cover  string     `json:"cover"`
}

// FetchSeriesDetail returns seasons and episodes for one series. Season and episode
// order follows the provider's response.
func (c *Client) FetchSeriesDetail(ctx context.Context, seriesID string) Response[*catalog.SeriesDetail] {
	const action = "get_series_info"
	body, err := c.apiGet(ctx, action, url.Values{"series_id": {seriesID}})
	if err != nil {
		c.warn("series info request failed", action, err)
		return unavailable[*catalog.SeriesDetail](err)
	}
	detail, err := decodeSeriesDetail(body)
	if err != nil {
		if !errors.Is(err, ErrNoEpisodes) {
			err = fmt.Errorf("%s %s: decode: %w", action, seriesID, err)
			c.warn("series info not usable", action, err)
		}
		return unavailable[*catalog.SeriesDetail](err)
	}
	return Response[*catalog.SeriesDetail]{Data: detail}
}

func decodeSeriesDetail(body []byte) (*catalog.SeriesDetail, error) {
	var raw struct {
		Info     json.RawMessage `json:"info"`
		Episodes json.RawMessage `json:"episodes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	seasons, err := decodeEpisodes(raw.Episodes)
	if err != nil {
		return nil, err
	}
	detail := &catalog.SeriesDetail{Seasons: seasons}
	if isObject(raw.Info) {
		var info rawSeriesInfo
		if err := json.Unmarshal(raw.Info, &info); err == nil {
			detail.Info = catalog.ProviderInfo{
				Plot:   info.Plot,
				Genre:  info.Genre,
				Rating: string(info.Rating),
				Cover:  info.Cover,
			}
		}
	}
	return detail, nil
}

// decodeEpisodes walks the episodes value token by token so season order survives.
// The usual shape is {"1": [...], "2": [...]}; some panels send a list of lists
// instead, and an empty list or null means there is no episode map.
func decodeEpisodes(raw json.RawMessage) ([]catalog.Season, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrNoEpisodes
	}
	if raw[0] == '[' {
		var lists [][]rawEpisode
		if err := json.Unmarshal(raw, &lists); err != nil {
			return nil, err
		}
		if len(lists) == 0 {
			return nil, ErrNoEpisodes
		}
		seasons := make([]catalog.Season, 0, len(lists))
		for i, eps := range lists {
			num := strconv.Itoa(i + 1)
			if len(eps) > 0 && eps[0].Season != "" {
				num = string(eps[0].Season)
			}
			seasons = append(seasons, catalog.Season{Number: num, Episodes: convertEpisodes(eps)})
		}
		return seasons, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("episodes: unexpected %v", tok)
	}
	var seasons []catalog.Season
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		var eps []rawEpisode
		if err := dec.Decode(&eps); err != nil {
			return nil, fmt.Errorf("season %q: %w", key, err)
		}
		seasons = append(seasons, catalog.Season{Number: key, Episodes: convertEpisodes(eps)})
	}
	if seasons == nil {
		seasons = []catalog.Season{}
	}
	return seasons, nil
}

func convertEpisodes(eps []rawEpisode) []catalog.Episode {
	out := make([]catalog.Episode, 0, len(eps))
	for _, ep := range eps {
		e := catalog.Episode{
			EpisodeNumber:      strings.TrimSpace(string(ep.EpisodeNum)),
			ContainerExtension: strings.TrimSpace(ep.ContainerExtension),
			RemoteID:           string(ep.ID),
			Title:              ep.Title,
		}
		if isObject(ep.Info) {
			var info rawEpisodeInfo
			if json.Unmarshal(ep.Info, &info) == nil {
				e.Plot = info.Plot
				e.ThumbnailURL = info.MovieImage
			}
		}
		out = append(out, e)
	}
	return out
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
