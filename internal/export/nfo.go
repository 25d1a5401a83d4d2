package export

import (
	"encoding/xml"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/tmdb"
)

const nfoHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes" ?>` + "\n"

// enrichedShowNFO is tvshow.nfo built from TMDB metadata.
type enrichedShowNFO struct {
	XMLName   xml.Name `xml:"tvshow"`
	Title     string   `xml:"title"`
	Plot      string   `xml:"plot"`
	Premiered string   `xml:"premiered"`
	Rating    string   `xml:"rating"`
}

// providerShowNFO is tvshow.nfo built from the provider's own series info.
type providerShowNFO struct {
	XMLName xml.Name `xml:"tvshow"`
	Title   string   `xml:"title"`
	Plot    string   `xml:"plot"`
	Genre   string   `xml:"genre"`
	Rating  string   `xml:"rating"`
	Thumb   string   `xml:"thumb"`
}

type episodeNFO struct {
	XMLName xml.Name `xml:"episodedetails"`
	Title   string   `xml:"title"`
	Plot    string   `xml:"plot"`
	Season  string   `xml:"season"`
	Episode string   `xml:"episode"`
	Thumb   string   `xml:"thumb"`
}

func marshalNFO(v interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(nfoHeader), append(body, '\n')...), nil
}

// showNFO picks exactly one form: enriched when meta is non-nil, provider otherwise.
func showNFO(series catalog.SeriesSummary, info catalog.ProviderInfo, meta *tmdb.SeriesMetadata) ([]byte, error) {
	if meta != nil {
		return marshalNFO(enrichedShowNFO{
			Title:     meta.Title,
			Plot:      meta.Overview,
			Premiered: meta.FirstAirDate,
			Rating:    meta.Rating,
		})
	}
	return marshalNFO(providerShowNFO{
		Title:  series.Name,
		Plot:   firstNonEmpty(info.Plot, series.Plot),
		Genre:  info.Genre,
		Rating: info.Rating,
		Thumb:  firstNonEmpty(info.Cover, series.CoverURL),
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func episodeNFOBytes(season string, ep catalog.Episode) ([]byte, error) {
	return marshalNFO(episodeNFO{
		Title:   ep.Title,
		Plot:    ep.Plot,
		Season:  season,
		Episode: ep.EpisodeNumber,
		Thumb:   ep.ThumbnailURL,
	})
}
