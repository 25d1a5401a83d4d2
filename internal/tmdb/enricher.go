package tmdb

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoKey marks a lookup skipped because no API key is configured.
	ErrNoKey = errors.New("tmdb: no api key configured")
	// ErrNoMatch marks a search that returned no results.
	ErrNoMatch = errors.New("tmdb: no match")
)

// SeriesMetadata is the enriched show-level record written to tvshow.nfo.
type SeriesMetadata struct {
	Title        string
	Overview     string
	FirstAirDate string
	Rating       string
}

// Lookup is the outcome of one enrichment attempt. Exactly one of Metadata and
// Unavailable is set.
type Lookup struct {
	Metadata    *SeriesMetadata
	Unavailable error
}

// Searcher is the subset of Client the Enricher needs.
type Searcher interface {
	SearchTV(ctx context.Context, query string) (*SearchResponse, error)
	GetTVDetails(ctx context.Context, showID int64) (*Result, error)
}

// Enricher resolves catalog series names to TMDB metadata.
type Enricher struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewEnricher wraps s. A nil s yields an enricher whose lookups are always ErrNoKey.
func NewEnricher(s Searcher, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{searcher: s, logger: logger}
}

// FromKey builds an enricher for apiKey; an empty key gives a disabled enricher.
func FromKey(apiKey, baseURL, language string, logger *zap.Logger, opts ...Option) *Enricher {
	client, err := New(apiKey, baseURL, language, opts...)
	if err != nil {
		return NewEnricher(nil, logger)
	}
	return NewEnricher(client, logger)
}

// Enabled reports whether lookups can reach TMDB at all.
func (e *Enricher) Enabled() bool { return e != nil && e.searcher != nil }

// LookupSeries searches by the year-stripped title and fetches details of the first hit.
func (e *Enricher) LookupSeries(ctx context.Context, title string) Lookup {
	if !e.Enabled() {
		return Lookup{Unavailable: ErrNoKey}
	}
	query := StripYear(title)
	res, err := e.searcher.SearchTV(ctx, query)
	if err != nil {
		e.logger.Debug("tmdb search failed", zap.String("query", query), zap.Error(err))
		return Lookup{Unavailable: err}
	}
	if len(res.Results) == 0 {
		return Lookup{Unavailable: ErrNoMatch}
	}
	details, err := e.searcher.GetTVDetails(ctx, res.Results[0].ID)
	if err != nil {
		e.logger.Debug("tmdb details failed", zap.Int64("show_id", res.Results[0].ID), zap.Error(err))
		return Lookup{Unavailable: err}
	}
	return Lookup{Metadata: &SeriesMetadata{
		Title:        details.Name,
		Overview:     details.Overview,
		FirstAirDate: details.FirstAirDate,
		Rating:       strconv.FormatFloat(details.VoteAverage, 'f', -1, 64),
	}}
}

var yearToken = regexp.MustCompile(`[(\[]\d{4}[)\]]`)

// StripYear removes "(YYYY)" and "[YYYY]" tokens from a title and trims it.
func StripYear(title string) string {
	return strings.TrimSpace(yearToken.ReplaceAllString(title, ""))
}
