// Package tmdb looks up series metadata on The Movie Database (v3 API).
//
// Lookups are best effort: the exporter asks for a show by title and falls
// back to the provider's own metadata whenever the Lookup is unavailable.
// No retries and no pacing are applied.
package tmdb
