package indexer

import (
	"net/url"
	"strings"
)

// DefaultContainerExtension is used for movies and episodes the provider lists without one.
const DefaultContainerExtension = "mp4"

// LiveURL is the playback URL of a live stream.
func (c *Client) LiveURL(streamID string) string {
	return c.streamURL("live", streamID, "ts")
}

// MovieURL is the playback URL of a VOD movie.
func (c *Client) MovieURL(streamID, ext string) string {
	return c.streamURL("movie", streamID, ext)
}

// EpisodeURL is the playback URL of a series episode.
func (c *Client) EpisodeURL(episodeID, ext string) string {
	return c.streamURL("series", episodeID, ext)
}

// EPGURL is the provider's XMLTV guide endpoint.
func (c *Client) EPGURL() string {
	return c.creds.Server + "/xmltv.php?username=" + url.QueryEscape(c.creds.Username) +
		"&password=" + url.QueryEscape(c.creds.Secret)
}

func (c *Client) streamURL(kind, id, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = DefaultContainerExtension
	}
	return c.creds.Server + "/" + kind + "/" +
		url.PathEscape(c.creds.Username) + "/" +
		url.PathEscape(c.creds.Secret) + "/" +
		url.PathEscape(id) + "." + ext
}
