package catalog

import (
	"fmt"
	"strings"
)

// Kind selects one of the three independently synced catalog sections.
type Kind int

const (
	KindLive Kind = iota
	KindMovie
	KindSeries
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindLive, KindMovie, KindSeries}

func (k Kind) String() string {
	switch k {
	case KindLive:
		return "live"
	case KindMovie:
		return "movie"
	case KindSeries:
		return "series"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// APIName is the token the player_api uses in get_{token}_categories / get_{token}_streams.
func (k Kind) APIName() string {
	switch k {
	case KindLive:
		return "live"
	case KindMovie:
		return "vod"
	case KindSeries:
		return "series"
	default:
		panic(fmt.Sprintf("catalog: unknown kind %d", int(k)))
	}
}

// ParseKind accepts live, movie(s)/vod and series (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live", "tv", "channels":
		return KindLive, nil
	case "movie", "movies", "vod", "film", "films":
		return KindMovie, nil
	case "series", "show", "shows":
		return KindSeries, nil
	}
	return 0, fmt.Errorf("unknown catalog kind %q (want live, movies or series)", s)
}
