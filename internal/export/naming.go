package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	yearToken    = regexp.MustCompile(`[(\[](\d{4})[)\]]`)
)

// SanitizeName removes characters that are illegal in file and directory names
// on common filesystems, then trims surrounding whitespace.
func SanitizeName(name string) string {
	return strings.TrimSpace(illegalChars.ReplaceAllString(name, ""))
}

// MovieFolderName returns the folder for a sanitized movie title: "Title (YYYY)"
// when the title carries a four-digit year in parentheses or brackets, else the
// bare title.
func MovieFolderName(title string) string {
	m := yearToken.FindStringSubmatchIndex(title)
	if m == nil {
		return title
	}
	year, _ := strconv.Atoi(title[m[2]:m[3]])
	bare := strings.Join(strings.Fields(title[:m[0]]+" "+title[m[1]:]), " ")
	return MovieDirName(bare, year)
}

// MovieDirName returns the Plex movie folder name: "MovieName (Year)".
func MovieDirName(title string, year int) string {
	if year > 0 {
		return fmt.Sprintf("%s (%d)", title, year)
	}
	return title
}

// SeasonDirName returns the Plex season folder name: "Season 01".
func SeasonDirName(seasonNum int) string {
	return fmt.Sprintf("Season %02d", seasonNum)
}

// EpisodeBaseName returns "Show - S01E02" for the given numbers.
func EpisodeBaseName(series string, seasonNum, episodeNum int) string {
	return fmt.Sprintf("%s - S%02dE%02d", series, seasonNum, episodeNum)
}

// GroupDirName sanitizes a group label for use as a directory; labels that sanitize
// to nothing land under the Unknown group.
func GroupDirName(group string) string {
	if g := SanitizeName(group); g != "" {
		return g
	}
	return unknownGroupDir
}
