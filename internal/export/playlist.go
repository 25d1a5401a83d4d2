package export

import (
	"bytes"
	"strings"

	"github.com/snapetech/strmsync/internal/catalog"
)

// Playlist renders the live playlist for the selected groups and returns it
// with the number of entries. The header points players at the provider's EPG.
func Playlist(epgURL string, streams []catalog.LiveStream, selected func(group string) bool) ([]byte, int) {
	var b bytes.Buffer
	b.WriteString("#EXTM3U")
	if epgURL != "" {
		epg := escapeM3UAttr(epgURL)
		b.WriteString(` url-tvg="` + epg + `" x-tvg-url="` + epg + `"`)
	}
	b.WriteByte('\n')
	n := 0
	for _, s := range streams {
		if !selected(s.Group) {
			continue
		}
		name := oneLine(s.Name)
		b.WriteString(`#EXTINF:-1 tvg-id="` + escapeM3UAttr(s.EPGChannelID) +
			`" tvg-name="` + escapeM3UAttr(name) +
			`" tvg-logo="` + escapeM3UAttr(s.LogoURL) +
			`" group-title="` + escapeM3UAttr(s.Group) + `",` + name + "\n")
		b.WriteString(oneLine(s.PlaybackURL) + "\n")
		n++
	}
	return b.Bytes(), n
}

// escapeM3UAttr makes s safe inside a double-quoted EXTINF attribute.
func escapeM3UAttr(s string) string {
	return strings.ReplaceAll(oneLine(s), `"`, "'")
}

func oneLine(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}
