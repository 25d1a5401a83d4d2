// Package libraryfs presents the movie link tree and the live playlist as a
// read-only filesystem built in memory from the current catalog and selection,
// so a media server can index them without an export run.
package libraryfs

import (
	"path"
	"sort"
	"strings"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/export"
	"github.com/snapetech/strmsync/internal/selection"
)

// MoviesDir is the top-level directory holding the movie tree.
const MoviesDir = "Movies"

// Node is a directory (children non-nil) or a file (Data).
type Node struct {
	Name     string
	Data     []byte
	children map[string]*Node
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool { return n.children != nil }

// Children returns the entries of a directory sorted by name.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (n *Node) dir(name string) *Node {
	if c, ok := n.children[name]; ok && c.IsDir() {
		return c
	}
	c := &Node{Name: name, children: make(map[string]*Node)}
	n.children[name] = c
	return c
}

func (n *Node) file(name string, data []byte) {
	n.children[name] = &Node{Name: name, Data: data}
}

// Tree is the in-memory filesystem content.
type Tree struct {
	Root  *Node
	Files int
}

// Lookup resolves a slash-separated path relative to the root.
func (t *Tree) Lookup(p string) *Node {
	n := t.Root
	for _, part := range strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/") {
		if part == "" {
			continue
		}
		if !n.IsDir() {
			return nil
		}
		c, ok := n.children[part]
		if !ok {
			return nil
		}
		n = c
	}
	return n
}

// BuildOptions names the generated files.
type BuildOptions struct {
	LinkExt      string // default export.DefaultLinkExt
	PlaylistName string // default "live.m3u"; empty selection for live omits it
}

// Build lays out the selected live channels as one playlist file and the
// selected movies under Movies/{group}/{folder}/{title}.{ext}, using the same
// names an export would write.
func Build(snap catalog.Snapshot, sel *selection.State, opts BuildOptions) *Tree {
	if opts.LinkExt == "" {
		opts.LinkExt = export.DefaultLinkExt
	}
	if opts.PlaylistName == "" {
		opts.PlaylistName = "live.m3u"
	}
	if sel == nil {
		sel = selection.New()
	}
	t := &Tree{Root: &Node{children: make(map[string]*Node)}}

	if sel.Len(catalog.KindLive) > 0 {
		data, _ := export.Playlist(snap.EPGURL, snap.Live, func(g string) bool {
			return sel.Contains(catalog.KindLive, g)
		})
		t.Root.file(opts.PlaylistName, data)
		t.Files++
	}

	movies := t.Root.dir(MoviesDir)
	for _, m := range snap.Movies {
		if !sel.Contains(catalog.KindMovie, m.Group) {
			continue
		}
		title := export.SanitizeName(m.Name)
		if title == "" {
			continue
		}
		dir := movies.dir(export.GroupDirName(m.Group)).dir(export.MovieFolderName(title))
		name := title + "." + opts.LinkExt
		if _, dup := dir.children[name]; !dup {
			t.Files++
		}
		dir.file(name, []byte(m.PlaybackURL))
	}
	return t
}
