//go:build linux

package libraryfs

import (
	"context"
	"path"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const entryAttrTimeout = time.Second

// rootNode populates the whole tree as persistent inodes when the mount comes up.
type rootNode struct {
	fs.Inode
	tree *Tree
}

var _ fs.NodeOnAdder = (*rootNode)(nil)
var _ fs.NodeGetattrer = (*rootNode)(nil)

func (r *rootNode) OnAdd(ctx context.Context) {
	r.add(ctx, &r.Inode, r.tree.Root, "/")
}

func (r *rootNode) add(ctx context.Context, parent *fs.Inode, n *Node, p string) {
	for _, c := range n.Children() {
		cp := path.Join(p, c.Name)
		if c.IsDir() {
			ch := parent.NewPersistentInode(ctx, &fs.Inode{}, fs.StableAttr{
				Mode: fuse.S_IFDIR,
				Ino:  inoFromPath(cp),
			})
			parent.AddChild(c.Name, ch, false)
			r.add(ctx, ch, c, cp)
			continue
		}
		file := &fs.MemRegularFile{
			Data: c.Data,
			Attr: fuse.Attr{Mode: 0o444},
		}
		ch := parent.NewPersistentInode(ctx, file, fs.StableAttr{Ino: inoFromPath(cp)})
		parent.AddChild(c.Name, ch, false)
	}
}

func (r *rootNode) Getattr(ctx context.Context, fh fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = fuse.S_IFDIR | 0o555
	return 0
}

// Mount serves t read-only at dir until the returned server is unmounted.
func Mount(dir string, t *Tree, opts MountOptions) (Server, error) {
	to := entryAttrTimeout
	server, err := fs.Mount(dir, &rootNode{tree: t}, &fs.Options{
		EntryTimeout: &to,
		AttrTimeout:  &to,
		MountOptions: fuse.MountOptions{
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug,
			FsName:     "strmsync",
			Name:       "strmsync",
			Options:    []string{"ro"},
		},
	})
	if err != nil {
		return nil, err
	}
	return server, nil
}
