//go:build !linux

package libraryfs

// Mount is unavailable on non-Linux builds because the filesystem depends on go-fuse.
func Mount(dir string, t *Tree, opts MountOptions) (Server, error) {
	return nil, ErrUnsupported
}
