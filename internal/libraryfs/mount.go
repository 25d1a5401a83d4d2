package libraryfs

import "errors"

// ErrUnsupported is returned by Mount on platforms without FUSE support.
var ErrUnsupported = errors.New("libraryfs: mount is only supported on linux builds")

// MountOptions controls the FUSE mount.
type MountOptions struct {
	AllowOther bool
	Debug      bool
}

// Server is a mounted filesystem.
type Server interface {
	Unmount() error
	Wait()
}
