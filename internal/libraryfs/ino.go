package libraryfs

import (
	"hash/fnv"
)

// Stable inode numbers from tree paths so a remount hands out the same inodes.
func inoFromPath(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte("strmsync:" + path))
	return h.Sum64()
}
