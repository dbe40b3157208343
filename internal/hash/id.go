package hash

import "github.com/cespare/xxhash/v2"

// ModuleID computes the xxHash64 identifier of a module name. Archive index
// entries key module streams by this hash.
func ModuleID(name string) uint64 {
	return xxhash.Sum64String(name)
}

// ChunkSum computes the xxHash64 fingerprint of raw chunk bytes. No package
// in this module calls it.
func ChunkSum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
