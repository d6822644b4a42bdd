package hash

import "github.com/cespare/xxhash/v2"

// Zstd reserves dictionary ids below 32768 and at or above 2^31.
const (
	minDictionaryID = 1 << 15
	maxDictionaryID = 1<<31 - 1
)

// ID computes the xxHash64 of the given bytes.
func ID(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// DictionaryID derives a stable zstd dictionary id from the dictionary content.
// The result always falls inside the unreserved id range, so two processes
// loading the same dictionary bytes agree on the id written into frame headers.
func DictionaryID(dict []byte) uint32 {
	span := uint64(maxDictionaryID - minDictionaryID + 1)

	return uint32(minDictionaryID + ID(dict)%span)
}
