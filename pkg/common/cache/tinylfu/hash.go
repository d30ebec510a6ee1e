package tinylfu

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Key lists the key types the cache can hash.
type Key interface {
	uint64 | string | []byte | byte | int | uint | int32 | uint32 | int64
}

var conflictSeed = maphash.MakeSeed()

// keyToHash returns the slot hash and a second, independent hash used to
// detect collisions. Integer keys are their own hash and carry no conflict value.
func keyToHash[K Key](key K) (uint64, uint64) {
	switch k := any(key).(type) {
	case uint64:
		return k, 0
	case string:
		return xxhash.Sum64String(k), maphash.String(conflictSeed, k)
	case []byte:
		return xxhash.Sum64(k), maphash.Bytes(conflictSeed, k)
	case byte:
		return uint64(k), 0
	case uint:
		return uint64(k), 0
	case int:
		return uint64(k), 0
	case int32:
		return uint64(k), 0
	case uint32:
		return uint64(k), 0
	case int64:
		return uint64(k), 0
	default:
		panic("Key type not supported")
	}
}
