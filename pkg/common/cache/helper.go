package cache

import "time"

// GetManyLocal returns the values resident for keys, in key order, skipping misses.
func GetManyLocal[V any](c LocalCache[string, V], keys []string) []V {
	out := make([]V, 0, len(keys))
	for _, key := range keys {
		if v, ok := c.Get(key); ok {
			out = append(out, v)
		}
	}
	return out
}

// SetManyLocal stores every value at unit cost and returns how many writes were accepted.
func SetManyLocal[V any](c LocalCache[string, V], values map[string]V, ttl time.Duration) int {
	accepted := 0
	for key, v := range values {
		if c.SetWithTTL(key, v, 1, ttl) {
			accepted++
		}
	}
	return accepted
}

// DeleteManyLocal deletes keys from local cache.
func DeleteManyLocal[V any](c LocalCache[string, V], keys []string) {
	for _, key := range keys {
		c.Delete(key)
	}
}
