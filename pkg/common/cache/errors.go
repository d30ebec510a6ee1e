package cache

import "errors"

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrNoExpiry        = errors.New("key has no expiry")
	ErrInvalidTemplate = errors.New("invalid cache key template")
)
