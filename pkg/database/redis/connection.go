package redis

import (
	"github.com/pkg/errors"

	"github.com/huynhanx03/item-store/pkg/settings"
)

// NewConnection creates a Store from configuration and verifies it with a ping.
func NewConnection(cfg *settings.Redis) (*Store, error) {
	store := &Store{
		config: cfg,
	}

	if err := store.connect(); err != nil {
		return nil, errors.Wrap(ErrConnectionFailed, err.Error())
	}

	return store, nil
}
