package item

import (
	"errors"

	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"
)

// ErrInvalidItem is returned when an item cannot be encoded or a stored record
// cannot be turned back into an item.
var ErrInvalidItem = errors.New("invalid item")

// Codec converts items to and from their stored form.
type Codec interface {
	Marshal(it Item) ([]byte, error)
	Unmarshal(data []byte) (Item, error)
}

// JSONCodec stores items as JSON objects.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

// Marshal encodes an item. Items without a full identity are rejected.
func (JSONCodec) Marshal(it Item) ([]byte, error) {
	if !it.Identity().Valid() {
		return nil, pkgerrors.Wrapf(ErrInvalidItem, "marshal %q", it.Identity().String())
	}
	data, err := json.Marshal(it)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "marshal item")
	}
	return data, nil
}

// Unmarshal decodes a stored item.
func (JSONCodec) Unmarshal(data []byte) (Item, error) {
	var it Item
	if err := json.Unmarshal(data, &it); err != nil {
		return Item{}, pkgerrors.Wrapf(ErrInvalidItem, "unmarshal: %v", err)
	}
	if !it.Identity().Valid() {
		return Item{}, pkgerrors.Wrap(ErrInvalidItem, "unmarshal: missing identity")
	}
	return it, nil
}
