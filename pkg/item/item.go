// Package item defines the value type served by the item cache.
package item

import (
	"go.uber.org/zap/zapcore"
)

// Item is an immutable cached entity. Two items with the same Type and ID are
// the same logical entity regardless of payload.
type Item struct {
	Type    string `json:"item_type" validate:"required"`
	ID      string `json:"item_id" validate:"required"`
	Payload string `json:"payload,omitempty"`
}

// Identity is the (type, id) pair that names an item.
type Identity struct {
	Type string
	ID   string
}

// New builds an item.
func New(itemType, id, payload string) Item {
	return Item{Type: itemType, ID: id, Payload: payload}
}

// Ref builds a payload-less item, used to look items up by identity.
func Ref(itemType, id string) Item {
	return Item{Type: itemType, ID: id}
}

// Identity returns the identity of the item.
func (i Item) Identity() Identity {
	return Identity{Type: i.Type, ID: i.ID}
}

// Valid reports whether both parts of the identity are set.
func (id Identity) Valid() bool {
	return id.Type != "" && id.ID != ""
}

func (id Identity) String() string {
	return id.Type + ":" + id.ID
}

// MarshalLogObject implements zapcore.ObjectMarshaler. Payloads are summarised by length.
func (i Item) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("item_type", i.Type)
	enc.AddString("item_id", i.ID)
	enc.AddInt("payload_len", len(i.Payload))
	return nil
}

// Items is a batch of items.
type Items []Item

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (items Items) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, it := range items {
		if err := enc.AppendObject(it); err != nil {
			return err
		}
	}
	return nil
}

// Identities returns the identity of every item, in order.
func (items Items) Identities() []Identity {
	ids := make([]Identity, len(items))
	for i, it := range items {
		ids[i] = it.Identity()
	}
	return ids
}

// Unique drops items whose identity already appeared earlier in the batch.
func Unique(items []Item) []Item {
	seen := make(map[Identity]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		id := it.Identity()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Partition splits items into those with a valid identity and those without.
func Partition(items []Item) (valid, invalid []Item) {
	for _, it := range items {
		if it.Identity().Valid() {
			valid = append(valid, it)
		} else {
			invalid = append(invalid, it)
		}
	}
	return valid, invalid
}
