package item

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIdentity(t *testing.T) {
	a := New("pic", "1", "A")
	b := New("pic", "1", "B")

	assert.Equal(t, a.Identity(), b.Identity())
	assert.True(t, a.Identity().Valid())
	assert.False(t, Ref("", "1").Identity().Valid())
	assert.False(t, Ref("pic", "").Identity().Valid())
	assert.Equal(t, "pic:1", a.Identity().String())
}

func TestUnique(t *testing.T) {
	in := []Item{New("pic", "1", "A"), New("pic", "2", "B"), New("pic", "1", "C")}

	out := Unique(in)

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Payload, "first occurrence wins")
	assert.Equal(t, "2", out[1].ID)
}

func TestPartition(t *testing.T) {
	valid, invalid := Partition([]Item{Ref("pic", "1"), Ref("", "2"), Ref("pic", "")})

	assert.Len(t, valid, 1)
	assert.Len(t, invalid, 2)
}

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}

	t.Run("round trip keeps identity and payload", func(t *testing.T) {
		data, err := codec.Marshal(New("pic", "1", "A"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"item_type":"pic","item_id":"1","payload":"A"}`, string(data))

		got, err := codec.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, New("pic", "1", "A"), got)
	})

	t.Run("marshal rejects missing identity", func(t *testing.T) {
		_, err := codec.Marshal(Ref("pic", ""))
		assert.True(t, errors.Is(err, ErrInvalidItem))
	})

	t.Run("unmarshal rejects corrupt bytes", func(t *testing.T) {
		_, err := codec.Unmarshal([]byte("{not json"))
		assert.True(t, errors.Is(err, ErrInvalidItem))
	})

	t.Run("unmarshal rejects records without identity", func(t *testing.T) {
		_, err := codec.Unmarshal([]byte(`{"payload":"A"}`))
		assert.True(t, errors.Is(err, ErrInvalidItem))
	})
}

func TestItemsLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	logger.Info("batch", zap.Array("items", Items{New("pic", "1", "secret")}))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	items, ok := fields["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	entry := items[0].(map[string]interface{})
	assert.Equal(t, "pic", entry["item_type"])
	assert.Equal(t, 6, entry["payload_len"])
	assert.NotContains(t, entry, "payload")
}
