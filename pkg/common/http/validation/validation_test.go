package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huynhanx03/item-store/pkg/item"
)

type itemsRequest struct {
	Items []item.Item `json:"items" validate:"dive"`
}

func TestIsRequestValid(t *testing.T) {
	tests := []struct {
		name    string
		req     itemsRequest
		want    bool
		wantMsg string
	}{
		{
			name: "valid items",
			req:  itemsRequest{Items: []item.Item{item.New("a", "1", "p")}},
			want: true,
		},
		{
			name: "empty batch",
			req:  itemsRequest{},
			want: true,
		},
		{
			name:    "missing id",
			req:     itemsRequest{Items: []item.Item{item.Ref("a", "")}},
			want:    false,
			wantMsg: "itemsRequest.Items[0].ID failed on 'required'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := IsRequestValid(tt.req)
			assert.Equal(t, tt.want, ok)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, msg)
			}
		})
	}
}
