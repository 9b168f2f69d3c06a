package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCursorPage(t *testing.T) {
	idOf := func(p *Post) int64 { return p.ID }
	posts := func(ids ...int64) []*Post {
		out := make([]*Post, 0, len(ids))
		for _, id := range ids {
			out = append(out, &Post{ID: id})
		}

		return out
	}

	tests := []struct {
		name       string
		rows       []*Post
		size       int
		wantLen    int
		wantNext   *int64
		wantHasNxt bool
	}{
		{name: "empty page", rows: nil, size: 3, wantLen: 0, wantNext: nil, wantHasNxt: false},
		{name: "short page", rows: posts(9, 8), size: 3, wantLen: 2, wantNext: ptr(8), wantHasNxt: false},
		{name: "exact page", rows: posts(9, 8, 7), size: 3, wantLen: 3, wantNext: ptr(7), wantHasNxt: false},
		{name: "overflow row trimmed", rows: posts(9, 8, 7, 6), size: 3, wantLen: 3, wantNext: ptr(7), wantHasNxt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewCursorPage(tt.rows, tt.size, idOf)

			require.Len(t, page.Items, tt.wantLen)
			assert.Equal(t, tt.wantHasNxt, page.HasNext)
			assert.Equal(t, tt.wantNext, page.NextCursor)
		})
	}
}

func TestCountField_IsValid(t *testing.T) {
	assert.True(t, CountFieldLike.IsValid())
	assert.True(t, CountFieldComment.IsValid())
	assert.True(t, CountFieldView.IsValid())
	assert.False(t, CountField("id; DROP TABLE posts").IsValid())
}

func ptr(v int64) *int64 {
	return &v
}
