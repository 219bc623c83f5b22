package content_test

import (
	"testing"

	"github.com/bilgisen/radiocast/internal/content"
	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   content.ListQuery
		want content.ListQuery
	}{
		{"defaults", content.ListQuery{}, content.ListQuery{Page: 1, Limit: 10}},
		{"limit clamped", content.ListQuery{Page: 2, Limit: 500}, content.ListQuery{Page: 2, Limit: 100}},
		{"page clamped", content.ListQuery{Page: 1 << 62, Limit: 100}, content.ListQuery{Page: content.MaxPage, Limit: 100}},
		{"filters trimmed", content.ListQuery{Search: " finals ", Category: " Sports"}, content.ListQuery{Page: 1, Limit: 10, Search: "finals", Category: "Sports"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize(content.DefaultLimit, content.MaxLimit)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}
