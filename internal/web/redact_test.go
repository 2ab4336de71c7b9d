package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "key parameter",
			url:  "https://localise.biz/api/export?filter=android&key=secret",
			want: "https://localise.biz/api/export?filter=android&key=xxx",
		},
		{
			name: "no secret",
			url:  "https://localise.biz/api/tags",
			want: "https://localise.biz/api/tags",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, redact(tc.url))
		})
	}
}
