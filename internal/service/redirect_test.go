package service

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDestination(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		utm  UTM
		want string
	}{
		{
			name: "no utm keeps url",
			raw:  "https://amazon.com.br/dp/example",
			want: "https://amazon.com.br/dp/example",
		},
		{
			name: "adds utm_source",
			raw:  "https://amazon.com.br/dp/example",
			utm:  UTM{Source: "newsletter"},
			want: "https://amazon.com.br/dp/example?utm_source=newsletter",
		},
		{
			name: "overwrites existing utm and keeps tag",
			raw:  "https://amazon.com.br/dp/example?tag=aff-20&utm_source=old",
			utm:  UTM{Source: "instagram", Campaign: "black friday"},
			want: "https://amazon.com.br/dp/example?tag=aff-20&utm_source=instagram&utm_campaign=black+friday",
		},
		{
			name: "semicolon pair kept verbatim",
			raw:  "https://shop.example.com/p?id=1;ref=abc",
			utm:  UTM{Source: "newsletter"},
			want: "https://shop.example.com/p?id=1;ref=abc&utm_source=newsletter",
		},
		{
			name: "undecodable pair kept verbatim",
			raw:  "https://shop.example.com/p?q=50%zz&id=7",
			utm:  UTM{Source: "newsletter"},
			want: "https://shop.example.com/p?q=50%zz&id=7&utm_source=newsletter",
		},
		{
			name: "key order unchanged",
			raw:  "https://shop.example.com/p?z=1&a=2",
			utm:  UTM{Source: "newsletter"},
			want: "https://shop.example.com/p?z=1&a=2&utm_source=newsletter",
		},
		{
			name: "utm replaced in place and duplicates dropped",
			raw:  "https://shop.example.com/p?utm_medium=old&x=1&utm_medium=older&y=%2F",
			utm:  UTM{Medium: "cpc", Campaign: "c/1"},
			want: "https://shop.example.com/p?utm_medium=cpc&x=1&y=%2F&utm_campaign=c%2F1",
		},
		{
			name: "fragment preserved",
			raw:  "https://shop.example.com/p?id=1#reviews",
			utm:  UTM{Source: "ig"},
			want: "https://shop.example.com/p?id=1&utm_source=ig#reviews",
		},
		{
			name: "empty values are ignored",
			raw:  "https://shopee.com.br/p/1?utm_medium=keep",
			utm:  UTM{Source: "", Medium: ""},
			want: "https://shopee.com.br/p/1?utm_medium=keep",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDestination(tt.raw, tt.utm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDestination_PreservesAllOtherParams(t *testing.T) {
	raw := "https://mercadolivre.com.br/item?a=1&b=2&b=3&utm_medium=cpc"
	got, err := BuildDestination(raw, UTM{Source: "yt", Medium: "video", Campaign: "c1"})
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "1", q.Get("a"))
	assert.Equal(t, []string{"2", "3"}, q["b"])
	assert.Equal(t, "yt", q.Get("utm_source"))
	assert.Equal(t, "video", q.Get("utm_medium"))
	assert.Equal(t, "c1", q.Get("utm_campaign"))
	assert.Equal(t, "/item", u.Path)
}

func TestBuildDestination_Malformed(t *testing.T) {
	for _, raw := range []string{"://broken", "amazon.com.br/dp/x", "", "http://%zz"} {
		_, err := BuildDestination(raw, UTM{Source: "x"})
		var ie *InternalError
		assert.True(t, errors.As(err, &ie), raw)
	}
}
