package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"99.90", "99.90", true},
		{"99,90", "99.90", true},
		{" 1299,9 ", "1299.90", true},
		{"10", "10.00", true},
		{"0.005", "0.01", true},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.valid, got.Valid, tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, *FormatPrice(got), tt.in)
		}
	}

	for _, bad := range []string{"abc", "-1", "1.299,90", "12,3,4"} {
		_, err := ParsePrice(bad)
		assert.ErrorIs(t, err, ErrInvalidPrice, bad)
	}
}

func TestFormatPrice_Null(t *testing.T) {
	assert.Nil(t, FormatPrice(decimal.NullDecimal{}))
}

func TestToLinks_Trims(t *testing.T) {
	links := ToLinks([]AffiliateLinkInput{{Marketplace: " amazon ", URL: " https://a.example/x ", Note: "n"}})
	require.Len(t, links, 1)
	assert.Equal(t, "amazon", links[0].Marketplace)
	assert.Equal(t, "https://a.example/x", links[0].URL)
}
