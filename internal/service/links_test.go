package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorefrontLinks(t *testing.T) {
	tests := []struct {
		name, base, prefix       string
		home, store, productPage string
	}{
		{"default prefix", "https://loja.example/", "", "https://loja.example", "https://loja.example/loja/demo", "https://loja.example/loja/demo/p1"},
		{"custom prefix", "https://shop.example", "/s/", "https://shop.example", "https://shop.example/s/demo", "https://shop.example/s/demo/p1"},
		{"root", "https://shop.example", "/", "https://shop.example", "https://shop.example/demo", "https://shop.example/demo/p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewStorefrontLinks(tt.base, tt.prefix)
			assert.Equal(t, tt.home, l.Home())
			assert.Equal(t, tt.store, l.Store("demo"))
			assert.Equal(t, tt.productPage, l.Product("demo", "p1"))
		})
	}
}
