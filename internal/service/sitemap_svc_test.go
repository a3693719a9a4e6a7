package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_dev_v1/internal/model"
)

func TestSitemapService_Build(t *testing.T) {
	env := newTestEnv(t)
	store, _, _ := env.seedDemo(t)
	require.NoError(t, env.db.Create(&model.Product{StoreID: store.ID, Slug: "hidden", Title: "Hidden"}).Error)
	require.NoError(t, env.db.Model(&model.Product{}).Where("slug = ?", "hidden").Update("published", false).Error)

	out, err := NewSitemapService(env.storeRepo, NewStorefrontLinks("https://loja.example/", "")).Build(context.Background())
	require.NoError(t, err)
	xml := string(out)

	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, xml, "<loc>https://loja.example</loc>")
	assert.Contains(t, xml, "<loc>https://loja.example/loja/demo-store</loc>")
	assert.Contains(t, xml, "<loc>https://loja.example/loja/demo-store/iphone-15-pro-max</loc>")
	assert.Contains(t, xml, "<loc>https://loja.example/loja/demo-store/airpods-pro-2</loc>")
	assert.NotContains(t, xml, "hidden")
}
