package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/model"
)

func TestProductService_Create(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, _, _ := env.seedDemo(t)

	p, err := svc.Create(ctx, store.ID, &dto.CreateProductRequest{
		Title: " Galaxy S24 ",
		Slug:  "galaxy-s24",
		Price: "4599,9",
		Links: []dto.AffiliateLinkInput{
			{Marketplace: "amazon", URL: "https://amazon.com.br/dp/s24"},
			{Marketplace: "shopee", URL: "https://shopee.com.br/s24", Note: "frete grátis"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Galaxy S24", p.Title)
	assert.True(t, p.Published)
	require.NotNil(t, dto.FormatPrice(p.Price))
	assert.Equal(t, "4599.90", *dto.FormatPrice(p.Price))
	require.Len(t, p.Links, 2)
	assert.Equal(t, "shopee", p.Links[1].Marketplace)

	draft, err := svc.Create(ctx, store.ID, &dto.CreateProductRequest{Title: "Rascunho", Slug: "rascunho", Published: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, draft.Published)
	assert.False(t, draft.Price.Valid)
}

func TestProductService_CreateRejects(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, _, _ := env.seedDemo(t)
	before := env.count(t, &model.Product{})

	cases := []struct {
		name string
		req  dto.CreateProductRequest
		want error
	}{
		{"slug taken", dto.CreateProductRequest{Title: "x", Slug: "airpods-pro-2"}, ErrSlugTaken},
		{"bad slug", dto.CreateProductRequest{Title: "x", Slug: "Bad Slug"}, nil},
		{"empty title", dto.CreateProductRequest{Title: "  ", Slug: "ok"}, nil},
		{"mixed separators", dto.CreateProductRequest{Title: "x", Slug: "ok", Price: "1.299,90"}, nil},
		{"negative price", dto.CreateProductRequest{Title: "x", Slug: "ok", Price: "-1"}, nil},
		{"bad link", dto.CreateProductRequest{Title: "x", Slug: "ok", Links: []dto.AffiliateLinkInput{{Marketplace: "amazon", URL: "amazon.com"}}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, store.ID, &tc.req)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
				return
			}
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), err.Error())
		})
	}
	assert.Equal(t, before, env.count(t, &model.Product{}))
}

func TestProductService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	_, iphone, _ := env.seedDemo(t)

	other := &model.Store{OwnerID: 2, Slug: "other-store", Name: "Other", Language: model.LanguageEN}
	require.NoError(t, env.db.Create(other).Error)

	_, err := svc.Get(ctx, other.ID, iphone.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.Update(ctx, other.ID, iphone.ID, &dto.UpdateProductRequest{Title: strPtr("hack")})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, iphone.ID), ErrProductNotFound)
	_, err = svc.ReplaceLinks(ctx, other.ID, iphone.ID, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, iphone, _ := env.seedDemo(t)

	// 只改标题，链接不动
	p, err := svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{Title: strPtr("iPhone 15")})
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", p.Title)
	assert.Len(t, p.Links, 2)
	assert.Equal(t, "9999.00", *dto.FormatPrice(p.Price))

	// 链接整体替换，价格清空
	links := []dto.AffiliateLinkInput{{Marketplace: "magalu", URL: "https://magazineluiza.com.br/p/1"}}
	p, err = svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{Price: strPtr(""), Links: &links})
	require.NoError(t, err)
	require.Len(t, p.Links, 1)
	assert.Equal(t, "magalu", p.Links[0].Marketplace)
	assert.False(t, p.Price.Valid)
	assert.EqualValues(t, 1, env.count(t, &model.AffiliateLink{}))

	_, err = svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{Slug: strPtr("airpods-pro-2")})
	assert.ErrorIs(t, err, ErrSlugTaken)

	var ve *ValidationError
	_, err = svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{ImageURL: strPtr("javascript:alert(1)")})
	assert.True(t, errors.As(err, &ve))
}

func TestProductService_UpdateInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, iphone, _ := env.seedDemo(t)

	_, err := svc.GetPublic(ctx, "demo-store", "iphone-15-pro-max")
	require.NoError(t, err)

	_, err = svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{Slug: strPtr("iphone-15"), Published: boolPtr(true)})
	require.NoError(t, err)
	_, err = svc.GetPublic(ctx, "demo-store", "iphone-15-pro-max")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.GetPublic(ctx, "demo-store", "iphone-15")
	require.NoError(t, err)

	// 下架后前台不可见
	_, err = svc.Update(ctx, store.ID, iphone.ID, &dto.UpdateProductRequest{Published: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.GetPublic(ctx, "demo-store", "iphone-15")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_ReplaceLinksAndDelete(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, iphone, _ := env.seedDemo(t)

	p, err := svc.ReplaceLinks(ctx, store.ID, iphone.ID, []dto.AffiliateLinkInput{})
	require.NoError(t, err)
	assert.Empty(t, p.Links)

	// 埋点数据在商品删除后保留
	require.NoError(t, env.db.Create(&model.ClickEvent{StoreID: store.ID, ProductID: iphone.ID, Marketplace: "amazon", CreatedAt: testNow}).Error)
	require.NoError(t, svc.Delete(ctx, store.ID, iphone.ID))
	_, err = svc.Get(ctx, store.ID, iphone.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.EqualValues(t, 1, env.count(t, &model.ClickEvent{}))
}

func TestProductService_Lists(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	store, _, _ := env.seedDemo(t)
	_, err := svc.Create(ctx, store.ID, &dto.CreateProductRequest{Title: "Hidden", Slug: "hidden", Published: boolPtr(false)})
	require.NoError(t, err)

	dash, err := svc.List(ctx, store.ID, dto.ProductListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Total)
	assert.Equal(t, 20, dash.Limit)

	found, err := svc.List(ctx, store.ID, dto.ProductListQuery{Search: "airpods"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "airpods-pro-2", found.Items[0].Slug)

	pub, err := svc.ListPublic(ctx, "demo-store", dto.ProductListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, pub.Total)
	assert.Equal(t, 12, pub.Limit)
	for _, item := range pub.Items {
		assert.True(t, item.Published)
	}

	_, err = svc.ListPublic(ctx, "nope", dto.ProductListQuery{})
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestProductService_OGMetadata(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(env.productRepo, env.resolver)
	ctx := context.Background()
	env.seedDemo(t)

	meta, err := svc.OGMetadata(ctx, "demo-store", "iphone-15-pro-max", NewStorefrontLinks("https://loja.example/", ""))
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro Max", meta.Title)
	require.NotNil(t, meta.Price)
	assert.Equal(t, "9999.00", *meta.Price)
	assert.Equal(t, "https://loja.example/loja/demo-store/iphone-15-pro-max", meta.URL)
	assert.Equal(t, "Demo Store", meta.Store.Name)
	assert.Equal(t, "demo-store", meta.Store.Slug)

	_, err = svc.OGMetadata(ctx, "", "iphone-15-pro-max", NewStorefrontLinks("https://loja.example", ""))
	assert.ErrorIs(t, err, ErrMissingParams)
	_, err = svc.OGMetadata(ctx, "demo-store", "nope", NewStorefrontLinks("https://loja.example", ""))
	assert.ErrorIs(t, err, ErrProductNotFound)
}
