package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/model"
)

func strPtr(s string) *string { return &s }

func newTestStoreService(t *testing.T, env *testEnv) (*StoreService, string) {
	t.Helper()
	storage, dir := newLocalStorageService(t)
	return NewStoreService(env.storeRepo, storage, env.resolver, env.clock), dir
}

func TestStoreService_GetOrCreateForUser(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	ctx := context.Background()

	store, err := svc.GetOrCreateForUser(ctx, 7, "Owner.Name@example.com")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("owner-name-%d", testNow.UnixMilli()), store.Slug)
	assert.Equal(t, "Minha Loja", store.Name)
	assert.Equal(t, model.LanguagePTBR, store.Language)

	// 再次访问返回同一店铺
	again, err := svc.GetOrCreateForUser(ctx, 7, "Owner.Name@example.com")
	require.NoError(t, err)
	assert.Equal(t, store.ID, again.ID)
	assert.EqualValues(t, 1, env.count(t, &model.Store{}))
}

func TestStoreService_InitialSlug(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	suffix := fmt.Sprintf("-%d", testNow.UnixMilli())

	assert.Equal(t, "joao-silva-x"+suffix, svc.initialSlug("João.Silva+x@example.com"))
	assert.Equal(t, "ana-lucia"+suffix, svc.initialSlug("ana_lúcia@example.com"))
	assert.Equal(t, "loja"+suffix, svc.initialSlug("+++@example.com"))

	long := svc.initialSlug(strings.Repeat("a", 80) + "@example.com")
	assert.LessOrEqual(t, len(long), maxStoreSlugLength)
	assert.True(t, strings.HasSuffix(long, suffix))
}

func TestStoreService_Update(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	ctx := context.Background()
	store, _, _ := env.seedDemo(t)

	updated, err := svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{
		Name:        strPtr("  Loja Nova "),
		Description: strPtr("Ofertas"),
		Language:    strPtr("en"),
		Theme:       &dto.ThemeRequest{Preset: "dim", ShowPrices: boolPtr(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, store.ID, updated.ID)
	assert.Equal(t, "Loja Nova", updated.Name)
	assert.Equal(t, "Ofertas", updated.Description)
	assert.Equal(t, model.LanguageEN, updated.Language)
	assert.Equal(t, model.ThemePresetDim, updated.ThemeConfig().Preset)
	require.NotNil(t, updated.ThemeConfig().ShowPrices)
	assert.False(t, *updated.ThemeConfig().ShowPrices)
	assert.Equal(t, "demo-store", updated.Slug)
}

func TestStoreService_UpdateRejects(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	ctx := context.Background()
	env.seedDemo(t)
	require.NoError(t, env.db.Create(&model.Store{OwnerID: 2, Slug: "other-store", Name: "Other", Language: model.LanguageEN}).Error)

	var ve *ValidationError

	_, err := svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Slug: strPtr("other-store")})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Name: strPtr("   ")})
	assert.True(t, errors.As(err, &ve))

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Language: strPtr("fr")})
	assert.True(t, errors.As(err, &ve))

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Logo: strPtr("ftp://x/logo.png")})
	assert.True(t, errors.As(err, &ve))

	// 别人的店铺按不存在处理
	_, err = svc.Update(ctx, 1, "other-store", &dto.UpdateStoreRequest{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, ErrStoreNotFound)

	_, err = svc.Update(ctx, 1, "missing", &dto.UpdateStoreRequest{})
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestStoreService_UpdateSlugInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	ctx := context.Background()
	env.seedDemo(t)

	_, err := svc.GetPublic(ctx, "demo-store")
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Slug: strPtr("nova-loja")})
	require.NoError(t, err)

	_, err = svc.GetPublic(ctx, "demo-store")
	assert.ErrorIs(t, err, ErrStoreNotFound)

	pub, err := svc.GetPublic(ctx, "nova-loja")
	require.NoError(t, err)
	assert.Equal(t, "nova-loja", pub.Slug)
}

func TestStoreService_UpdateRefreshesCachedProducts(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	productSvc := NewProductService(env.productRepo, env.resolver)
	links := NewStorefrontLinks("https://loja.example", "")
	ctx := context.Background()
	env.seedDemo(t)

	meta, err := productSvc.OGMetadata(ctx, "demo-store", "iphone-15-pro-max", links)
	require.NoError(t, err)
	assert.Equal(t, "Demo Store", meta.Store.Name)

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Name: strPtr("Loja Nova")})
	require.NoError(t, err)

	meta, err = productSvc.OGMetadata(ctx, "demo-store", "iphone-15-pro-max", links)
	require.NoError(t, err)
	assert.Equal(t, "Loja Nova", meta.Store.Name)

	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Slug: strPtr("nova-loja")})
	require.NoError(t, err)

	product, err := env.resolver.PublishedProduct(ctx, "nova-loja", "iphone-15-pro-max")
	require.NoError(t, err)
	require.NotNil(t, product)
	require.NotNil(t, product.Store)
	assert.Equal(t, "nova-loja", product.Store.Slug)
}

func TestStoreService_LogoUpload(t *testing.T) {
	env := newTestEnv(t)
	svc, dir := newTestStoreService(t, env)
	ctx := context.Background()
	env.seedDemo(t)

	fileOf := func(u string) string {
		return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(u, "http://localhost:8080/uploads/")))
	}

	first, err := svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Logo: strPtr("data:image/png;base64," + tinyPNG)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.Logo, "http://localhost:8080/uploads/storefront/logos/"), first.Logo)
	_, err = os.Stat(fileOf(first.Logo))
	require.NoError(t, err)

	// 换成外部 URL 后旧文件被删除
	second, err := svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Logo: strPtr("https://cdn.example.com/logo.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", second.Logo)
	_, err = os.Stat(fileOf(first.Logo))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// 非图片
	_, err = svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Logo: strPtr("data:image/png;base64,aGVsbG8=")})
	assert.ErrorIs(t, err, ErrInvalidImage)

	// 空串清除
	cleared, err := svc.Update(ctx, 1, "demo-store", &dto.UpdateStoreRequest{Logo: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.Logo)
}

func TestStoreService_PreviewAndPublic(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newTestStoreService(t, env)
	ctx := context.Background()
	env.seedDemo(t)

	preview := svc.Preview(&dto.PreviewRequest{
		Name:  "beta",
		Logo:  "https://cdn.example.com/logo.png",
		Theme: &dto.ThemeRequest{HeaderStyle: "centered", ShowLogo: boolPtr(false)},
	})
	assert.Equal(t, "B", preview.LogoInitial)
	assert.Empty(t, preview.Logo)
	assert.Equal(t, "center", preview.Theme.HeaderAlign)

	// 预览不落库
	store, err := env.storeRepo.GetBySlug(ctx, "demo-store")
	require.NoError(t, err)
	assert.Equal(t, "Demo Store", store.Name)

	pub, err := svc.GetPublic(ctx, "demo-store")
	require.NoError(t, err)
	assert.Equal(t, "D", pub.LogoInitial)
	assert.Equal(t, DefaultPrimaryColor, pub.Theme.PrimaryColor)
	assert.Equal(t, 3, pub.Theme.Columns)

	_, err = svc.GetPublic(ctx, "nope")
	assert.ErrorIs(t, err, ErrStoreNotFound)
}
