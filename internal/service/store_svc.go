package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/clock"
	"storefront_dev_v1/pkg/logger"
)

const (
	defaultStoreName   = "Minha Loja"
	defaultSlugPrefix  = "loja"
	maxStoreSlugLength = 50
)

// ==================== StoreService 店铺服务 ====================

// StoreService 店铺设置与前台店铺信息
type StoreService struct {
	storeRepo repository.StoreRepository
	storage   *StorageService
	resolver  *CatalogResolver
	clock     clock.Clock
}

// NewStoreService 创建店铺服务
func NewStoreService(storeRepo repository.StoreRepository, storage *StorageService, resolver *CatalogResolver, clk clock.Clock) *StoreService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &StoreService{
		storeRepo: storeRepo,
		storage:   storage,
		resolver:  resolver,
		clock:     clk,
	}
}

// GetOrCreateForUser 获取用户的店铺，没有则创建默认店铺
func (s *StoreService) GetOrCreateForUser(ctx context.Context, userID int64, email string) (*model.Store, error) {
	store, err := s.storeRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, Internal("get store", err)
	}
	if store != nil {
		return store, nil
	}

	store = &model.Store{
		OwnerID:  userID,
		Slug:     s.initialSlug(email),
		Name:     defaultStoreName,
		Theme:    datatypes.NewJSONType(model.ThemeConfig{}),
		Language: model.DefaultLanguage,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发首次访问：另一个请求已经建好
			existing, getErr := s.storeRepo.GetByOwnerID(ctx, userID)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, Internal("create store", err)
	}

	logger.S().Infof("[Store] 为用户 %d 创建店铺 %s", userID, store.Slug)
	return store, nil
}

// initialSlug <邮箱前缀>-<毫秒时间戳>
func (s *StoreService) initialSlug(email string) string {
	suffix := fmt.Sprintf("-%d", s.clock.Now().UnixMilli())

	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	prefix := slugify(local)
	if prefix == "" {
		prefix = defaultSlugPrefix
	}
	if max := maxStoreSlugLength - len(suffix); len(prefix) > max {
		prefix = strings.Trim(prefix[:max], "-")
	}
	return prefix + suffix
}

// slugify 音译为 ASCII 后转小写，只保留 [a-z0-9-]
func slugify(s string) string {
	return slug.Make(strings.ReplaceAll(s, "_", "-"))
}

// GetOwned 按 slug 获取当前用户的店铺；不属于该用户时按不存在处理
func (s *StoreService) GetOwned(ctx context.Context, userID int64, slug string) (*model.Store, error) {
	store, err := s.storeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, Internal("get store", err)
	}
	if store == nil || store.OwnerID != userID {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

// Update 部分更新店铺设置
func (s *StoreService) Update(ctx context.Context, userID int64, slug string, req *dto.UpdateStoreRequest) (*model.Store, error) {
	store, err := s.GetOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("Name is required")
		}
		fields["name"] = name
	}

	if req.Slug != nil && *req.Slug != store.Slug {
		newSlug := strings.TrimSpace(*req.Slug)
		if !middleware.IsSlug(newSlug) || len(newSlug) > maxStoreSlugLength {
			return nil, NewValidationError("Invalid slug")
		}
		ok, err := s.storeRepo.IsSlugAvailable(ctx, newSlug, store.ID)
		if err != nil {
			return nil, Internal("check slug", err)
		}
		if !ok {
			return nil, ErrSlugTaken
		}
		fields["slug"] = newSlug
	}

	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}

	if req.Language != nil {
		switch lang := model.Language(*req.Language); lang {
		case model.LanguageEN, model.LanguagePTBR:
			fields["language"] = lang
		default:
			return nil, NewValidationError("Invalid language")
		}
	}

	if req.Theme != nil {
		fields["theme"] = datatypes.NewJSONType(req.Theme.ToModel())
	}

	var uploadedLogo string
	if req.Logo != nil && *req.Logo != store.Logo {
		raw := strings.TrimSpace(*req.Logo)
		logo, err := s.resolveLogo(ctx, store.ID, raw)
		if err != nil {
			return nil, err
		}
		if IsDataURL(raw) {
			uploadedLogo = logo
		}
		fields["logo"] = logo
	}

	if err := s.storeRepo.UpdateFields(ctx, store.ID, fields); err != nil {
		if uploadedLogo != "" {
			_ = s.storage.Delete(ctx, uploadedLogo)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, Internal("update store", err)
	}

	// 旧 logo 被替换后清理
	if _, changed := fields["logo"]; changed && store.Logo != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, store.Logo); err != nil {
			logger.S().Warnf("[Store] 删除旧 logo 失败 %s: %v", store.Logo, err)
		}
	}

	newSlug, _ := fields["slug"].(string)
	s.resolver.InvalidateStore(ctx, store.Slug, newSlug)
	s.resolver.InvalidateStoreProducts(ctx, store.ID)

	updated, err := s.storeRepo.GetByID(ctx, store.ID)
	if err != nil {
		return nil, Internal("reload store", err)
	}
	return updated, nil
}

// resolveLogo data URL 上传后换成 URL；普通 URL 必须是 http(s)；空串表示清除
func (s *StoreService) resolveLogo(ctx context.Context, storeID int64, logo string) (string, error) {
	if logo == "" {
		return "", nil
	}
	if IsDataURL(logo) {
		if s.storage == nil {
			return "", Internal("upload logo", errors.New("storage not configured"))
		}
		return s.storage.SaveDataURL(ctx, logo, fmt.Sprintf("logos/%d", storeID))
	}
	if !isHTTPURL(logo) {
		return "", NewValidationError("Invalid logo URL")
	}
	return logo, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Preview 外观预览，不落库
func (s *StoreService) Preview(req *dto.PreviewRequest) StorePreview {
	return BuildPreview(req.Name, req.Description, req.Logo, req.Theme.ToModel())
}

// ==================== 前台 ====================

// PublicStore 前台店铺信息
type PublicStore struct {
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Logo        string         `json:"logo,omitempty"`
	LogoInitial string         `json:"logoInitial"`
	Language    model.Language `json:"language"`
	Theme       ThemeView      `json:"theme"`
}

// GetPublic 前台按 slug 查询店铺
func (s *StoreService) GetPublic(ctx context.Context, slug string) (*PublicStore, error) {
	store, err := s.resolver.Store(ctx, slug)
	if err != nil {
		return nil, Internal("get store", err)
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}

	preview := BuildPreview(store.Name, store.Description, store.Logo, store.ThemeConfig())
	return &PublicStore{
		Slug:        store.Slug,
		Name:        preview.Name,
		Description: preview.Description,
		Logo:        preview.Logo,
		LogoInitial: preview.LogoInitial,
		Language:    store.Language,
		Theme:       preview.Theme,
	}, nil
}
