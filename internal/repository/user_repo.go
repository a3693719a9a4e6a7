package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront_dev_v1/internal/model"
)

// ==================== UserRepository 用户仓库 ====================

// UserRepository 用户仓库接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// FirstOrCreateByEmail 按邮箱查找用户，不存在则创建
	FirstOrCreateByEmail(ctx context.Context, email string) (*model.User, error)
	MarkLogin(ctx context.Context, id int64, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FirstOrCreateByEmail(ctx context.Context, email string) (*model.User, error) {
	// 并发首次登录时依赖唯一索引去重
	user := &model.User{Email: email}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, err
	}
	if user.ID != 0 {
		return user, nil
	}
	return r.GetByEmail(ctx, email)
}

func (r *userRepository) MarkLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at":     at,
			"email_verified_at": gorm.Expr("COALESCE(email_verified_at, ?)", at),
		}).Error
}

// ==================== LoginTokenRepository 登录令牌 ====================

// LoginTokenRepository 邮箱登录令牌仓库
type LoginTokenRepository interface {
	Create(ctx context.Context, token *model.LoginToken) error
	// ListActive 列出邮箱下未使用且未过期的令牌，新的在前
	ListActive(ctx context.Context, email string, now time.Time) ([]model.LoginToken, error)
	// MarkUsed 标记已使用，返回是否由本次调用完成标记
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type loginTokenRepository struct {
	db *gorm.DB
}

// NewLoginTokenRepository 创建登录令牌仓库
func NewLoginTokenRepository(db *gorm.DB) LoginTokenRepository {
	return &loginTokenRepository{db: db}
}

func (r *loginTokenRepository) Create(ctx context.Context, token *model.LoginToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *loginTokenRepository) ListActive(ctx context.Context, email string, now time.Time) ([]model.LoginToken, error) {
	var tokens []model.LoginToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND used_at IS NULL AND expires_at > ?", email, now).
		Order("id DESC").
		Limit(5).
		Find(&tokens).Error
	return tokens, err
}

func (r *loginTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.LoginToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	return res.RowsAffected == 1, res.Error
}

func (r *loginTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", before).
		Delete(&model.LoginToken{})
	return res.RowsAffected, res.Error
}
