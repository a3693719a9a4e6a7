package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/repository"
	"storefront_dev_v1/pkg/clock"
	"storefront_dev_v1/pkg/logger"
)

// CooldownError 冷却中，匹配 ErrTooManyRequests
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return middleware.FormatRetryMessage(e.RetryAfter)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrTooManyRequests
}

// AuthConfig 邮件登录配置
type AuthConfig struct {
	PublicBaseURL string
	TokenTTL      time.Duration // 登录链接有效期
	Cooldown      time.Duration // 同一邮箱两次申请的最小间隔
}

// ==================== AuthService 邮件登录 ====================

// AuthService 邮件链接登录：申请 -> 邮件 -> 校验 -> 签发 JWT
type AuthService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.LoginTokenRepository
	mailer     MailSender
	limiter    *middleware.CooldownLimiter
	clock      clock.Clock
	cfg        AuthConfig
	bcryptCost int
}

// NewAuthService 创建认证服务
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.LoginTokenRepository,
	mailer MailSender,
	limiter *middleware.CooldownLimiter,
	clk clock.Clock,
	cfg AuthConfig,
) *AuthService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if limiter == nil {
		limiter = middleware.NewCooldownLimiter()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		mailer:     mailer,
		limiter:    limiter,
		clock:      clk,
		cfg:        cfg,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// NormalizeEmail 去空白、转小写并校验格式
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// RequestEmailLink 生成一次性登录链接并发送邮件
func (s *AuthService) RequestEmailLink(ctx context.Context, rawEmail string) error {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	key := middleware.EmailLinkKey(email)
	if s.cfg.Cooldown > 0 {
		if res := s.limiter.Check(key, s.cfg.Cooldown); !res.Allowed {
			return &CooldownError{RetryAfter: res.RetryAfter}
		}
	}

	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), s.bcryptCost)
	if err != nil {
		return Internal("hash login token", err)
	}

	now := s.clock.Now()
	record := &model.LoginToken{
		Email:     email,
		TokenHash: string(hash),
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		s.limiter.Reset(key)
		return Internal("save login token", err)
	}

	link := s.verifyURL(email, token)
	msg := MailMessage{
		To:      email,
		Subject: "Your sign-in link",
		Text:    fmt.Sprintf("Click the link below to sign in. It expires in %s.\n\n%s\n", s.cfg.TokenTTL, link),
		HTML:    fmt.Sprintf(`<p>Click the link below to sign in. It expires in %s.</p><p><a href="%s">Sign in</a></p>`, s.cfg.TokenTTL, link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.limiter.Reset(key)
		logger.S().Errorf("[Auth] 登录邮件发送失败 %s: %v", email, err)
		return Internal("send login email", err)
	}

	logger.S().Infof("[Auth] 已发送登录链接: %s", email)
	return nil
}

func (s *AuthService) verifyURL(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/api/auth/verify?" + q.Encode()
}

// VerifyEmailLink 校验登录链接，首次登录自动注册
func (s *AuthService) VerifyEmailLink(ctx context.Context, rawEmail, token string) (*dto.LoginResponse, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil || token == "" {
		return nil, ErrInvalidToken
	}

	now := s.clock.Now()
	candidates, err := s.tokenRepo.ListActive(ctx, email, now)
	if err != nil {
		return nil, Internal("list login tokens", err)
	}

	var matched *model.LoginToken
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].TokenHash), []byte(token)) == nil {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidToken
	}

	// 并发校验同一链接时只有一次成功
	ok, err := s.tokenRepo.MarkUsed(ctx, matched.ID, now)
	if err != nil {
		return nil, Internal("consume login token", err)
	}
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FirstOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, Internal("upsert user", err)
	}
	if err := s.userRepo.MarkLogin(ctx, user.ID, now); err != nil {
		logger.S().Warnf("[Auth] 更新登录时间失败 user=%d: %v", user.ID, err)
	}
	if user.EmailVerifiedAt == nil {
		user.EmailVerifiedAt = &now
	}
	user.LastLoginAt = &now

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, Internal("sign token", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(middleware.GetJWTConfig().AccessTokenTTL),
		User:         toUserInfo(user),
	}, nil
}

// RefreshToken 刷新 Token
func (s *AuthService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || !claims.IsRefresh() {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, Internal("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	accessToken, refreshToken, err := middleware.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, Internal("sign token", err)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.clock.Now().Add(middleware.GetJWTConfig().AccessTokenTTL),
	}, nil
}

// Me 当前用户
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, Internal("get user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserInfo(user), nil
}

// PurgeExpiredTokens 清理过期或已使用的登录令牌，返回删除数量
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if s.cfg.Cooldown > 0 {
		s.limiter.Sweep(s.cfg.Cooldown)
	}
	return n, nil
}

func toUserInfo(u *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		EmailVerifiedAt: u.EmailVerifiedAt,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
	}
}
