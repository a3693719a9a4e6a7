package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/service"
)

// ==================== AuthController 邮件登录 ====================

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

// RequestEmailLink 申请登录链接
// @Summary 发送登录链接
// @Description 向邮箱发送一次性登录链接，同一邮箱有冷却时间
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.EmailLinkRequest true "邮箱"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string "冷却中"
// @Router /api/auth/email-link [post]
func (ctrl *AuthController) RequestEmailLink(c *gin.Context) {
	var req dto.EmailLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := ctrl.authService.RequestEmailLink(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Verify 校验登录链接
// @Summary 校验登录链接
// @Description 消费登录链接，首次登录自动注册，返回 JWT
// @Tags Auth
// @Produce json
// @Param email query string true "邮箱"
// @Param token query string true "链接中的 token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/verify [get]
func (ctrl *AuthController) Verify(c *gin.Context) {
	var req dto.VerifyEmailLinkRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}
	resp, err := ctrl.authService.VerifyEmailLink(c.Request.Context(), req.Email, req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	resp, err := ctrl.authService.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me 当前用户
// @Summary 当前用户信息
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserInfo
// @Failure 401 {object} map[string]string
// @Router /api/auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	user, err := ctrl.authService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
