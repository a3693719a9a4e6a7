package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/middleware"
	"storefront_dev_v1/internal/model"
	"storefront_dev_v1/internal/service"
)

// ==================== StoreController 店铺设置 ====================

type StoreController struct {
	storeService *service.StoreService
}

func NewStoreController(storeService *service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

// currentStore 当前登录用户的店铺（首次访问时创建）
func currentStore(c *gin.Context, stores *service.StoreService) (*model.Store, bool) {
	store, err := stores.GetOrCreateForUser(c.Request.Context(), middleware.GetUserID(c), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return store, true
}

// GetMine 当前用户的店铺
// @Summary 我的店铺
// @Description 返回当前用户的店铺，不存在时自动创建
// @Tags Store
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StoreResponse
// @Failure 401 {object} map[string]string
// @Router /api/user/store [get]
func (ctrl *StoreController) GetMine(c *gin.Context) {
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToStoreResponse(store))
}

// Update 更新店铺设置
// @Summary 更新店铺设置
// @Description 部分更新；logo 可传 URL、data URL（上传后替换为 URL）或空串
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "店铺 slug"
// @Param request body dto.UpdateStoreRequest true "店铺设置"
// @Success 200 {object} dto.StoreResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/stores/{slug} [patch]
func (ctrl *StoreController) Update(c *gin.Context) {
	var req dto.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store, err := ctrl.storeService.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("slug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToStoreResponse(store))
}

// Preview 外观预览
// @Summary 外观预览
// @Description 根据表单计算前台外观，不保存
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "店铺 slug"
// @Param request body dto.PreviewRequest true "表单内容"
// @Success 200 {object} service.StorePreview
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/stores/{slug}/appearance/preview [post]
func (ctrl *StoreController) Preview(c *gin.Context) {
	if _, err := ctrl.storeService.GetOwned(c.Request.Context(), middleware.GetUserID(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.storeService.Preview(&req))
}
