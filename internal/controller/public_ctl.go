package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/service"
)

// PublicController 前台店铺页，无需登录
type PublicController struct {
	storeService   *service.StoreService
	productService *service.ProductService
}

func NewPublicController(storeService *service.StoreService, productService *service.ProductService) *PublicController {
	return &PublicController{storeService: storeService, productService: productService}
}

// GetStore 店铺信息与外观
// @Summary 前台店铺
// @Tags Public
// @Produce json
// @Param slug path string true "店铺 slug"
// @Success 200 {object} service.PublicStore
// @Failure 404 {object} map[string]string
// @Router /api/public/stores/{slug} [get]
func (ctrl *PublicController) GetStore(c *gin.Context) {
	store, err := ctrl.storeService.GetPublic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// ListProducts 已发布商品
// @Summary 前台商品列表
// @Tags Public
// @Produce json
// @Param slug path string true "店铺 slug"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(12)
// @Param search query string false "标题搜索"
// @Success 200 {object} dto.ProductListResponse
// @Failure 404 {object} map[string]string
// @Router /api/public/stores/{slug}/products [get]
func (ctrl *PublicController) ListProducts(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	resp, err := ctrl.productService.ListPublic(c.Request.Context(), c.Param("slug"), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct 已发布商品详情
// @Summary 前台商品详情
// @Tags Public
// @Produce json
// @Param slug path string true "店铺 slug"
// @Param productSlug path string true "商品 slug"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string
// @Router /api/public/stores/{slug}/products/{productSlug} [get]
func (ctrl *PublicController) GetProduct(c *gin.Context) {
	product, err := ctrl.productService.GetPublic(c.Request.Context(), c.Param("slug"), c.Param("productSlug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}
