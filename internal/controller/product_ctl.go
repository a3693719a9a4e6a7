package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_dev_v1/internal/api/dto"
	"storefront_dev_v1/internal/service"
)

// ==================== ProductController 商品管理 ====================

type ProductController struct {
	productService *service.ProductService
	storeService   *service.StoreService
	links          service.StorefrontLinks
}

func NewProductController(productService *service.ProductService, storeService *service.StoreService, links service.StorefrontLinks) *ProductController {
	return &ProductController{
		productService: productService,
		storeService:   storeService,
		links:          links,
	}
}

// ==================== 查询接口 ====================

// List 商品列表
// @Summary 我的商品列表
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param search query string false "标题搜索"
// @Success 200 {object} dto.ProductListResponse
// @Router /api/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var q dto.ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	resp, err := ctrl.productService.List(c.Request.Context(), store.ID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 商品详情
// @Summary 商品详情
// @Tags Product
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [get]
func (ctrl *ProductController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	product, err := ctrl.productService.Get(c.Request.Context(), store.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// ==================== 写接口 ====================

// Create 创建商品
// @Summary 创建商品
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProductRequest true "商品信息"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string
// @Router /api/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	product, err := ctrl.productService.Create(c.Request.Context(), store.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// Update 更新商品
// @Summary 更新商品
// @Description 部分更新；传 links 时整体替换推广链接
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.UpdateProductRequest true "商品信息"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [patch]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	product, err := ctrl.productService.Update(c.Request.Context(), store.ID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// ReplaceLinks 替换推广链接
// @Summary 替换推广链接
// @Tags Product
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param request body dto.ReplaceLinksRequest true "推广链接"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/{id}/links [put]
func (ctrl *ProductController) ReplaceLinks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReplaceLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	product, err := ctrl.productService.ReplaceLinks(c.Request.Context(), store.ID, id, req.Links)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// Delete 删除商品
// @Summary 删除商品
// @Tags Product
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	store, ok := currentStore(c, ctrl.storeService)
	if !ok {
		return
	}
	if err := ctrl.productService.Delete(c.Request.Context(), store.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 分享卡片 ====================

// OG 商品 Open Graph 信息
// @Summary 商品分享卡片
// @Tags Product
// @Produce json
// @Param store query string true "店铺 slug"
// @Param product query string true "商品 slug"
// @Success 200 {object} dto.OGMetadata
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/products/og [get]
func (ctrl *ProductController) OG(c *gin.Context) {
	meta, err := ctrl.productService.OGMetadata(c.Request.Context(), c.Query("store"), c.Query("product"), ctrl.links)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}
