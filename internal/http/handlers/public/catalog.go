package public

import (
	"strconv"
	"strings"

	"github.com/procure-next/internal/http/response"
	"github.com/procure-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCompanyProducts 查询企业在售商品列表
func (h *Handler) ListCompanyProducts(c *gin.Context) {
	if _, ok := getCurrentUser(c); !ok {
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || companyID == 0 {
		respondError(c, response.CodeBadRequest, "invalid company id", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.CatalogService.ListCompanyProducts(uint(companyID), repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, products, pagination)
}

// ListCompanyOffers 查询企业当前对客户生效的活动列表
// 诚实客户端凭此预先算出与服务端一致的价格
func (h *Handler) ListCompanyOffers(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	companyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || companyID == 0 {
		respondError(c, response.CodeBadRequest, "invalid company id", nil)
		return
	}

	offers, err := h.CatalogService.ListCompanyOffers(uint(companyID), customer)
	if err != nil {
		respondCatalogError(c, err)
		return
	}

	response.Success(c, offers)
}
