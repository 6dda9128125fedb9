package public

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/procure-next/internal/http/response"
	"github.com/procure-next/internal/repository"
	"github.com/procure-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 预览令牌格式：PV-{YYYYMMDD}-{4位大写十六进制}
var previewTokenPattern = regexp.MustCompile(`^PV-\d{8}-[A-F0-9]{4}$`)

// ConfirmOrderRequest 确认下单请求
type ConfirmOrderRequest struct {
	PreviewToken string `json:"preview_token" binding:"required"`
}

// PreviewOrder 订单预览：计算各行最优活动与金额并缓存快照
func (h *Handler) PreviewOrder(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req service.PreviewOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	snapshot, err := h.OrderService.PreviewOrder(c.Request.Context(), req, customer)
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}

	response.Success(c, snapshot)
}

// ConfirmOrder 凭预览令牌确认下单
func (h *Handler) ConfirmOrder(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if !previewTokenPattern.MatchString(req.PreviewToken) {
		respondError(c, response.CodeBadRequest, "invalid preview token", nil)
		return
	}

	order, err := h.OrderService.ConfirmOrder(c.Request.Context(), req.PreviewToken, customer)
	if err != nil {
		respondOrderConfirmError(c, err)
		return
	}

	response.Created(c, order)
}

// CreateOrder 直接下单：服务端逐项核验客户端提交的价格与计算
func (h *Handler) CreateOrder(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	var req service.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(req, customer)
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Created(c, order)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))
	orderNo := strings.TrimSpace(c.Query("order_no"))

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   status,
		OrderNo:  orderNo,
	}, customer)
	if err != nil {
		if errors.Is(err, service.ErrNotCustomer) {
			respondError(c, response.CodeForbidden, "only customer accounts can view orders", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrder(uint(orderID), customer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrNotCustomer):
			respondError(c, response.CodeForbidden, "only customer accounts can view orders", nil)
		default:
			respondError(c, response.CodeInternal, "order fetch failed", err)
		}
		return
	}

	response.Success(c, order)
}

// CancelOrder 客户取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	customer, ok := getCurrentUser(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.CancelOrder(uint(orderID), customer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderCancelNotAllowed):
			respondError(c, response.CodeBadRequest, "order cannot be canceled in current status", nil)
		case errors.Is(err, service.ErrNotCustomer):
			respondError(c, response.CodeForbidden, "only customer accounts can cancel orders", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", err)
		}
		return
	}

	response.Success(c, order)
}
