package public

import (
	"errors"

	handlershared "github.com/procure-next/internal/http/handlers/shared"
	"github.com/procure-next/internal/http/response"
	"github.com/procure-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// 下单公共规则：越权 403、缺失 404、业务校验 422
var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrNotCustomer, code: response.CodeForbidden, msg: "only customer accounts can place orders"},
	{target: service.ErrCompanyNotFound, code: response.CodeNotFound, msg: "company not found"},
	{target: service.ErrCompanyInactive, code: response.CodeUnprocessable, msg: "company is inactive"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotSellable, code: response.CodeUnprocessable, msg: "product is not sellable"},
	{target: service.ErrProductCompanyMismatch, code: response.CodeForbidden, msg: "product does not belong to company"},
	{target: service.ErrInvalidOrderItem, code: response.CodeUnprocessable, msg: "invalid order item"},
	{target: service.ErrDuplicateProduct, code: response.CodeUnprocessable, msg: "duplicate product in order items"},
}

var orderPreviewExtraErrorRules = []mappedHandlerError{
	{target: service.ErrPreviewStoreUnavailable, code: response.CodeInternal, msg: "preview store unavailable"},
	{target: service.ErrPreviewTokenExhausted, code: response.CodeInternal, msg: "preview token generation failed"},
}

var orderConfirmErrorRules = []mappedHandlerError{
	{target: service.ErrNotCustomer, code: response.CodeForbidden, msg: "only customer accounts can place orders"},
	{target: service.ErrPreviewNotFound, code: response.CodeNotFound, msg: "preview not found or expired"},
	{target: service.ErrPreviewOwnership, code: response.CodeForbidden, msg: "preview belongs to another customer"},
	{target: service.ErrPreviewStoreUnavailable, code: response.CodeInternal, msg: "preview store unavailable"},
}

// 校验失败细分：先匹配具体原因，再匹配两大类兜底
var orderVerifyErrorRules = []mappedHandlerError{
	{target: service.ErrBonusIndexInvalid, code: response.CodeUnprocessable, msg: "bonus item index out of range"},
	{target: service.ErrBonusIndexDuplicate, code: response.CodeUnprocessable, msg: "duplicate bonus item index"},
	{target: service.ErrPriceStale, code: response.CodeUnprocessable, msg: "product price changed, refresh and retry"},
	{target: service.ErrOfferRemoved, code: response.CodeUnprocessable, msg: "offer no longer exists, refresh and retry"},
	{target: service.ErrOfferInactive, code: response.CodeUnprocessable, msg: "offer no longer active, refresh and retry"},
	{target: service.ErrOfferNotStarted, code: response.CodeUnprocessable, msg: "offer not started yet, refresh and retry"},
	{target: service.ErrOfferExpired, code: response.CodeUnprocessable, msg: "offer expired, refresh and retry"},
	{target: service.ErrStaleData, code: response.CodeUnprocessable, msg: "pricing data changed, refresh and retry"},
	{target: service.ErrTampering, code: response.CodeUnprocessable, msg: "submitted pricing rejected"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, orderPreviewExtraErrorRules), response.CodeInternal, "order preview failed")
}

func respondOrderConfirmError(c *gin.Context, err error) {
	var invalidated *service.PreviewInvalidatedError
	if errors.As(err, &invalidated) {
		handlershared.RespondErrorWithData(c, response.CodeConflict, "preview invalidated", gin.H{
			"error_code": "PREVIEW_INVALIDATED",
			"details":    invalidated.Changes,
		}, nil)
		return
	}
	respondWithMappedError(c, err, orderConfirmErrorRules, response.CodeInternal, "order confirm failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(orderCommonErrorRules, orderVerifyErrorRules), response.CodeInternal, "order create failed")
}

func respondCatalogError(c *gin.Context, err error) {
	respondWithMappedError(c, err, []mappedHandlerError{
		{target: service.ErrCompanyNotFound, code: response.CodeNotFound, msg: "company not found"},
		{target: service.ErrCompanyInactive, code: response.CodeUnprocessable, msg: "company is inactive"},
	}, response.CodeInternal, "catalog fetch failed")
}
