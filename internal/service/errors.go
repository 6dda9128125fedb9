package service

import (
	"errors"
	"fmt"
)

// 业务错误定义；handler 层通过 errors.Is 映射为响应码
var (
	ErrNotCustomer = errors.New("only customer accounts can order")

	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyInactive = errors.New("company is inactive")

	ErrProductNotFound        = errors.New("product not found")
	ErrProductNotSellable     = errors.New("product is not sellable")
	ErrProductCompanyMismatch = errors.New("product does not belong to company")

	ErrInvalidOrderItem    = errors.New("invalid order item")
	ErrDuplicateProduct    = errors.New("duplicate product in order items")
	ErrOfferRewardInvalid  = errors.New("invalid offer reward type")
	ErrBonusIndexInvalid   = errors.New("bonus item index out of range")
	ErrBonusIndexDuplicate = errors.New("duplicate bonus item index")

	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderCancelNotAllowed = errors.New("order cannot be canceled in current status")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrOrderFetchFailed      = errors.New("order fetch failed")

	ErrPreviewNotFound         = errors.New("preview not found or expired")
	ErrPreviewOwnership        = errors.New("preview belongs to another customer")
	ErrPreviewStoreUnavailable = errors.New("preview store unavailable")
	ErrPreviewTokenExhausted   = errors.New("preview token generation exhausted")
)

// 过期数据类错误：客户端快照落后于当前数据，刷新后可重试
var (
	ErrStaleData = errors.New("live data changed since snapshot")

	ErrPriceStale      = fmt.Errorf("%w: product price changed", ErrStaleData)
	ErrOfferRemoved    = fmt.Errorf("%w: offer no longer exists", ErrStaleData)
	ErrOfferInactive   = fmt.Errorf("%w: offer no longer active", ErrStaleData)
	ErrOfferNotStarted = fmt.Errorf("%w: offer not started yet", ErrStaleData)
	ErrOfferExpired    = fmt.Errorf("%w: offer expired", ErrStaleData)
)

// 篡改类错误：诚实客户端基于任何有效状态都算不出提交值，硬拒绝
var (
	ErrTampering = errors.New("submitted values inconsistent with any valid state")

	ErrOfferProductMismatch = fmt.Errorf("%w: offer does not cover product", ErrTampering)
	ErrOfferMinQtyNotMet    = fmt.Errorf("%w: quantity below offer minimum", ErrTampering)
	ErrOfferNotTargeted     = fmt.Errorf("%w: customer not targeted by offer", ErrTampering)
	ErrCalculationMismatch  = fmt.Errorf("%w: submitted amounts do not match recomputation", ErrTampering)
)

// PreviewChange 预览快照与当前数据的单项差异
type PreviewChange struct {
	Type               string `json:"type"`
	ProductID          uint   `json:"product_id"`
	ProductName        string `json:"product_name,omitempty"`
	PreviousPrice      string `json:"previous_price,omitempty"`
	CurrentPrice       string `json:"current_price,omitempty"`
	PreviousOfferID    *uint  `json:"previous_offer_id,omitempty"`
	PreviousOfferTitle string `json:"previous_offer_title,omitempty"`
	PreviousRewardType string `json:"previous_reward_type,omitempty"`
	CurrentOfferID     *uint  `json:"current_offer_id,omitempty"`
	CurrentOfferTitle  string `json:"current_offer_title,omitempty"`
	CurrentRewardType  string `json:"current_reward_type,omitempty"`
	ChangeReason       string `json:"change_reason,omitempty"`
}

// PreviewInvalidatedError 确认时预览快照已失效
// 携带结构化差异列表；该错误不删除缓存键，客户端可重新预览
type PreviewInvalidatedError struct {
	Changes []PreviewChange
}

// Error 实现 error 接口
func (e *PreviewInvalidatedError) Error() string {
	return fmt.Sprintf("preview invalidated: %d change(s)", len(e.Changes))
}
