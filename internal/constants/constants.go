package constants

// 用户类型常量
const (
	UserTypeCustomer = "customer"
	UserTypeCompany  = "company"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
)

// 优惠活动范围常量
const (
	OfferScopePublic  = "public"
	OfferScopePrivate = "private"
)

// 优惠活动状态常量
const (
	OfferStatusActive = "active"
	OfferStatusPaused = "paused"
)

// 优惠奖励类型常量
const (
	RewardTypeDiscountPercent = "discount_percent"
	RewardTypeDiscountFixed   = "discount_fixed"
	RewardTypeBonusQty        = "bonus_qty"
)

// 私有优惠目标类型常量
const (
	TargetTypeCustomer         = "customer"
	TargetTypeCustomerCategory = "customer_category"
	TargetTypeCustomerTag      = "customer_tag"
)

// 预览快照差异类型常量
const (
	PreviewChangePriceChanged     = "price_changed"
	PreviewChangeBestOfferChanged = "best_offer_changed"
)

// 预览快照差异原因常量
const (
	ChangeReasonNewBetterOffer   = "new_better_offer"
	ChangeReasonBecameInactive   = "became_inactive"
	ChangeReasonExpired          = "expired"
	ChangeReasonNotStarted       = "not_started"
	ChangeReasonTargetingChanged = "targeting_changed"
	ChangeReasonRemoved          = "removed"
)

// 预览令牌与缓存键常量
const (
	PreviewTokenPrefix    = "PV"
	PreviewCacheKeyPrefix = "preview:"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskOrderConfirmedEmail  = "order:confirmed_email"
	TaskAbuseTamperingReport = "abuse:tampering_report"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "pn"
)
