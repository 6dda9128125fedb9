package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer 优惠活动表
// 生效判定：status 为 active 且 (start_at 为空或已到) 且 (end_at 为空或未过)
type Offer struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                  // 主键
	CompanyID   uint           `gorm:"not null;index" json:"company_id"`                      // 所属企业ID
	Title       string         `gorm:"not null" json:"title"`                                 // 活动标题
	Description string         `gorm:"type:text" json:"description,omitempty"`                // 活动描述
	Scope       string         `gorm:"type:varchar(20);not null;default:'public';index" json:"scope"` // 范围（public/private）
	Status      string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 状态（active/paused）
	StartAt     *time.Time     `gorm:"index" json:"start_at"`                                 // 开始时间（空表示已开始）
	EndAt       *time.Time     `gorm:"index" json:"end_at"`                                   // 结束时间（空表示永不过期）
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	Items   []OfferItem   `gorm:"foreignKey:OfferID" json:"items,omitempty"`   // 活动商品规则
	Targets []OfferTarget `gorm:"foreignKey:OfferID" json:"targets,omitempty"` // 私有活动定向目标
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}

// OfferItem 优惠活动商品规则表
// 每条规则只填自身 reward_type 相关的字段
type OfferItem struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OfferID         uint           `gorm:"not null;index" json:"offer_id"`                                // 活动ID
	ProductID       uint           `gorm:"not null;index" json:"product_id"`                              // 商品ID
	MinQty          int            `gorm:"not null;default:1" json:"min_qty"`                             // 起订数量
	RewardType      string         `gorm:"type:varchar(30);not null" json:"reward_type"`                  // 奖励类型
	DiscountPercent Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_percent"` // 折扣百分比
	DiscountFixed   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_fixed"`   // 固定折扣金额
	BonusProductID  *uint          `gorm:"index" json:"bonus_product_id,omitempty"`                       // 赠品商品ID（空表示赠下单商品）
	BonusQty        int            `gorm:"not null;default:0" json:"bonus_qty"`                           // 每块赠品数量
	CreatedAt       time.Time      `json:"created_at"`                                                    // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (OfferItem) TableName() string {
	return "offer_items"
}

// OfferTarget 私有活动定向目标表
type OfferTarget struct {
	ID         uint      `gorm:"primarykey" json:"id"`                          // 主键
	OfferID    uint      `gorm:"not null;index" json:"offer_id"`                // 活动ID
	TargetType string    `gorm:"type:varchar(30);not null" json:"target_type"`  // 目标类型（customer/customer_category/customer_tag）
	TargetID   uint      `gorm:"not null;index" json:"target_id"`               // 目标ID
	CreatedAt  time.Time `json:"created_at"`                                    // 创建时间
}

// TableName 指定表名
func (OfferTarget) TableName() string {
	return "offer_targets"
}
