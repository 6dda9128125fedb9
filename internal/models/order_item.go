package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
type OrderItem struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderID        uint           `gorm:"index;not null" json:"order_id"`                               // 订单ID
	ProductID      uint           `gorm:"index;not null" json:"product_id"`                             // 商品ID
	ProductName    string         `gorm:"not null" json:"product_name"`                                 // 商品名称快照
	UnitPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`     // 单价
	Quantity       int            `gorm:"not null" json:"quantity"`                                     // 数量
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	FinalTotal     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"final_total"`    // 折后小计
	OfferID        *uint          `gorm:"index" json:"offer_id,omitempty"`                              // 命中的活动ID
	OfferTitle     string         `gorm:"default:''" json:"offer_title,omitempty"`                      // 活动标题快照
	RewardType     string         `gorm:"type:varchar(30);default:''" json:"reward_type,omitempty"`    // 奖励类型快照
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	// 关联
	Bonuses []OrderItemBonus `gorm:"foreignKey:OrderItemID" json:"bonuses,omitempty"` // 赠品行
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemBonus 订单项赠品表
type OrderItemBonus struct {
	ID          uint      `gorm:"primarykey" json:"id"`                    // 主键
	OrderItemID uint      `gorm:"index;not null" json:"order_item_id"`     // 订单项ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`        // 赠品商品ID
	ProductName string    `gorm:"not null" json:"product_name"`            // 赠品名称快照
	Quantity    int       `gorm:"not null" json:"quantity"`                // 赠品数量
	OfferID     *uint     `gorm:"index" json:"offer_id,omitempty"`         // 来源活动ID
	OfferTitle  string    `gorm:"default:''" json:"offer_title,omitempty"` // 来源活动标题快照
	CreatedAt   time.Time `json:"created_at"`                              // 创建时间
}

// TableName 指定表名
func (OrderItemBonus) TableName() string {
	return "order_item_bonuses"
}
