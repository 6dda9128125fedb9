package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	PreviewToken   string         `gorm:"type:varchar(40);index" json:"preview_token,omitempty"`        // 来源预览令牌（直接下单为空）
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 客户用户ID
	CompanyID      uint           `gorm:"index;not null" json:"company_id"`                             // 企业ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	Notes          string         `gorm:"type:text" json:"notes,omitempty"`                             // 客户备注
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 折前小计
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠总额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 应付总额
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                     // 取消时间
	CompletedAt    *time.Time     `gorm:"index" json:"completed_at"`                                    // 完成时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	// 关联
	Items      []OrderItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`       // 订单项
	StatusLogs []OrderStatusLog `gorm:"foreignKey:OrderID" json:"status_logs,omitempty"` // 状态流转记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
