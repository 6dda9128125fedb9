package models

import "time"

// OrderStatusLog 订单状态流转记录表
type OrderStatusLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                         // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`               // 订单ID
	FromStatus string    `gorm:"type:varchar(20);default:''" json:"from_status"` // 原状态（创建时为空）
	ToStatus   string    `gorm:"type:varchar(20);not null" json:"to_status"`   // 新状态
	Note       string    `gorm:"default:''" json:"note,omitempty"`             // 备注
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                      // 创建时间
}

// TableName 指定表名
func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
