package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerTag 客户标签表（私有优惠按标签定向）
type CustomerTag struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Name      string         `gorm:"uniqueIndex;not null" json:"name"` // 标签名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"`          // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                   // 软删除时间
}

// TableName 指定表名
func (CustomerTag) TableName() string {
	return "customer_tags"
}
