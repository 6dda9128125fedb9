package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerCategory 客户分类表（私有优惠按分类定向）
type CustomerCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`              // 主键
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`  // 分类名称
	SortOrder int            `gorm:"default:0;index" json:"sort_order"` // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (CustomerCategory) TableName() string {
	return "customer_categories"
}
