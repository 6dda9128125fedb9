package models

import (
	"time"

	"gorm.io/gorm"
)

// Company 企业表（卖方）
type Company struct {
	ID           uint           `gorm:"primarykey" json:"id"`                // 主键
	Name         string         `gorm:"not null;index" json:"name"`          // 企业名称
	ContactEmail string         `gorm:"type:varchar(200)" json:"contact_email,omitempty"` // 联系邮箱
	IsActive     bool           `gorm:"default:true;index" json:"is_active"` // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                          // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间
}

// TableName 指定表名
func (Company) TableName() string {
	return "companies"
}
