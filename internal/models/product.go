package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表；PriceAmount 是单价的唯一可信来源
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CompanyID   uint           `gorm:"not null;index" json:"company_id"`                          // 所属企业ID
	Name        string         `gorm:"not null" json:"name"`                                      // 商品名称
	Description string         `gorm:"type:text" json:"description,omitempty"`                    // 商品描述
	PriceAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 价格金额
	Tags        StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"` // 企业信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
