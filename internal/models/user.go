package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（客户与企业侧账号共用）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                           // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`              // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                              // 密码哈希（不返回给前端）
	DisplayName  string         `gorm:"default:''" json:"display_name"`                 // 昵称
	UserType     string         `gorm:"type:varchar(20);not null;index" json:"user_type"` // 用户类型（customer/company）
	CompanyID    *uint          `gorm:"index" json:"company_id,omitempty"`              // 所属企业（企业侧账号）
	CategoryID   *uint          `gorm:"index" json:"category_id,omitempty"`             // 客户分类
	Status       string         `gorm:"default:'active'" json:"status"`                 // 账号状态
	LastLoginAt  *time.Time     `json:"last_login_at"`                                  // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                        // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间

	// 关联
	Category *CustomerCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`       // 客户分类信息
	Tags     []CustomerTag     `gorm:"many2many:user_customer_tags" json:"tags,omitempty"` // 客户标签
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
