package repository

import (
	"errors"

	"github.com/procure-next/internal/models"

	"gorm.io/gorm"
)

// CompanyRepository 企业数据访问接口
type CompanyRepository interface {
	GetByID(id uint) (*models.Company, error)
	WithTx(tx *gorm.DB) *GormCompanyRepository
}

// GormCompanyRepository GORM 实现
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository 创建企业仓库
func NewCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCompanyRepository) WithTx(tx *gorm.DB) *GormCompanyRepository {
	if tx == nil {
		return r
	}
	return &GormCompanyRepository{db: tx}
}

// GetByID 根据 ID 获取企业
func (r *GormCompanyRepository) GetByID(id uint) (*models.Company, error) {
	var company models.Company
	if err := r.db.First(&company, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}
