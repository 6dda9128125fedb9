package repository

import (
	"errors"

	"github.com/procure-next/internal/models"

	"gorm.io/gorm"
)

// OfferRepository 优惠活动数据访问接口
type OfferRepository interface {
	GetByID(id uint) (*models.Offer, error)
	ListByProduct(productID uint) ([]models.Offer, error)
	ListByCompany(companyID uint) ([]models.Offer, error)
	WithTx(tx *gorm.DB) *GormOfferRepository
}

// GormOfferRepository GORM 实现
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository 创建优惠活动仓库
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOfferRepository) WithTx(tx *gorm.DB) *GormOfferRepository {
	if tx == nil {
		return r
	}
	return &GormOfferRepository{db: tx}
}

// GetByID 根据 ID 获取活动（含规则与定向目标）
func (r *GormOfferRepository) GetByID(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.Preload("Items").Preload("Targets").First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// ListByProduct 获取挂接到指定商品的全部活动（生效性由调用方判断）
func (r *GormOfferRepository) ListByProduct(productID uint) ([]models.Offer, error) {
	var offers []models.Offer
	subQuery := r.db.Model(&models.OfferItem{}).
		Select("offer_id").
		Where("product_id = ?", productID)
	if err := r.db.Preload("Items").Preload("Targets").
		Where("id IN (?)", subQuery).
		Order("id asc").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// ListByCompany 获取企业的全部活动（含规则与定向目标）
func (r *GormOfferRepository) ListByCompany(companyID uint) ([]models.Offer, error) {
	var offers []models.Offer
	if err := r.db.Preload("Items").Preload("Targets").
		Where("company_id = ?", companyID).
		Order("id asc").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}
