package service

import (
	"sort"
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OfferService 优惠活动服务：生效判断、定向判断与最优活动选择
type OfferService struct {
	offerRepo   repository.OfferRepository
	productRepo repository.ProductRepository
}

// NewOfferService 创建优惠活动服务
func NewOfferService(offerRepo repository.OfferRepository, productRepo repository.ProductRepository) *OfferService {
	return &OfferService{
		offerRepo:   offerRepo,
		productRepo: productRepo,
	}
}

// WithTx 绑定事务
func (s *OfferService) WithTx(tx *gorm.DB) *OfferService {
	if tx == nil {
		return s
	}
	return &OfferService{
		offerRepo:   s.offerRepo.WithTx(tx),
		productRepo: s.productRepo.WithTx(tx),
	}
}

// offerEffectiveAt 判断活动在指定时刻是否生效
// start_at 为空视为已开始，end_at 为空视为永不过期
func offerEffectiveAt(offer *models.Offer, at time.Time) bool {
	if offer == nil || offer.Status != constants.OfferStatusActive {
		return false
	}
	if offer.StartAt != nil && at.Before(*offer.StartAt) {
		return false
	}
	if offer.EndAt != nil && at.After(*offer.EndAt) {
		return false
	}
	return true
}

// OfferTargetsCustomer 判断客户是否命中活动的定向目标
// 公开活动对所有客户可见；私有活动按客户、分类、标签三类目标匹配
func (s *OfferService) OfferTargetsCustomer(offer *models.Offer, customer *models.User) bool {
	if offer == nil {
		return false
	}
	if offer.Scope != constants.OfferScopePrivate {
		return true
	}
	if customer == nil {
		return false
	}
	tagIDs := make(map[uint]struct{}, len(customer.Tags))
	for _, tag := range customer.Tags {
		tagIDs[tag.ID] = struct{}{}
	}
	for _, target := range offer.Targets {
		switch target.TargetType {
		case constants.TargetTypeCustomer:
			if target.TargetID == customer.ID {
				return true
			}
		case constants.TargetTypeCustomerCategory:
			if customer.CategoryID != nil && target.TargetID == *customer.CategoryID {
				return true
			}
		case constants.TargetTypeCustomerTag:
			if _, ok := tagIDs[target.TargetID]; ok {
				return true
			}
		}
	}
	return false
}

type offerCandidate struct {
	offer          *models.Offer
	effectiveValue decimal.Decimal
	isDiscount     bool
	endAt          *time.Time
}

// SelectBestOffer 在挂接到商品的活动中选出对客户最优的一个，无可用活动返回 nil
// 排序键：优惠价值降序 → 折扣类优先 → end_at 升序（空排最后）→ 活动 ID 升序
func (s *OfferService) SelectBestOffer(product *models.Product, qty int, customer *models.User) (*models.Offer, error) {
	offers, err := s.offerRepo.ListByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, nil
	}

	now := time.Now()
	candidates := make([]offerCandidate, 0, len(offers))
	for i := range offers {
		offer := &offers[i]
		if !offerEffectiveAt(offer, now) {
			continue
		}
		item := offerItemForProduct(offer, product.ID)
		if item == nil {
			continue
		}
		minQty := item.MinQty
		if minQty < 1 {
			minQty = 1
		}
		if qty/minQty == 0 {
			continue
		}
		if !s.OfferTargetsCustomer(offer, customer) {
			continue
		}
		value, err := s.effectiveValue(product, qty, offer, item)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, offerCandidate{
			offer:          offer,
			effectiveValue: value,
			isDiscount:     item.RewardType != constants.RewardTypeBonusQty,
			endAt:          offer.EndAt,
		})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.effectiveValue.Equal(b.effectiveValue) {
			return a.effectiveValue.GreaterThan(b.effectiveValue)
		}
		if a.isDiscount != b.isDiscount {
			return a.isDiscount
		}
		if !equalEndAt(a.endAt, b.endAt) {
			// 空 end_at 视为无穷大，排在任何具体时间之后
			if a.endAt == nil {
				return false
			}
			if b.endAt == nil {
				return true
			}
			return a.endAt.Before(*b.endAt)
		}
		return a.offer.ID < b.offer.ID
	})

	return candidates[0].offer, nil
}

// effectiveValue 计算活动对指定商品与数量的优惠价值，用于活动排序
// 折扣类等于折扣金额；赠品类等于赠品数量 × 赠品单价 × 块数，逐步保留 2 位小数
func (s *OfferService) effectiveValue(product *models.Product, qty int, offer *models.Offer, item *models.OfferItem) (decimal.Decimal, error) {
	if item.RewardType != constants.RewardTypeBonusQty {
		result, err := CalculatePricing(product, qty, offer)
		if err != nil {
			return decimal.Zero, err
		}
		return result.DiscountAmount.Decimal, nil
	}

	bonusPrice := product.PriceAmount.Decimal
	if item.BonusProductID != nil && *item.BonusProductID != product.ID {
		bonusProduct, err := s.productRepo.GetByID(*item.BonusProductID)
		if err != nil {
			return decimal.Zero, err
		}
		if bonusProduct == nil {
			return decimal.Zero, nil
		}
		bonusPrice = bonusProduct.PriceAmount.Decimal
	}

	minQty := item.MinQty
	if minQty < 1 {
		minQty = 1
	}
	multiplier := int64(qty / minQty)
	perBlock := decimal.NewFromInt(int64(item.BonusQty)).Mul(bonusPrice.Round(2)).Round(2)
	return perBlock.Mul(decimal.NewFromInt(multiplier)).Round(2), nil
}

// ListEffectiveForCustomer 获取企业当前生效且对客户可见的活动
func (s *OfferService) ListEffectiveForCustomer(companyID uint, customer *models.User) ([]models.Offer, error) {
	offers, err := s.offerRepo.ListByCompany(companyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	visible := make([]models.Offer, 0, len(offers))
	for i := range offers {
		offer := &offers[i]
		if !offerEffectiveAt(offer, now) {
			continue
		}
		if !s.OfferTargetsCustomer(offer, customer) {
			continue
		}
		visible = append(visible, *offer)
	}
	return visible, nil
}

func equalEndAt(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
