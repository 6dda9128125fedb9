package service

import (
	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"

	"github.com/shopspring/decimal"
)

// 金额比较容差（一分钱）
var moneyTolerance = decimal.New(1, -2)

// BonusLine 计算得出的赠品行
type BonusLine struct {
	ProductID  uint
	Quantity   int
	OfferID    *uint
	OfferTitle string
}

// PricingResult 单行定价结果
type PricingResult struct {
	UnitPrice      models.Money
	Subtotal       models.Money
	DiscountAmount models.Money
	FinalTotal     models.Money
	Bonuses        []BonusLine
}

// CalculatePricing 计算单行价格，纯函数，不做任何 I/O
// 舍入顺序固定：单价 → 单块折扣 → 折扣总额 → 行总额，均保留 2 位小数（四舍五入）
// 调换顺序会在部分输入上产生分位差异
func CalculatePricing(product *models.Product, qty int, offer *models.Offer) (*PricingResult, error) {
	unitPrice := product.PriceAmount.Decimal.Round(2)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)

	result := &PricingResult{
		UnitPrice:      models.NewMoneyFromDecimal(unitPrice),
		Subtotal:       models.NewMoneyFromDecimal(subtotal),
		DiscountAmount: models.NewMoneyFromDecimal(decimal.Zero),
		FinalTotal:     models.NewMoneyFromDecimal(subtotal),
	}
	if offer == nil {
		return result, nil
	}

	item := offerItemForProduct(offer, product.ID)
	if item == nil {
		return nil, ErrOfferProductMismatch
	}

	minQty := item.MinQty
	if minQty < 1 {
		minQty = 1
	}
	multiplier := int64(qty / minQty)

	switch item.RewardType {
	case constants.RewardTypeDiscountPercent:
		perBlock := decimal.NewFromInt(int64(minQty)).
			Mul(unitPrice).
			Mul(item.DiscountPercent.Decimal).
			Div(decimal.NewFromInt(100)).
			Round(2)
		discount := perBlock.Mul(decimal.NewFromInt(multiplier)).Round(2)
		result.DiscountAmount = models.NewMoneyFromDecimal(discount)
		result.FinalTotal = models.NewMoneyFromDecimal(subtotal.Sub(discount).Round(2))
	case constants.RewardTypeDiscountFixed:
		discount := item.DiscountFixed.Decimal.Mul(decimal.NewFromInt(multiplier)).Round(2)
		result.DiscountAmount = models.NewMoneyFromDecimal(discount)
		result.FinalTotal = models.NewMoneyFromDecimal(subtotal.Sub(discount).Round(2))
	case constants.RewardTypeBonusQty:
		bonusQty := int(multiplier) * item.BonusQty
		if bonusQty > 0 {
			bonusProductID := product.ID
			if item.BonusProductID != nil {
				bonusProductID = *item.BonusProductID
			}
			offerID := offer.ID
			result.Bonuses = []BonusLine{{
				ProductID:  bonusProductID,
				Quantity:   bonusQty,
				OfferID:    &offerID,
				OfferTitle: offer.Title,
			}}
		}
	default:
		return nil, ErrOfferRewardInvalid
	}

	return result, nil
}

// offerItemForProduct 在活动规则中查找指定商品的规则
func offerItemForProduct(offer *models.Offer, productID uint) *models.OfferItem {
	if offer == nil {
		return nil
	}
	for i := range offer.Items {
		if offer.Items[i].ProductID == productID {
			return &offer.Items[i]
		}
	}
	return nil
}
