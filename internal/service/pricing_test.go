package service

import (
	"errors"
	"testing"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"

	"github.com/shopspring/decimal"
)

func moneyFromFloat(value float64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromFloat(value))
}

func TestCalculatePricingNoOffer(t *testing.T) {
	product := &models.Product{ID: 1, PriceAmount: moneyFromFloat(2.35)}
	result, err := CalculatePricing(product, 3, nil)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	if result.Subtotal.String() != "7.05" {
		t.Fatalf("subtotal want 7.05 got %s", result.Subtotal.String())
	}
	if !result.DiscountAmount.Decimal.IsZero() {
		t.Fatalf("discount want 0 got %s", result.DiscountAmount.String())
	}
	if result.FinalTotal.String() != "7.05" {
		t.Fatalf("final want 7.05 got %s", result.FinalTotal.String())
	}
}

func TestCalculatePricingUnitPriceRoundedFirst(t *testing.T) {
	// 单价先归一到分位再参与计算：10.005 → 10.01
	product := &models.Product{ID: 1, PriceAmount: moneyFromFloat(10.005)}
	offerID := uint(7)
	offer := &models.Offer{
		ID: offerID,
		Items: []models.OfferItem{
			{ProductID: 1, MinQty: 1, RewardType: constants.RewardTypeDiscountPercent, DiscountPercent: moneyFromFloat(10.5)},
		},
	}
	result, err := CalculatePricing(product, 1, offer)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	if result.UnitPrice.String() != "10.01" {
		t.Fatalf("unit price want 10.01 got %s", result.UnitPrice.String())
	}
	if result.Subtotal.String() != "10.01" {
		t.Fatalf("subtotal want 10.01 got %s", result.Subtotal.String())
	}
	// 1 × 10.01 × 10.5% = 1.05105 → 1.05
	if result.DiscountAmount.String() != "1.05" {
		t.Fatalf("discount want 1.05 got %s", result.DiscountAmount.String())
	}
	if result.FinalTotal.String() != "8.96" {
		t.Fatalf("final want 8.96 got %s", result.FinalTotal.String())
	}
}

func TestCalculatePricingPercentMultiplier(t *testing.T) {
	product := &models.Product{ID: 1, PriceAmount: moneyFromFloat(12.50)}
	offer := &models.Offer{
		ID: 3,
		Items: []models.OfferItem{
			{ProductID: 1, MinQty: 10, RewardType: constants.RewardTypeDiscountPercent, DiscountPercent: moneyFromFloat(10)},
		},
	}
	// 25 件 → 两个整块，零头 5 件不参与折扣
	result, err := CalculatePricing(product, 25, offer)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	if result.Subtotal.String() != "312.50" {
		t.Fatalf("subtotal want 312.50 got %s", result.Subtotal.String())
	}
	// 每块 10×12.50×10% = 12.50，两块 25.00
	if result.DiscountAmount.String() != "25.00" {
		t.Fatalf("discount want 25.00 got %s", result.DiscountAmount.String())
	}
	if result.FinalTotal.String() != "287.50" {
		t.Fatalf("final want 287.50 got %s", result.FinalTotal.String())
	}
}

func TestCalculatePricingFixedDiscount(t *testing.T) {
	product := &models.Product{ID: 2, PriceAmount: moneyFromFloat(2.35)}
	offer := &models.Offer{
		ID: 4,
		Items: []models.OfferItem{
			{ProductID: 2, MinQty: 50, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(1.50)},
		},
	}
	result, err := CalculatePricing(product, 120, offer)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	// 120/50 = 2 块 → 3.00
	if result.DiscountAmount.String() != "3.00" {
		t.Fatalf("discount want 3.00 got %s", result.DiscountAmount.String())
	}
	if result.FinalTotal.String() != "279.00" {
		t.Fatalf("final want 279.00 got %s", result.FinalTotal.String())
	}
}

func TestCalculatePricingBonusQty(t *testing.T) {
	product := &models.Product{ID: 5, PriceAmount: moneyFromFloat(8.90)}
	offer := &models.Offer{
		ID:    9,
		Title: "film bonus",
		Items: []models.OfferItem{
			{ProductID: 5, MinQty: 20, RewardType: constants.RewardTypeBonusQty, BonusQty: 1},
		},
	}
	result, err := CalculatePricing(product, 45, offer)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	// 赠品不减金额
	if !result.DiscountAmount.Decimal.IsZero() {
		t.Fatalf("discount want 0 got %s", result.DiscountAmount.String())
	}
	if result.FinalTotal.String() != "400.50" {
		t.Fatalf("final want 400.50 got %s", result.FinalTotal.String())
	}
	if len(result.Bonuses) != 1 {
		t.Fatalf("expected 1 bonus line, got %d", len(result.Bonuses))
	}
	bonus := result.Bonuses[0]
	// 未指定赠品商品时默认赠下单商品
	if bonus.ProductID != 5 || bonus.Quantity != 2 {
		t.Fatalf("unexpected bonus line: %+v", bonus)
	}
	if bonus.OfferID == nil || *bonus.OfferID != 9 || bonus.OfferTitle != "film bonus" {
		t.Fatalf("bonus offer attribution mismatch: %+v", bonus)
	}
}

func TestCalculatePricingBonusBelowMinQty(t *testing.T) {
	product := &models.Product{ID: 5, PriceAmount: moneyFromFloat(8.90)}
	offer := &models.Offer{
		ID: 9,
		Items: []models.OfferItem{
			{ProductID: 5, MinQty: 20, RewardType: constants.RewardTypeBonusQty, BonusQty: 1},
		},
	}
	result, err := CalculatePricing(product, 19, offer)
	if err != nil {
		t.Fatalf("CalculatePricing error: %v", err)
	}
	if len(result.Bonuses) != 0 {
		t.Fatalf("expected no bonus below min qty, got %+v", result.Bonuses)
	}
}

func TestCalculatePricingOfferWithoutProductRule(t *testing.T) {
	product := &models.Product{ID: 1, PriceAmount: moneyFromFloat(10)}
	offer := &models.Offer{
		ID: 2,
		Items: []models.OfferItem{
			{ProductID: 99, MinQty: 1, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(1)},
		},
	}
	if _, err := CalculatePricing(product, 1, offer); !errors.Is(err, ErrOfferProductMismatch) {
		t.Fatalf("expected ErrOfferProductMismatch, got %v", err)
	}
	if _, err := CalculatePricing(product, 1, offer); !errors.Is(err, ErrTampering) {
		t.Fatalf("mismatch should be classified as tampering, got %v", err)
	}
}

func TestCalculatePricingUnknownRewardType(t *testing.T) {
	product := &models.Product{ID: 1, PriceAmount: moneyFromFloat(10)}
	offer := &models.Offer{
		ID: 2,
		Items: []models.OfferItem{
			{ProductID: 1, MinQty: 1, RewardType: "cashback"},
		},
	}
	if _, err := CalculatePricing(product, 1, offer); !errors.Is(err, ErrOfferRewardInvalid) {
		t.Fatalf("expected ErrOfferRewardInvalid, got %v", err)
	}
}
