package service

import (
	"errors"
	"testing"
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
)

func TestCreateOrderVerifiedSubmission(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 12.50)
	offer := percentOffer(company.ID, product.ID, 10, 10)
	mustCreate(t, db, offer)

	order, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       25,
				UnitPrice:      moneyFromFloat(12.50),
				DiscountAmount: moneyFromFloat(25.00),
				FinalTotal:     moneyFromFloat(287.50),
				OfferID:        &offer.ID,
			},
		},
	}, testCustomer())
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 落库金额以服务端重算为准
	if order.Subtotal.String() != "312.50" || order.TotalAmount.String() != "287.50" {
		t.Fatalf("unexpected persisted totals: %s / %s", order.Subtotal.String(), order.TotalAmount.String())
	}
	if order.PreviewToken != "" {
		t.Fatalf("direct order should have no preview token, got %s", order.PreviewToken)
	}
	if len(order.Items) != 1 || order.Items[0].OfferID == nil || *order.Items[0].OfferID != offer.ID {
		t.Fatalf("order item should record applied offer: %+v", order.Items)
	}

	var logCount int64
	if err := db.Model(&models.OrderStatusLog{}).Where("order_id = ?", order.ID).Count(&logCount).Error; err != nil || logCount != 1 {
		t.Fatalf("expected 1 status log, got %d err=%v", logCount, err)
	}
}

func TestCreateOrderToleratesOneCentPriceDrift(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 12.50)

	// 单价允许一分钱漂移，总额仍须与服务端重算严格一致
	order, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:  product.ID,
				Quantity:   2,
				UnitPrice:  moneyFromFloat(12.51),
				FinalTotal: moneyFromFloat(25.00),
			},
		},
	}, testCustomer())
	if err != nil {
		t.Fatalf("one cent price drift should pass: %v", err)
	}
	if order.TotalAmount.String() != "25.00" {
		t.Fatalf("total want 25.00 got %s", order.TotalAmount.String())
	}
}

func TestCreateOrderNoOfferLineRequiresExactTotal(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 12.50)
	offer := percentOffer(company.ID, product.ID, 10, 10)
	mustCreate(t, db, offer)

	// 无活动的行：总额差一分也拒绝
	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:  product.ID,
				Quantity:   2,
				UnitPrice:  moneyFromFloat(12.50),
				FinalTotal: moneyFromFloat(25.01),
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrCalculationMismatch) {
		t.Fatalf("no-offer line drift should mismatch, got %v", err)
	}

	// 有活动的行：一分钱容差仍然放行
	order, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       25,
				UnitPrice:      moneyFromFloat(12.50),
				DiscountAmount: moneyFromFloat(25.01),
				FinalTotal:     moneyFromFloat(287.49),
				OfferID:        &offer.ID,
			},
		},
	}, testCustomer())
	if err != nil {
		t.Fatalf("offered line within tolerance should pass: %v", err)
	}
	if order.TotalAmount.String() != "287.50" {
		t.Fatalf("persisted total should be server-recomputed, got %s", order.TotalAmount.String())
	}
}

func TestCreateOrderStalePriceRejected(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 12.50)

	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:  product.ID,
				Quantity:   1,
				UnitPrice:  moneyFromFloat(11.90),
				FinalTotal: moneyFromFloat(11.90),
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrPriceStale) {
		t.Fatalf("expected ErrPriceStale, got %v", err)
	}
	if !errors.Is(err, ErrStaleData) {
		t.Fatalf("stale price should classify as stale data, got %v", err)
	}
	if errors.Is(err, ErrTampering) {
		t.Fatalf("stale price must not classify as tampering")
	}
}

func TestCreateOrderExpiredOfferRejected(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 10)
	past := time.Now().Add(-time.Hour)
	offer := fixedOffer(company.ID, product.ID, 1, 2)
	offer.EndAt = &past
	mustCreate(t, db, offer)

	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       1,
				UnitPrice:      moneyFromFloat(10),
				DiscountAmount: moneyFromFloat(2),
				FinalTotal:     moneyFromFloat(8),
				OfferID:        &offer.ID,
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrOfferExpired) || !errors.Is(err, ErrStaleData) {
		t.Fatalf("expected ErrOfferExpired (stale data), got %v", err)
	}
}

func TestCreateOrderOfferStateRejections(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 10)

	paused := fixedOffer(company.ID, product.ID, 1, 2)
	paused.Status = constants.OfferStatusPaused
	mustCreate(t, db, paused)

	future := time.Now().Add(time.Hour)
	notStarted := fixedOffer(company.ID, product.ID, 1, 2)
	notStarted.StartAt = &future
	mustCreate(t, db, notStarted)

	missing := uint(9999)

	cases := []struct {
		name    string
		offerID *uint
		target  error
	}{
		{"removed", &missing, ErrOfferRemoved},
		{"inactive", &paused.ID, ErrOfferInactive},
		{"not_started", &notStarted.ID, ErrOfferNotStarted},
	}
	for _, tc := range cases {
		_, err := svc.CreateOrder(CreateOrderInput{
			CompanyID: company.ID,
			Items: []CreateOrderItem{
				{
					ProductID:      product.ID,
					Quantity:       1,
					UnitPrice:      moneyFromFloat(10),
					DiscountAmount: moneyFromFloat(2),
					FinalTotal:     moneyFromFloat(8),
					OfferID:        tc.offerID,
				},
			},
		}, testCustomer())
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
		if !errors.Is(err, ErrStaleData) {
			t.Fatalf("%s: offer state drift should classify as stale data, got %v", tc.name, err)
		}
	}
}

func TestCreateOrderMinQtyTampering(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 10)
	offer := fixedOffer(company.ID, product.ID, 50, 5)
	mustCreate(t, db, offer)

	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       3,
				UnitPrice:      moneyFromFloat(10),
				DiscountAmount: moneyFromFloat(5),
				FinalTotal:     moneyFromFloat(25),
				OfferID:        &offer.ID,
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrOfferMinQtyNotMet) {
		t.Fatalf("expected ErrOfferMinQtyNotMet, got %v", err)
	}
	if !errors.Is(err, ErrTampering) {
		t.Fatalf("min qty violation should classify as tampering, got %v", err)
	}
}

func TestCreateOrderUntargetedOfferTampering(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 10)
	private := &models.Offer{
		CompanyID: company.ID,
		Title:     "vip only",
		Scope:     constants.OfferScopePrivate,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 1, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(2)},
		},
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomerTag, TargetID: 5}},
	}
	mustCreate(t, db, private)

	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       1,
				UnitPrice:      moneyFromFloat(10),
				DiscountAmount: moneyFromFloat(2),
				FinalTotal:     moneyFromFloat(8),
				OfferID:        &private.ID,
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrOfferNotTargeted) || !errors.Is(err, ErrTampering) {
		t.Fatalf("expected ErrOfferNotTargeted (tampering), got %v", err)
	}
}

func TestCreateOrderInflatedDiscountTampering(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 12.50)
	offer := percentOffer(company.ID, product.ID, 10, 10)
	mustCreate(t, db, offer)

	// 折扣应为 25.00，客户端虚报 100.00
	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{
				ProductID:      product.ID,
				Quantity:       25,
				UnitPrice:      moneyFromFloat(12.50),
				DiscountAmount: moneyFromFloat(100.00),
				FinalTotal:     moneyFromFloat(212.50),
				OfferID:        &offer.ID,
			},
		},
	}, testCustomer())
	if !errors.Is(err, ErrCalculationMismatch) {
		t.Fatalf("expected ErrCalculationMismatch, got %v", err)
	}
	if !errors.Is(err, ErrTampering) {
		t.Fatalf("inflated discount should classify as tampering, got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil || orderCount != 0 {
		t.Fatalf("tampered order must not persist, got %d err=%v", orderCount, err)
	}
}

func TestCreateOrderBonusVerification(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 8.90)
	offer := &models.Offer{
		CompanyID: company.ID,
		Title:     "film bonus",
		Scope:     constants.OfferScopePublic,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 20, RewardType: constants.RewardTypeBonusQty, BonusQty: 1},
		},
	}
	mustCreate(t, db, offer)
	customer := testCustomer()

	line := CreateOrderItem{
		ProductID:  product.ID,
		Quantity:   45,
		UnitPrice:  moneyFromFloat(8.90),
		FinalTotal: moneyFromFloat(400.50),
		OfferID:    &offer.ID,
	}

	// 漏报赠品
	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items:     []CreateOrderItem{line},
	}, customer)
	if !errors.Is(err, ErrCalculationMismatch) {
		t.Fatalf("missing bonus should mismatch, got %v", err)
	}

	// 虚报数量
	_, err = svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items:     []CreateOrderItem{line},
		Bonuses:   []CreateOrderBonus{{ItemIndex: 0, ProductID: product.ID, Quantity: 5}},
	}, customer)
	if !errors.Is(err, ErrCalculationMismatch) {
		t.Fatalf("inflated bonus qty should mismatch, got %v", err)
	}

	// 如实申报
	order, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items:     []CreateOrderItem{line},
		Bonuses:   []CreateOrderBonus{{ItemIndex: 0, ProductID: product.ID, Quantity: 2}},
	}, customer)
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if len(order.Items) != 1 || len(order.Items[0].Bonuses) != 1 {
		t.Fatalf("expected persisted bonus line, got %+v", order.Items)
	}
	bonus := order.Items[0].Bonuses[0]
	if bonus.ProductID != product.ID || bonus.Quantity != 2 {
		t.Fatalf("unexpected bonus row: %+v", bonus)
	}
}

func TestCreateOrderBonusIndexValidation(t *testing.T) {
	svc, _, db := setupOrderServiceTest(t, nil)
	company, product := seedCompanyAndProduct(t, db, 10)

	_, err := svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 1, UnitPrice: moneyFromFloat(10), FinalTotal: moneyFromFloat(10)},
		},
		Bonuses: []CreateOrderBonus{{ItemIndex: 3, ProductID: product.ID, Quantity: 1}},
	}, testCustomer())
	if !errors.Is(err, ErrBonusIndexInvalid) {
		t.Fatalf("expected ErrBonusIndexInvalid, got %v", err)
	}

	_, err = svc.CreateOrder(CreateOrderInput{
		CompanyID: company.ID,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 1, UnitPrice: moneyFromFloat(10), FinalTotal: moneyFromFloat(10)},
		},
		Bonuses: []CreateOrderBonus{
			{ItemIndex: 0, ProductID: product.ID, Quantity: 1},
			{ItemIndex: 0, ProductID: product.ID, Quantity: 1},
		},
	}, testCustomer())
	if !errors.Is(err, ErrBonusIndexDuplicate) {
		t.Fatalf("expected ErrBonusIndexDuplicate, got %v", err)
	}
}
