package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOfferServiceTest(t *testing.T) (*OfferService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:offer_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Company{},
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
		&models.OfferTarget{},
		&models.User{},
		&models.CustomerCategory{},
		&models.CustomerTag{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOfferService(repository.NewOfferRepository(db), repository.NewProductRepository(db)), db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T failed: %v", value, err)
	}
}

func testCustomer() *models.User {
	return &models.User{ID: 101, UserType: constants.UserTypeCustomer, Status: constants.UserStatusActive}
}

func percentOffer(companyID, productID uint, minQty int, percent float64) *models.Offer {
	return &models.Offer{
		CompanyID: companyID,
		Title:     fmt.Sprintf("percent %v", percent),
		Scope:     constants.OfferScopePublic,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: productID, MinQty: minQty, RewardType: constants.RewardTypeDiscountPercent, DiscountPercent: moneyFromFloat(percent)},
		},
	}
}

func fixedOffer(companyID, productID uint, minQty int, amount float64) *models.Offer {
	return &models.Offer{
		CompanyID: companyID,
		Title:     fmt.Sprintf("fixed %v", amount),
		Scope:     constants.OfferScopePublic,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: productID, MinQty: minQty, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(amount)},
		},
	}
}

func TestSelectBestOfferHighestValueWins(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "labels", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)
	mustCreate(t, db, percentOffer(1, product.ID, 1, 10))
	better := percentOffer(1, product.ID, 1, 15)
	mustCreate(t, db, better)

	best, err := svc.SelectBestOffer(product, 5, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != better.ID {
		t.Fatalf("expected offer %d, got %+v", better.ID, best)
	}
}

func TestSelectBestOfferZeroMultiplierExcluded(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "boxes", PriceAmount: moneyFromFloat(2.35), IsActive: true}
	mustCreate(t, db, product)
	offer := fixedOffer(1, product.ID, 10, 1.50)
	mustCreate(t, db, offer)

	best, err := svc.SelectBestOffer(product, 9, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best != nil {
		t.Fatalf("qty below min_qty should yield no offer, got %d", best.ID)
	}

	best, err = svc.SelectBestOffer(product, 10, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != offer.ID {
		t.Fatalf("qty at min_qty should yield the offer, got %+v", best)
	}
}

func TestSelectBestOfferTieDiscountBeatsBonus(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	// 赠品价值 = 1 × 10.00 = 10.00，与固定折扣 10.00 持平
	bonus := &models.Offer{
		CompanyID: 1,
		Title:     "bonus",
		Scope:     constants.OfferScopePublic,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 10, RewardType: constants.RewardTypeBonusQty, BonusQty: 1},
		},
	}
	mustCreate(t, db, bonus)
	discount := fixedOffer(1, product.ID, 10, 10)
	mustCreate(t, db, discount)

	best, err := svc.SelectBestOffer(product, 10, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != discount.ID {
		t.Fatalf("discount should beat bonus on equal value, got %+v", best)
	}
}

func TestSelectBestOfferTieEarlierEndAtWins(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	farEnd := time.Now().Add(72 * time.Hour)
	nearEnd := time.Now().Add(24 * time.Hour)

	open := fixedOffer(1, product.ID, 1, 5)
	mustCreate(t, db, open) // end_at 为空，排最后
	far := fixedOffer(1, product.ID, 1, 5)
	far.EndAt = &farEnd
	mustCreate(t, db, far)
	near := fixedOffer(1, product.ID, 1, 5)
	near.EndAt = &nearEnd
	mustCreate(t, db, near)

	best, err := svc.SelectBestOffer(product, 1, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != near.ID {
		t.Fatalf("earliest end_at should win, expected %d got %+v", near.ID, best)
	}
}

func TestSelectBestOfferTieLowestIDWins(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	first := fixedOffer(1, product.ID, 1, 5)
	mustCreate(t, db, first)
	second := fixedOffer(1, product.ID, 1, 5)
	mustCreate(t, db, second)

	best, err := svc.SelectBestOffer(product, 1, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != first.ID {
		t.Fatalf("lowest id should win, expected %d got %+v", first.ID, best)
	}
}

func TestSelectBestOfferSkipsInactiveAndOutOfWindow(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	paused := fixedOffer(1, product.ID, 1, 20)
	paused.Status = constants.OfferStatusPaused
	mustCreate(t, db, paused)

	past := time.Now().Add(-time.Hour)
	expired := fixedOffer(1, product.ID, 1, 20)
	expired.EndAt = &past
	mustCreate(t, db, expired)

	future := time.Now().Add(time.Hour)
	notStarted := fixedOffer(1, product.ID, 1, 20)
	notStarted.StartAt = &future
	mustCreate(t, db, notStarted)

	live := fixedOffer(1, product.ID, 1, 1)
	mustCreate(t, db, live)

	best, err := svc.SelectBestOffer(product, 1, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != live.ID {
		t.Fatalf("only live offer should remain, expected %d got %+v", live.ID, best)
	}
}

func TestOfferTargetsCustomer(t *testing.T) {
	svc, _ := setupOfferServiceTest(t)

	categoryID := uint(7)
	customer := &models.User{
		ID:         101,
		UserType:   constants.UserTypeCustomer,
		CategoryID: &categoryID,
		Tags:       []models.CustomerTag{{ID: 3, Name: "vip"}},
	}

	public := &models.Offer{Scope: constants.OfferScopePublic}
	if !svc.OfferTargetsCustomer(public, customer) {
		t.Fatalf("public offer should target everyone")
	}

	direct := &models.Offer{
		Scope:   constants.OfferScopePrivate,
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomer, TargetID: 101}},
	}
	if !svc.OfferTargetsCustomer(direct, customer) {
		t.Fatalf("direct customer target should match")
	}

	byCategory := &models.Offer{
		Scope:   constants.OfferScopePrivate,
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomerCategory, TargetID: 7}},
	}
	if !svc.OfferTargetsCustomer(byCategory, customer) {
		t.Fatalf("category target should match")
	}

	byTag := &models.Offer{
		Scope:   constants.OfferScopePrivate,
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomerTag, TargetID: 3}},
	}
	if !svc.OfferTargetsCustomer(byTag, customer) {
		t.Fatalf("tag target should match")
	}

	miss := &models.Offer{
		Scope: constants.OfferScopePrivate,
		Targets: []models.OfferTarget{
			{TargetType: constants.TargetTypeCustomer, TargetID: 999},
			{TargetType: constants.TargetTypeCustomerCategory, TargetID: 999},
			{TargetType: constants.TargetTypeCustomerTag, TargetID: 999},
		},
	}
	if svc.OfferTargetsCustomer(miss, customer) {
		t.Fatalf("unmatched private targets should not match")
	}
}

func TestSelectBestOfferPrivateTargeting(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	private := &models.Offer{
		CompanyID: 1,
		Title:     "vip only",
		Scope:     constants.OfferScopePrivate,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 1, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(2)},
		},
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomerTag, TargetID: 5}},
	}
	mustCreate(t, db, private)

	outsider := testCustomer()
	best, err := svc.SelectBestOffer(product, 1, outsider)
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best != nil {
		t.Fatalf("untargeted customer should see no offer, got %d", best.ID)
	}

	vip := testCustomer()
	vip.Tags = []models.CustomerTag{{ID: 5, Name: "vip"}}
	best, err = svc.SelectBestOffer(product, 1, vip)
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != private.ID {
		t.Fatalf("targeted customer should see the private offer, got %+v", best)
	}
}

func TestListEffectiveForCustomer(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)

	live := fixedOffer(1, product.ID, 1, 1)
	mustCreate(t, db, live)

	paused := fixedOffer(1, product.ID, 1, 1)
	paused.Status = constants.OfferStatusPaused
	mustCreate(t, db, paused)

	private := &models.Offer{
		CompanyID: 1,
		Title:     "private",
		Scope:     constants.OfferScopePrivate,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 1, RewardType: constants.RewardTypeDiscountFixed, DiscountFixed: moneyFromFloat(1)},
		},
		Targets: []models.OfferTarget{{TargetType: constants.TargetTypeCustomer, TargetID: 999}},
	}
	mustCreate(t, db, private)

	offers, err := svc.ListEffectiveForCustomer(1, testCustomer())
	if err != nil {
		t.Fatalf("ListEffectiveForCustomer error: %v", err)
	}
	if len(offers) != 1 || offers[0].ID != live.ID {
		t.Fatalf("expected only the live public offer, got %+v", offers)
	}
}

func TestEffectiveValueBonusUsesBonusProductPrice(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	product := &models.Product{CompanyID: 1, Name: "film", PriceAmount: moneyFromFloat(10), IsActive: true}
	mustCreate(t, db, product)
	cheap := &models.Product{CompanyID: 1, Name: "sample", PriceAmount: moneyFromFloat(0.50), IsActive: true}
	mustCreate(t, db, cheap)

	// 赠便宜商品的活动价值低于直接折扣
	bonus := &models.Offer{
		CompanyID: 1,
		Title:     "cheap bonus",
		Scope:     constants.OfferScopePublic,
		Status:    constants.OfferStatusActive,
		Items: []models.OfferItem{
			{ProductID: product.ID, MinQty: 1, RewardType: constants.RewardTypeBonusQty, BonusQty: 1, BonusProductID: &cheap.ID},
		},
	}
	mustCreate(t, db, bonus)
	discount := fixedOffer(1, product.ID, 1, 1)
	mustCreate(t, db, discount)

	best, err := svc.SelectBestOffer(product, 1, testCustomer())
	if err != nil {
		t.Fatalf("SelectBestOffer error: %v", err)
	}
	if best == nil || best.ID != discount.ID {
		t.Fatalf("1.00 discount should beat 0.50 bonus, got %+v", best)
	}
}
