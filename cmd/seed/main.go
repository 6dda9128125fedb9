package main

import (
	"time"

	"github.com/procure-next/internal/config"
	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 企业
	company := models.Company{
		Name:         "Northwind Supplies",
		ContactEmail: "sales@northwind.example.com",
		IsActive:     true,
	}
	var existingCompany models.Company
	if err := models.DB.Where("name = ?", company.Name).First(&existingCompany).Error; err != nil {
		if err := models.DB.Create(&company).Error; err != nil {
			stdLog.Fatalf("Failed to create company: %v", err)
		}
		stdLog.Printf("Created company: %s", company.Name)
	} else {
		company = existingCompany
		stdLog.Printf("Company already exists: %s", company.Name)
	}

	// 客户分类与标签
	category := models.CustomerCategory{Name: "wholesale"}
	var existingCategory models.CustomerCategory
	if err := models.DB.Where("name = ?", category.Name).First(&existingCategory).Error; err != nil {
		if err := models.DB.Create(&category).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", category.Name, err)
		} else {
			stdLog.Printf("Created category: %s", category.Name)
		}
	} else {
		category = existingCategory
		stdLog.Printf("Category already exists: %s", category.Name)
	}

	tag := models.CustomerTag{Name: "vip"}
	var existingTag models.CustomerTag
	if err := models.DB.Where("name = ?", tag.Name).First(&existingTag).Error; err != nil {
		if err := models.DB.Create(&tag).Error; err != nil {
			stdLog.Printf("Failed to create tag %s: %v", tag.Name, err)
		} else {
			stdLog.Printf("Created tag: %s", tag.Name)
		}
	} else {
		tag = existingTag
		stdLog.Printf("Tag already exists: %s", tag.Name)
	}

	// 客户账号
	customerEmail := "buyer@acme.example.com"
	var existingUser models.User
	if err := models.DB.Where("email = ?", customerEmail).First(&existingUser).Error; err != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("buyer123456"), bcrypt.DefaultCost)
		if hashErr != nil {
			stdLog.Fatalf("Failed to hash password: %v", hashErr)
		}
		customer := models.User{
			Email:        customerEmail,
			PasswordHash: string(hash),
			DisplayName:  "Acme Buyer",
			UserType:     constants.UserTypeCustomer,
			CategoryID:   &category.ID,
			Status:       constants.UserStatusActive,
			Tags:         []models.CustomerTag{tag},
		}
		if err := models.DB.Create(&customer).Error; err != nil {
			stdLog.Fatalf("Failed to create customer: %v", err)
		}
		stdLog.Printf("Created customer: %s (password: buyer123456)", customerEmail)
	} else {
		stdLog.Printf("Customer already exists: %s", customerEmail)
	}

	// 商品
	products := []models.Product{
		{
			CompanyID:   company.ID,
			Name:        "Thermal Label Roll 100x150",
			Description: "Self-adhesive thermal labels, 500 per roll",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
			Tags:        models.StringArray([]string{"labels", "consumables"}),
			IsActive:    true,
		},
		{
			CompanyID:   company.ID,
			Name:        "Corrugated Box M",
			Description: "Double-wall shipping box, 400x300x300",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(2.35)),
			Tags:        models.StringArray([]string{"packaging"}),
			IsActive:    true,
		},
		{
			CompanyID:   company.ID,
			Name:        "Stretch Film 500mm",
			Description: "Machine-grade pallet wrap, 23 micron",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(8.90)),
			Tags:        models.StringArray([]string{"packaging", "consumables"}),
			IsActive:    true,
		},
	}
	productIDs := map[string]uint{}
	for _, p := range products {
		var existing models.Product
		if err := models.DB.Where("company_id = ? AND name = ?", p.CompanyID, p.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", p.Name, err)
				continue
			}
			stdLog.Printf("Created product: %s", p.Name)
			productIDs[p.Name] = p.ID
		} else {
			stdLog.Printf("Product already exists: %s", existing.Name)
			productIDs[existing.Name] = existing.ID
		}
	}

	labelID := productIDs["Thermal Label Roll 100x150"]
	boxID := productIDs["Corrugated Box M"]
	filmID := productIDs["Stretch Film 500mm"]

	endAt := time.Now().AddDate(0, 3, 0)
	offers := []models.Offer{
		{
			CompanyID:   company.ID,
			Title:       "Label volume discount",
			Description: "10% off labels for orders of 10 rolls or more",
			Scope:       constants.OfferScopePublic,
			Status:      constants.OfferStatusActive,
			EndAt:       &endAt,
			Items: []models.OfferItem{
				{
					ProductID:       labelID,
					MinQty:          10,
					RewardType:      constants.RewardTypeDiscountPercent,
					DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
				},
			},
		},
		{
			CompanyID:   company.ID,
			Title:       "Box bundle rebate",
			Description: "1.50 off per 50 boxes",
			Scope:       constants.OfferScopePublic,
			Status:      constants.OfferStatusActive,
			Items: []models.OfferItem{
				{
					ProductID:     boxID,
					MinQty:        50,
					RewardType:    constants.RewardTypeDiscountFixed,
					DiscountFixed: models.NewMoneyFromDecimal(decimal.NewFromFloat(1.50)),
				},
			},
		},
		{
			CompanyID:   company.ID,
			Title:       "Wholesale film bonus",
			Description: "1 free roll per 20 for wholesale customers",
			Scope:       constants.OfferScopePrivate,
			Status:      constants.OfferStatusActive,
			Items: []models.OfferItem{
				{
					ProductID:  filmID,
					MinQty:     20,
					RewardType: constants.RewardTypeBonusQty,
					BonusQty:   1,
				},
			},
			Targets: []models.OfferTarget{
				{TargetType: constants.TargetTypeCustomerCategory, TargetID: category.ID},
				{TargetType: constants.TargetTypeCustomerTag, TargetID: tag.ID},
			},
		},
	}
	for _, offer := range offers {
		var existing models.Offer
		if err := models.DB.Where("company_id = ? AND title = ?", offer.CompanyID, offer.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&offer).Error; err != nil {
				stdLog.Printf("Failed to create offer %s: %v", offer.Title, err)
			} else {
				stdLog.Printf("Created offer: %s", offer.Title)
			}
		} else {
			stdLog.Printf("Offer already exists: %s", existing.Title)
		}
	}

	stdLog.Printf("Seed finished")
}
