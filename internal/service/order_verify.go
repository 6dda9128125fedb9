package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/queue"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrderItem 直接下单提交的订单行（客户端预先算好的快照值）
type CreateOrderItem struct {
	ProductID      uint         `json:"product_id" binding:"required"`
	Quantity       int          `json:"quantity" binding:"required"`
	UnitPrice      models.Money `json:"unit_price"`
	DiscountAmount models.Money `json:"discount_amount"`
	FinalTotal     models.Money `json:"final_total"`
	OfferID        *uint        `json:"offer_id"`
}

// CreateOrderBonus 直接下单提交的赠品行，按行下标挂接
type CreateOrderBonus struct {
	ItemIndex int   `json:"item_index"`
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	OfferID   *uint `json:"offer_id"`
}

// CreateOrderInput 直接下单请求
type CreateOrderInput struct {
	CompanyID uint               `json:"company_id" binding:"required"`
	Notes     string             `json:"notes"`
	Items     []CreateOrderItem  `json:"items" binding:"required"`
	Bonuses   []CreateOrderBonus `json:"bonuses"`
}

// CreateOrder 直接下单：逐项核验客户端提交的价格、活动与计算结果后落库
// 任何核对不上的数字按过期数据或篡改拒绝，绝不信任客户端金额
func (s *OrderService) CreateOrder(input CreateOrderInput, customer *models.User) (*models.Order, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, ErrNotCustomer
	}
	if err := s.checkCompany(input.CompanyID); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidOrderItem
	}

	products := make(map[uint]*models.Product, len(input.Items))
	seen := make(map[uint]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return nil, ErrInvalidOrderItem
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, ErrDuplicateProduct
		}
		seen[item.ProductID] = struct{}{}

		product, err := s.checkProduct(item.ProductID, input.CompanyID)
		if err != nil {
			return nil, err
		}
		products[item.ProductID] = product
	}

	bonusesByLine, err := indexBonuses(input.Bonuses, len(input.Items))
	if err != nil {
		return nil, err
	}

	if err := s.verifyPrices(input.Items, products); err != nil {
		return nil, err
	}
	offers, err := s.verifyOffers(input.Items, customer, products)
	if err != nil {
		s.reportTampering(err, input, customer)
		return nil, err
	}
	results, err := s.verifyCalculations(input.Items, bonusesByLine, offers, products)
	if err != nil {
		s.reportTampering(err, input, customer)
		return nil, err
	}

	var order *models.Order
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		created, err := s.persistVerified(tx, input, customer, offers, results)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if txErr != nil {
		logger.Errorw("order_create_persist_failed",
			"user_id", customer.ID,
			"company_id", input.CompanyID,
			"error", txErr,
		)
		return nil, txErr
	}

	s.enqueueConfirmedEmail(order)
	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"user_id", customer.ID,
		"total_amount", order.TotalAmount.String(),
	)
	return order, nil
}

// verifyPrices 核验每行单价与商品当前价一致（容差一分钱）
func (s *OrderService) verifyPrices(items []CreateOrderItem, products map[uint]*models.Product) error {
	for _, item := range items {
		product := products[item.ProductID]
		livePrice := product.PriceAmount.Decimal.Round(2)
		if livePrice.Sub(item.UnitPrice.Decimal.Round(2)).Abs().GreaterThan(moneyTolerance) {
			return fmt.Errorf("%w: %s", ErrPriceStale, product.Name)
		}
	}
	return nil
}

// verifyOffers 核验每行选中的活动仍然生效且对该客户、该商品、该数量可用
// 返回按行下标索引的活动，供计算核验复用
func (s *OrderService) verifyOffers(items []CreateOrderItem, customer *models.User, products map[uint]*models.Product) (map[int]*models.Offer, error) {
	offers := make(map[int]*models.Offer)
	now := time.Now()
	for idx, item := range items {
		if item.OfferID == nil {
			continue
		}
		product := products[item.ProductID]

		offer, err := s.offerRepo.GetByID(*item.OfferID)
		if err != nil {
			return nil, err
		}
		if offer == nil {
			return nil, fmt.Errorf("%w: offer %d", ErrOfferRemoved, *item.OfferID)
		}
		if offer.Status != constants.OfferStatusActive {
			return nil, fmt.Errorf("%w: %s", ErrOfferInactive, offer.Title)
		}
		if offer.StartAt != nil && now.Before(*offer.StartAt) {
			return nil, fmt.Errorf("%w: %s", ErrOfferNotStarted, offer.Title)
		}
		if offer.EndAt != nil && now.After(*offer.EndAt) {
			return nil, fmt.Errorf("%w: %s", ErrOfferExpired, offer.Title)
		}

		offerItem := offerItemForProduct(offer, product.ID)
		if offerItem == nil {
			return nil, fmt.Errorf("%w: %s", ErrOfferProductMismatch, product.Name)
		}
		minQty := offerItem.MinQty
		if minQty < 1 {
			minQty = 1
		}
		if item.Quantity < minQty {
			return nil, fmt.Errorf("%w: %s", ErrOfferMinQtyNotMet, product.Name)
		}
		if offer.Scope == constants.OfferScopePrivate && !s.offerService.OfferTargetsCustomer(offer, customer) {
			return nil, fmt.Errorf("%w: %s", ErrOfferNotTargeted, offer.Title)
		}
		offers[idx] = offer
	}
	return offers, nil
}

// verifyCalculations 独立重算每行折扣、赠品与总额并与提交值比对（容差一分钱）
// 返回重算结果，落库以服务端数字为准
func (s *OrderService) verifyCalculations(
	items []CreateOrderItem,
	bonusesByLine map[int]CreateOrderBonus,
	offers map[int]*models.Offer,
	products map[uint]*models.Product,
) ([]*PricingResult, error) {
	results := make([]*PricingResult, len(items))
	for idx, item := range items {
		product := products[item.ProductID]
		expected, err := CalculatePricing(product, item.Quantity, offers[idx])
		if err != nil {
			return nil, err
		}
		results[idx] = expected

		// 无活动的行没有任何舍入分歧来源，金额必须严格相等；有活动的行容差一分钱
		tolerance := moneyTolerance
		if offers[idx] == nil {
			tolerance = decimal.Zero
		}
		if expected.DiscountAmount.Decimal.Sub(item.DiscountAmount.Decimal.Round(2)).Abs().GreaterThan(tolerance) {
			return nil, fmt.Errorf("%w: %s expected discount %s got %s",
				ErrCalculationMismatch, product.Name,
				expected.DiscountAmount.String(), item.DiscountAmount.String())
		}
		if expected.FinalTotal.Decimal.Sub(item.FinalTotal.Decimal.Round(2)).Abs().GreaterThan(tolerance) {
			return nil, fmt.Errorf("%w: %s expected total %s got %s",
				ErrCalculationMismatch, product.Name,
				expected.FinalTotal.String(), item.FinalTotal.String())
		}

		submitted, hasSubmitted := bonusesByLine[idx]
		expectBonus := len(expected.Bonuses) > 0
		if expectBonus != hasSubmitted {
			return nil, fmt.Errorf("%w: %s bonus mismatch", ErrCalculationMismatch, product.Name)
		}
		if expectBonus {
			want := expected.Bonuses[0]
			if submitted.ProductID != want.ProductID || submitted.Quantity != want.Quantity {
				return nil, fmt.Errorf("%w: %s expected bonus %dx%d got %dx%d",
					ErrCalculationMismatch, product.Name,
					want.ProductID, want.Quantity,
					submitted.ProductID, submitted.Quantity)
			}
		}
	}
	return results, nil
}

// persistVerified 在事务内将核验后的行落库为订单
func (s *OrderService) persistVerified(tx *gorm.DB, input CreateOrderInput, customer *models.User, offers map[int]*models.Offer, results []*PricingResult) (*models.Order, error) {
	now := time.Now()
	order := &models.Order{
		OrderNo:   generateOrderNo(),
		UserID:    customer.ID,
		CompanyID: input.CompanyID,
		Status:    constants.OrderStatusPending,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	subtotal := decimal.Zero
	totalDiscount := decimal.Zero
	finalTotal := decimal.Zero

	items := make([]models.OrderItem, 0, len(input.Items))
	for idx, submitted := range input.Items {
		result := results[idx]
		item := models.OrderItem{
			ProductID:      submitted.ProductID,
			Quantity:       submitted.Quantity,
			UnitPrice:      result.UnitPrice,
			DiscountAmount: result.DiscountAmount,
			FinalTotal:     result.FinalTotal,
		}
		if offer := offers[idx]; offer != nil {
			offerID := offer.ID
			item.OfferID = &offerID
			item.OfferTitle = offer.Title
			if offerItem := offerItemForProduct(offer, submitted.ProductID); offerItem != nil {
				item.RewardType = offerItem.RewardType
			}
		}
		for _, bonus := range result.Bonuses {
			bonusItem := models.OrderItemBonus{
				ProductID:  bonus.ProductID,
				Quantity:   bonus.Quantity,
				OfferID:    bonus.OfferID,
				OfferTitle: bonus.OfferTitle,
			}
			if product, err := s.productRepo.WithTx(tx).GetByID(bonus.ProductID); err == nil && product != nil {
				bonusItem.ProductName = product.Name
			}
			item.Bonuses = append(item.Bonuses, bonusItem)
		}
		if product, err := s.productRepo.WithTx(tx).GetByID(submitted.ProductID); err == nil && product != nil {
			item.ProductName = product.Name
		}
		items = append(items, item)

		subtotal = subtotal.Add(result.Subtotal.Decimal)
		totalDiscount = totalDiscount.Add(result.DiscountAmount.Decimal)
		finalTotal = finalTotal.Add(result.FinalTotal.Decimal)
	}

	order.Subtotal = models.NewMoneyFromDecimal(subtotal)
	order.DiscountAmount = models.NewMoneyFromDecimal(totalDiscount)
	order.TotalAmount = models.NewMoneyFromDecimal(finalTotal)

	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.Create(order, items); err != nil {
		return nil, err
	}
	if err := orderRepo.CreateStatusLog(&models.OrderStatusLog{
		OrderID:  order.ID,
		ToStatus: constants.OrderStatusPending,
		Note:     "order created",
	}); err != nil {
		return nil, err
	}
	return order, nil
}

// indexBonuses 校验赠品行下标合法且每行至多一个赠品
func indexBonuses(bonuses []CreateOrderBonus, lineCount int) (map[int]CreateOrderBonus, error) {
	result := make(map[int]CreateOrderBonus, len(bonuses))
	for _, bonus := range bonuses {
		if bonus.ItemIndex < 0 || bonus.ItemIndex >= lineCount {
			return nil, ErrBonusIndexInvalid
		}
		if _, dup := result[bonus.ItemIndex]; dup {
			return nil, ErrBonusIndexDuplicate
		}
		result[bonus.ItemIndex] = bonus
	}
	return result, nil
}

// reportTampering 将篡改类拒绝异步上报，供风控侧分析
func (s *OrderService) reportTampering(err error, input CreateOrderInput, customer *models.User) {
	if !errors.Is(err, ErrTampering) {
		return
	}
	logger.Warnw("order_tampering_rejected",
		"user_id", customer.ID,
		"company_id", input.CompanyID,
		"error", err,
	)
	if enqueueErr := s.queueClient.EnqueueTamperingReport(queue.TamperingReportPayload{
		UserID:    customer.ID,
		CompanyID: input.CompanyID,
		Detail:    err.Error(),
	}); enqueueErr != nil {
		logger.Warnw("order_enqueue_tampering_report_failed", "error", enqueueErr)
	}
}
