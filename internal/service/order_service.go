package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/procure-next/internal/cache"
	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/queue"
	"github.com/procure-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPreviewExpireMinutes = 15
	maxPreviewTokenAttempts     = 5
)

// OrderService 订单服务：预览、确认、直接下单与订单读写
type OrderService struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	companyRepo      repository.CompanyRepository
	offerRepo        repository.OfferRepository
	offerService     *OfferService
	previewValidator *PreviewValidator
	previewStore     cache.PreviewStore
	queueClient      *queue.Client
	previewExpireMin int
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	offerRepo repository.OfferRepository,
	offerService *OfferService,
	previewValidator *PreviewValidator,
	previewStore cache.PreviewStore,
	queueClient *queue.Client,
	previewExpireMinutes int,
) *OrderService {
	if previewExpireMinutes <= 0 {
		previewExpireMinutes = defaultPreviewExpireMinutes
	}
	return &OrderService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		companyRepo:      companyRepo,
		offerRepo:        offerRepo,
		offerService:     offerService,
		previewValidator: previewValidator,
		previewStore:     previewStore,
		queueClient:      queueClient,
		previewExpireMin: previewExpireMinutes,
	}
}

// PreviewOrderItem 预览请求订单行
type PreviewOrderItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// PreviewOrderInput 预览请求
type PreviewOrderInput struct {
	CompanyID uint               `json:"company_id" binding:"required"`
	Notes     string             `json:"notes"`
	Items     []PreviewOrderItem `json:"items" binding:"required"`
}

// PreviewOrder 计算订单预览并缓存快照
// 快照以 PV-{日期}-{4位十六进制} 令牌为键，TTL 内可确认
func (s *OrderService) PreviewOrder(ctx context.Context, input PreviewOrderInput, customer *models.User) (*cache.PreviewSnapshot, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, ErrNotCustomer
	}
	if err := s.checkCompany(input.CompanyID); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrInvalidOrderItem
	}

	seen := make(map[uint]struct{}, len(input.Items))
	lines := make([]cache.PreviewLine, 0, len(input.Items))
	subtotal := decimal.Zero
	totalDiscount := decimal.Zero
	finalTotal := decimal.Zero

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

		offer, err := s.offerService.SelectBestOffer(product, item.Quantity, customer)
		if err != nil {
			return nil, err
		}
		pricing, err := CalculatePricing(product, item.Quantity, offer)
		if err != nil {
			return nil, err
		}

		line := cache.PreviewLine{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPrice:      pricing.UnitPrice,
			DiscountAmount: pricing.DiscountAmount,
			FinalTotal:     pricing.FinalTotal,
		}
		if offer != nil {
			offerID := offer.ID
			line.OfferID = &offerID
			line.OfferTitle = offer.Title
			if offerItem := offerItemForProduct(offer, product.ID); offerItem != nil {
				line.RewardType = offerItem.RewardType
			}
		}
		line.Bonuses = buildPreviewBonuses(pricing.Bonuses, s.productRepo)
		lines = append(lines, line)

		subtotal = subtotal.Add(pricing.Subtotal.Decimal)
		totalDiscount = totalDiscount.Add(pricing.DiscountAmount.Decimal)
		finalTotal = finalTotal.Add(pricing.FinalTotal.Decimal)
	}

	snapshot := &cache.PreviewSnapshot{
		CustomerUserID: customer.ID,
		CompanyID:      input.CompanyID,
		Notes:          input.Notes,
		Items:          lines,
		Subtotal:       models.NewMoneyFromDecimal(subtotal),
		TotalDiscount:  models.NewMoneyFromDecimal(totalDiscount),
		FinalTotal:     models.NewMoneyFromDecimal(finalTotal),
		CreatedAt:      time.Now().Unix(),
	}

	ttl := time.Duration(s.previewExpireMin) * time.Minute
	stored := false
	for attempt := 0; attempt < maxPreviewTokenAttempts; attempt++ {
		snapshot.PreviewToken = generatePreviewToken()
		ok, err := s.previewStore.PutNX(ctx, snapshot, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			stored = true
			break
		}
		// 令牌碰撞，换一个重试
	}
	if !stored {
		return nil, ErrPreviewTokenExhausted
	}

	logger.Infow("order_preview_created",
		"preview_token", snapshot.PreviewToken,
		"user_id", customer.ID,
		"company_id", input.CompanyID,
		"item_count", len(lines),
		"final_total", snapshot.FinalTotal.String(),
	)
	return snapshot, nil
}

// ConfirmOrder 确认预览并落库
// 校验失败保留缓存键供客户端重新预览；其余失败删除缓存键避免令牌中毒
func (s *OrderService) ConfirmOrder(ctx context.Context, token string, customer *models.User) (*models.Order, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, ErrNotCustomer
	}

	snapshot, hit, err := s.previewStore.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !hit || snapshot == nil {
		return nil, ErrPreviewNotFound
	}
	if snapshot.CustomerUserID != customer.ID {
		// 防止令牌被分享或猜测后泄露他人报价
		if delErr := s.previewStore.Delete(ctx, token); delErr != nil {
			logger.Errorw("order_preview_delete_failed", "preview_token", token, "error", delErr)
		}
		return nil, ErrPreviewOwnership
	}

	var order *models.Order
	txErr := models.DB.Transaction(func(tx *gorm.DB) error {
		validation, err := s.previewValidator.WithTx(tx).Validate(snapshot, customer)
		if err != nil {
			return err
		}
		if !validation.Valid {
			return &PreviewInvalidatedError{Changes: validation.Changes}
		}

		created, err := s.persistSnapshot(tx, snapshot)
		if err != nil {
			return err
		}
		order = created
		return nil
	})
	if txErr != nil {
		var invalidated *PreviewInvalidatedError
		if errors.As(txErr, &invalidated) {
			logger.Infow("order_confirm_invalidated",
				"preview_token", token,
				"user_id", customer.ID,
				"change_count", len(invalidated.Changes),
			)
			return nil, txErr
		}
		if delErr := s.previewStore.Delete(ctx, token); delErr != nil {
			logger.Errorw("order_preview_delete_failed", "preview_token", token, "error", delErr)
		}
		logger.Errorw("order_confirm_persist_failed",
			"preview_token", token,
			"user_id", customer.ID,
			"error", txErr,
		)
		return nil, txErr
	}

	// 删除缓存键是最后一个成功步骤，重复确认自然落入 PreviewNotFound
	if delErr := s.previewStore.Delete(ctx, token); delErr != nil {
		logger.Errorw("order_preview_delete_failed", "preview_token", token, "error", delErr)
	}

	s.enqueueConfirmedEmail(order)
	logger.Infow("order_confirmed",
		"order_no", order.OrderNo,
		"preview_token", token,
		"user_id", customer.ID,
		"total_amount", order.TotalAmount.String(),
	)
	return order, nil
}

// persistSnapshot 在事务内将快照落库为订单
func (s *OrderService) persistSnapshot(tx *gorm.DB, snapshot *cache.PreviewSnapshot) (*models.Order, error) {
	now := time.Now()
	order := &models.Order{
		OrderNo:        generateOrderNo(),
		PreviewToken:   snapshot.PreviewToken,
		UserID:         snapshot.CustomerUserID,
		CompanyID:      snapshot.CompanyID,
		Status:         constants.OrderStatusPending,
		Notes:          snapshot.Notes,
		Subtotal:       snapshot.Subtotal,
		DiscountAmount: snapshot.TotalDiscount,
		TotalAmount:    snapshot.FinalTotal,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]models.OrderItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		item := models.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			UnitPrice:      line.UnitPrice,
			Quantity:       line.Quantity,
			DiscountAmount: line.DiscountAmount,
			FinalTotal:     line.FinalTotal,
			OfferID:        line.OfferID,
			OfferTitle:     line.OfferTitle,
			RewardType:     line.RewardType,
		}
		for _, bonus := range line.Bonuses {
			item.Bonuses = append(item.Bonuses, models.OrderItemBonus{
				ProductID:   bonus.ProductID,
				ProductName: bonus.ProductName,
				Quantity:    bonus.Quantity,
				OfferID:     bonus.OfferID,
				OfferTitle:  bonus.OfferTitle,
			})
		}
		items = append(items, item)
	}

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

// checkCompany 校验企业存在且启用
func (s *OrderService) checkCompany(companyID uint) error {
	company, err := s.companyRepo.GetByID(companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return ErrCompanyNotFound
	}
	if !company.IsActive {
		return ErrCompanyInactive
	}
	return nil
}

// checkProduct 校验商品存在、归属企业且在售
func (s *OrderService) checkProduct(productID, companyID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, productID)
	}
	if product.CompanyID != companyID {
		return nil, fmt.Errorf("%w: product %d", ErrProductCompanyMismatch, productID)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrProductNotSellable, product.Name)
	}
	return product, nil
}

// buildPreviewBonuses 填充赠品行的商品名快照
func buildPreviewBonuses(bonuses []BonusLine, productRepo repository.ProductRepository) []cache.PreviewBonus {
	if len(bonuses) == 0 {
		return nil
	}
	result := make([]cache.PreviewBonus, 0, len(bonuses))
	for _, bonus := range bonuses {
		preview := cache.PreviewBonus{
			ProductID:  bonus.ProductID,
			Quantity:   bonus.Quantity,
			OfferID:    bonus.OfferID,
			OfferTitle: bonus.OfferTitle,
		}
		if product, err := productRepo.GetByID(bonus.ProductID); err == nil && product != nil {
			preview.ProductName = product.Name
		}
		result = append(result, preview)
	}
	return result
}

func (s *OrderService) enqueueConfirmedEmail(order *models.Order) {
	if order == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderConfirmedEmail(queue.OrderConfirmedEmailPayload{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
		UserID:  order.UserID,
	}); err != nil {
		logger.Warnw("order_enqueue_confirmed_email_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// generatePreviewToken 生成预览令牌：PV-{YYYYMMDD}-{4位大写十六进制}
func generatePreviewToken() string {
	datePart := time.Now().Format("20060102")
	n, err := rand.Int(rand.Reader, big.NewInt(1<<16))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() & 0xFFFF)
	}
	return fmt.Sprintf("%s-%s-%04X", constants.PreviewTokenPrefix, datePart, n.Int64())
}

// generateOrderNo 生成订单编号
func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("PN%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	digits := make([]byte, 0, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			digits = append(digits, '0')
			continue
		}
		digits = append(digits, byte('0'+n.Int64()))
	}
	return string(digits)
}
