package service

import (
	"time"

	"github.com/procure-next/internal/cache"
	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/repository"

	"gorm.io/gorm"
)

// PreviewValidation 预览快照重校验结果
type PreviewValidation struct {
	Valid   bool            `json:"valid"`
	Changes []PreviewChange `json:"changes"`
}

// PreviewValidator 预览快照重校验器
// 对快照中每一行按当前数据重跑选择与定价，产出结构化差异而不是错误
type PreviewValidator struct {
	productRepo  repository.ProductRepository
	offerRepo    repository.OfferRepository
	offerService *OfferService
}

// NewPreviewValidator 创建预览快照重校验器
func NewPreviewValidator(productRepo repository.ProductRepository, offerRepo repository.OfferRepository, offerService *OfferService) *PreviewValidator {
	return &PreviewValidator{
		productRepo:  productRepo,
		offerRepo:    offerRepo,
		offerService: offerService,
	}
}

// WithTx 绑定事务
func (v *PreviewValidator) WithTx(tx *gorm.DB) *PreviewValidator {
	if tx == nil {
		return v
	}
	return &PreviewValidator{
		productRepo:  v.productRepo.WithTx(tx),
		offerRepo:    v.offerRepo.WithTx(tx),
		offerService: v.offerService.WithTx(tx),
	}
}

// Validate 按当前数据重校验预览快照
func (v *PreviewValidator) Validate(snapshot *cache.PreviewSnapshot, customer *models.User) (*PreviewValidation, error) {
	validation := &PreviewValidation{Valid: true, Changes: []PreviewChange{}}

	for i := range snapshot.Items {
		line := &snapshot.Items[i]
		product, err := v.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			validation.Changes = append(validation.Changes, PreviewChange{
				Type:          constants.PreviewChangePriceChanged,
				ProductID:     line.ProductID,
				ProductName:   line.ProductName,
				PreviousPrice: line.UnitPrice.String(),
			})
			continue
		}

		livePrice := product.PriceAmount.Decimal.Round(2)
		if livePrice.Sub(line.UnitPrice.Decimal).Abs().GreaterThan(moneyTolerance) {
			validation.Changes = append(validation.Changes, PreviewChange{
				Type:          constants.PreviewChangePriceChanged,
				ProductID:     product.ID,
				ProductName:   product.Name,
				PreviousPrice: line.UnitPrice.String(),
				CurrentPrice:  models.NewMoneyFromDecimal(livePrice).String(),
			})
		}

		current, err := v.offerService.SelectBestOffer(product, line.Quantity, customer)
		if err != nil {
			return nil, err
		}
		if sameOfferSelection(line.OfferID, current) {
			continue
		}

		change := PreviewChange{
			Type:               constants.PreviewChangeBestOfferChanged,
			ProductID:          product.ID,
			ProductName:        product.Name,
			PreviousOfferID:    line.OfferID,
			PreviousOfferTitle: line.OfferTitle,
			PreviousRewardType: line.RewardType,
		}
		if current != nil {
			currentID := current.ID
			change.CurrentOfferID = &currentID
			change.CurrentOfferTitle = current.Title
			if item := offerItemForProduct(current, product.ID); item != nil {
				change.CurrentRewardType = item.RewardType
			}
		}
		if line.OfferID != nil {
			reason, err := v.changeReason(*line.OfferID, line.Quantity, product.ID, customer)
			if err != nil {
				return nil, err
			}
			change.ChangeReason = reason
		} else {
			change.ChangeReason = constants.ChangeReasonNewBetterOffer
		}
		validation.Changes = append(validation.Changes, change)
	}

	validation.Valid = len(validation.Changes) == 0
	return validation, nil
}

// changeReason 检查原活动的当前状态，推导最优活动变化的原因
func (v *PreviewValidator) changeReason(previousOfferID uint, qty int, productID uint, customer *models.User) (string, error) {
	previous, err := v.offerRepo.GetByID(previousOfferID)
	if err != nil {
		return "", err
	}
	if previous == nil {
		return constants.ChangeReasonRemoved, nil
	}

	now := time.Now()
	if previous.Status != constants.OfferStatusActive {
		return constants.ChangeReasonBecameInactive, nil
	}
	if previous.StartAt != nil && now.Before(*previous.StartAt) {
		return constants.ChangeReasonNotStarted, nil
	}
	if previous.EndAt != nil && now.After(*previous.EndAt) {
		return constants.ChangeReasonExpired, nil
	}
	if previous.Scope == constants.OfferScopePrivate && !v.offerService.OfferTargetsCustomer(previous, customer) {
		return constants.ChangeReasonTargetingChanged, nil
	}
	if offerItemForProduct(previous, productID) == nil {
		return constants.ChangeReasonRemoved, nil
	}
	// 原活动本身仍然可用，只是被更优活动取代
	return constants.ChangeReasonNewBetterOffer, nil
}

func sameOfferSelection(previousID *uint, current *models.Offer) bool {
	if previousID == nil {
		return current == nil
	}
	return current != nil && current.ID == *previousID
}
