package service

import (
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/repository"
)

// CatalogService 目录服务：客户可见的商品与活动读侧
type CatalogService struct {
	companyRepo  repository.CompanyRepository
	productRepo  repository.ProductRepository
	offerService *OfferService
}

// NewCatalogService 创建目录服务
func NewCatalogService(companyRepo repository.CompanyRepository, productRepo repository.ProductRepository, offerService *OfferService) *CatalogService {
	return &CatalogService{
		companyRepo:  companyRepo,
		productRepo:  productRepo,
		offerService: offerService,
	}
}

// ListCompanyProducts 查询企业在售商品列表
func (s *CatalogService) ListCompanyProducts(companyID uint, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	if err := s.checkCompany(companyID); err != nil {
		return nil, 0, err
	}
	filter.CompanyID = companyID
	filter.OnlyActive = true
	return s.productRepo.List(filter)
}

// ListCompanyOffers 查询企业当前生效且对客户可见的活动
// 诚实客户端基于该列表预先计算预览价格
func (s *CatalogService) ListCompanyOffers(companyID uint, customer *models.User) ([]models.Offer, error) {
	if err := s.checkCompany(companyID); err != nil {
		return nil, err
	}
	return s.offerService.ListEffectiveForCustomer(companyID, customer)
}

func (s *CatalogService) checkCompany(companyID uint) error {
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
