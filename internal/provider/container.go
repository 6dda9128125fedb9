package provider

import (
	"github.com/procure-next/internal/cache"
	"github.com/procure-next/internal/config"
	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/queue"
	"github.com/procure-next/internal/repository"
	"github.com/procure-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	PreviewStore cache.PreviewStore

	// Repositories
	CompanyRepo repository.CompanyRepository
	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	OfferRepo   repository.OfferRepository
	OrderRepo   repository.OrderRepository

	// Services
	AuthService      *service.AuthService
	OfferService     *service.OfferService
	CatalogService   *service.CatalogService
	PreviewValidator *service.PreviewValidator
	OrderService     *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	if queueClient == nil {
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CompanyRepo = repository.NewCompanyRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	// Redis 不可用时退化为进程内预览缓存，仅适合单实例部署
	if cache.Enabled() {
		c.PreviewStore = cache.NewRedisPreviewStore()
	} else {
		logger.Warnw("provider_preview_store_fallback_memory")
		c.PreviewStore = cache.NewMemoryPreviewStore()
	}

	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.OfferService = service.NewOfferService(c.OfferRepo, c.ProductRepo)
	c.CatalogService = service.NewCatalogService(c.CompanyRepo, c.ProductRepo, c.OfferService)
	c.PreviewValidator = service.NewPreviewValidator(c.ProductRepo, c.OfferRepo, c.OfferService)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CompanyRepo,
		c.OfferRepo,
		c.OfferService,
		c.PreviewValidator,
		c.PreviewStore,
		c.QueueClient,
		c.Config.Order.PreviewExpireMinutes,
	)
}
