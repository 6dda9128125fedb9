package router

import (
	"fmt"
	"strings"

	"github.com/procure-next/internal/cache"
	"github.com/procure-next/internal/config"
	"github.com/procure-next/internal/constants"
	publichandlers "github.com/procure-next/internal/http/handlers/public"
	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	previewRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:preview", redisPrefix),
		WindowSeconds: cfg.Security.PreviewRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PreviewRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", publicHandler.Login)
		}

		// 客户接口（需鉴权）
		customer := apiV1.Group("")
		customer.Use(CustomerJWTAuthMiddleware(cfg.JWT.SecretKey, c.UserRepo))
		{
			customer.GET("/me", publicHandler.Me)
			customer.GET("/companies/:id/products", publicHandler.ListCompanyProducts)
			customer.GET("/companies/:id/offers", publicHandler.ListCompanyOffers)
			customer.POST("/orders/preview", RateLimitMiddleware(redisClient, previewRule, KeyByUser), publicHandler.PreviewOrder)
			customer.POST("/orders/confirm", publicHandler.ConfirmOrder)
			customer.POST("/orders", publicHandler.CreateOrder)
			customer.GET("/orders", publicHandler.ListOrders)
			customer.GET("/orders/:id", publicHandler.GetOrder)
			customer.POST("/orders/:id/cancel", publicHandler.CancelOrder)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
