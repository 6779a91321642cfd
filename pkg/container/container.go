package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	infraCache "shop-backend/internal/infrastructure/cache"
	"shop-backend/internal/infrastructure/database"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/jwt"
	"shop-backend/pkg/logger"

	cartHandler "shop-backend/internal/domains/cart/handler"
	cartRepo "shop-backend/internal/domains/cart/repository"
	cartService "shop-backend/internal/domains/cart/service"
	catalogHandler "shop-backend/internal/domains/catalog/handler"
	catalogRepo "shop-backend/internal/domains/catalog/repository"
	catalogService "shop-backend/internal/domains/catalog/service"
	couponHandler "shop-backend/internal/domains/coupon/handler"
	couponRepo "shop-backend/internal/domains/coupon/repository"
	couponService "shop-backend/internal/domains/coupon/service"
	orderHandler "shop-backend/internal/domains/order/handler"
	orderRepo "shop-backend/internal/domains/order/repository"
	orderService "shop-backend/internal/domains/order/service"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/gateway/momo"
	"shop-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "shop-backend/internal/domains/payment/handler"
	paymentModel "shop-backend/internal/domains/payment/model"
	paymentRepo "shop-backend/internal/domains/payment/repository"
	paymentService "shop-backend/internal/domains/payment/service"
)

// Container is the root of the dependency graph. Both binaries build
// one; the API wires handlers into the router, the worker wires
// services into task handlers.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	RedisClient *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	CatalogRepo catalogRepo.RepositoryInterface
	CartRepo    cartRepo.RepositoryInterface
	CouponRepo  couponRepo.RepositoryInterface
	OrderRepo   orderRepo.RepositoryInterface
	PaymentRepo paymentRepo.RepositoryInterface

	Gateways *gateway.Registry

	CatalogService catalogService.ServiceInterface
	CartService    cartService.ServiceInterface
	CouponService  couponService.ServiceInterface
	OrderService   orderService.ServiceInterface
	PaymentService paymentService.ServiceInterface

	CatalogHandler     *catalogHandler.Handler
	CartHandler        *cartHandler.Handler
	CouponPublic       *couponHandler.PublicHandler
	CouponAdmin        *couponHandler.AdminHandler
	OrderHandler       *orderHandler.Handler
	PaymentHTTPHandler *paymentHandler.Handler
}

// NewContainer builds the graph bottom-up: config, infrastructure,
// repositories, gateways, services, handlers.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.initRepositories()
	c.initGateways()
	c.initServices()
	c.initHandlers()

	logger.Info("container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	return c, nil
}

func (c *Container) initInfrastructure() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	redisClient := infraCache.NewRedisClient(
		c.Config.Redis.Host,
		c.Config.Redis.Password,
		c.Config.Redis.DB,
	)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Variant lookups fall back to the database when redis is down.
		logger.Warn("redis connection failed, cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.RedisClient = redisClient
	c.Cache = infraCache.NewRedisCache(redisClient.Client)

	c.JWTManager = jwt.NewManager(c.Config.JWT.Secret)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool, c.Cache)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.CouponRepo = couponRepo.NewPostgresRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(pool)
	c.PaymentRepo = paymentRepo.NewPostgresRepository(pool)
}

// initGateways registers every gateway whose credentials are
// configured. An unconfigured gateway is simply absent from the
// registry and its method rejected as unsupported.
func (c *Container) initGateways() {
	c.Gateways = gateway.NewRegistry()

	expiry := time.Duration(c.Config.Payment.ExpiryMinutes) * time.Minute

	vnpayGateway, err := vnpay.New(vnpay.NewConfig(
		c.Config.VNPay.TmnCode,
		c.Config.VNPay.HashSecret,
		c.Config.VNPay.APIURL,
		c.Config.VNPay.ReturnURL,
		c.Config.VNPay.IPNURL,
		expiry,
	))
	if err != nil {
		logger.Warn("vnpay gateway not registered", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.Gateways.Register(paymentModel.MethodVNPay, vnpayGateway)
	}

	momoGateway, err := momo.New(momo.NewConfig(
		c.Config.Momo.PartnerCode,
		c.Config.Momo.AccessKey,
		c.Config.Momo.SecretKey,
		c.Config.Momo.APIURL,
		c.Config.Momo.ReturnURL,
		c.Config.Momo.IPNURL,
	))
	if err != nil {
		logger.Warn("momo gateway not registered", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.Gateways.Register(paymentModel.MethodMomo, momoGateway)
	}
}

func (c *Container) initServices() {
	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo, c.Cache)
	c.CartService = cartService.NewCartService(c.CartRepo, c.CatalogRepo)
	c.CouponService = couponService.NewCouponService(c.CouponRepo)
	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.CatalogRepo,
		c.CartRepo,
		c.CouponService,
		c.AsynqClient,
	)
	c.PaymentService = paymentService.NewService(
		c.PaymentRepo,
		c.OrderRepo,
		c.Gateways,
		paymentService.Config{
			MaxRetries:      c.Config.Payment.MaxRetries,
			Expiry:          time.Duration(c.Config.Payment.ExpiryMinutes) * time.Minute,
			CancelBatchSize: c.Config.Job.ExpiredPaymentBatch,
		},
	)
}

func (c *Container) initHandlers() {
	c.CatalogHandler = catalogHandler.NewHandler(c.CatalogService)
	c.CartHandler = cartHandler.NewHandler(c.CartService, c.OrderService)
	c.CouponPublic = couponHandler.NewPublicHandler(c.CouponService)
	c.CouponAdmin = couponHandler.NewAdminHandler(c.CouponService)
	c.OrderHandler = orderHandler.NewHandler(c.OrderService)
	c.PaymentHTTPHandler = paymentHandler.NewHandler(c.PaymentService)
}

// Cleanup releases connections during graceful shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			logger.Error("failed to close redis client", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}

	logger.Info("container cleanup completed", map[string]interface{}{})
}
