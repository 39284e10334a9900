package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/handler"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/bitfantasy/nimo-billing/internal/billing/service"
	"github.com/bitfantasy/nimo-billing/internal/config"
	"github.com/bitfantasy/nimo-billing/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-billing service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Customer{},
		&entity.Broker{},
		&entity.Item{},
		&entity.Setting{},
		&entity.Bill{},
		&entity.BillLine{},
		&entity.Payment{},
		&entity.PaymentAllocation{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 仓储
	billRepo := repository.NewBillRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	brokerRepo := repository.NewBrokerRepository(db)
	itemRepo := repository.NewItemRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// 服务
	chargeSvc := service.NewChargeService(settingRepo)
	billSvc := service.NewBillService(billRepo, customerRepo, brokerRepo, itemRepo, chargeSvc)
	paymentSvc := service.NewPaymentService(paymentRepo, billRepo, customerRepo, chargeSvc, billSvc)
	masterSvc := service.NewMasterService(customerRepo, brokerRepo, itemRepo)
	settingSvc := service.NewSettingService(settingRepo)
	reportSvc := service.NewReportService(billSvc)

	handlers := handler.NewHandlers(billSvc, paymentSvc, masterSvc, settingSvc, reportSvc)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}

func registerRoutes(router *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	v1 := router.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		bills := authorized.Group("/bills")
		{
			bills.POST("", h.Bill.SaveBill)
			bills.GET("", h.Bill.ListBills)
			bills.GET("/outstanding", h.Bill.ListOutstanding)
			bills.GET("/:id", h.Bill.GetBill)
			bills.GET("/:id/charges", h.Bill.GetCharges)
			bills.DELETE("/:id", h.Bill.DeleteBill)
		}

		payments := authorized.Group("/payments")
		{
			payments.POST("", h.Payment.SavePayment)
			payments.GET("", h.Payment.ListPayments)
			payments.POST("/auto-allocate", h.Payment.AutoAllocate)
			payments.GET("/:id", h.Payment.GetPayment)
			payments.DELETE("/:id", h.Payment.DeletePayment)
		}

		customers := authorized.Group("/customers")
		{
			customers.POST("", h.Master.SaveCustomer)
			customers.GET("", h.Master.ListCustomers)
			customers.GET("/:id", h.Master.GetCustomer)
			customers.DELETE("/:id", h.Master.DeleteCustomer)
		}

		brokers := authorized.Group("/brokers")
		{
			brokers.POST("", h.Master.SaveBroker)
			brokers.GET("", h.Master.ListBrokers)
			brokers.GET("/:id", h.Master.GetBroker)
			brokers.DELETE("/:id", h.Master.DeleteBroker)
		}

		items := authorized.Group("/items")
		{
			items.POST("", h.Master.SaveItem)
			items.GET("", h.Master.ListItems)
			items.GET("/:id", h.Master.GetItem)
			items.DELETE("/:id", h.Master.DeleteItem)
		}

		settings := authorized.Group("/settings")
		{
			settings.GET("", h.Setting.ListSettings)
			settings.GET("/:key", h.Setting.GetSetting)
			settings.PUT("/:key", h.Setting.SetSetting)
		}

		reports := authorized.Group("/reports")
		{
			reports.GET("/outstanding.xlsx", h.Report.ExportOutstanding)
		}
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
