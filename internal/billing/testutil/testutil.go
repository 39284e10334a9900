package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "nimo-billing-jwt-secret-2024"

// SetupTestDB 创建隔离的内存测试库并迁移全部表。
// 单连接保证 shared in-memory 库在测试期间不被释放。
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.New().String()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

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
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SetupRouter 创建测试路由
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	return router
}

// AuthGroup 创建带JWT认证的路由组
func AuthGroup(router *gin.Engine, prefix string) *gin.RouterGroup {
	group := router.Group(prefix)
	group.Use(middleware.JWTAuth(JWTSecret))
	return group
}

// SignTestToken 签发测试用JWT
func SignTestToken(t *testing.T) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID: "test-user-001",
		Name:   "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

// SeedBroker 造经纪人数据
func SeedBroker(t *testing.T, db *gorm.DB, name string) *entity.Broker {
	t.Helper()
	broker := &entity.Broker{
		ID:   uuid.New().String()[:32],
		Name: name,
	}
	if err := db.Create(broker).Error; err != nil {
		t.Fatalf("seed broker: %v", err)
	}
	return broker
}

// SeedCustomer 造客户数据
func SeedCustomer(t *testing.T, db *gorm.DB, name string, creditDays int, brokerID string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		ID:         uuid.New().String()[:32],
		Name:       name,
		CreditDays: creditDays,
		BrokerID:   brokerID,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

// SeedItem 造商品数据
func SeedItem(t *testing.T, db *gorm.DB, name, rate, charges string) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:      uuid.New().String()[:32],
		Name:    name,
		Rate:    decimal.RequireFromString(rate),
		Charges: decimal.RequireFromString(charges),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

// SetSetting 写设置项
func SetSetting(t *testing.T, db *gorm.DB, key, value string) {
	t.Helper()
	if err := db.Save(&entity.Setting{Key: key, Value: value}).Error; err != nil {
		t.Fatalf("set setting %s: %v", key, err)
	}
}
