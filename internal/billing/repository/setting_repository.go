package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 设置仓储（键值对）
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get 读取设置值，键不存在返回空串
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting entity.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

// GetRate 读取百分比设置，值缺失或不可解析时按 0 处理
func (r *SettingRepository) GetRate(ctx context.Context, key string) (decimal.Decimal, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, nil
	}
	return rate, nil
}

// Set 写入设置值（插入或覆盖）
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	setting := entity.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

// GetAll 读取全部设置
func (r *SettingRepository) GetAll(ctx context.Context) ([]entity.Setting, error) {
	var settings []entity.Setting
	err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}
