package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/shopspring/decimal"
)

// SettingService 设置服务。利率/折扣率存为自由文本，
// 计算侧每次现读，这里只在写入时做数值校验。
type SettingService struct {
	settings *repository.SettingRepository
}

func NewSettingService(settings *repository.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

var rateKeys = map[string]bool{
	entity.SettingInterestRate: true,
	entity.SettingDiscountRate: true,
}

// Set 写入设置项。百分比键要求可解析为非负数值。
func (s *SettingService) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", ErrValidation)
	}
	if rateKeys[key] {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", ErrValidation, key)
		}
		if rate.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrValidation, key)
		}
	}
	return s.settings.Set(ctx, key, value)
}

func (s *SettingService) Get(ctx context.Context, key string) (string, error) {
	return s.settings.Get(ctx, key)
}

func (s *SettingService) GetAll(ctx context.Context) ([]entity.Setting, error) {
	return s.settings.GetAll(ctx)
}
