package service

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// Charges 按结算日期调整后的应付金额
type Charges struct {
	Interest   decimal.Decimal `json:"interest"`
	Discount   decimal.Decimal `json:"discount"`
	NetPayable decimal.Decimal `json:"net_payable"`
}

// CalculateCharges 计算逾期利息或提前付款折扣。
// 逾期：单利按年化利率折算天数（net * rate/100 * days/365）；
// 提前：一次性固定折扣（net * rate/100），与提前天数无关；
// 到期当天：二者皆为 0。
// 三个结果各自独立保留两位小数。
func CalculateCharges(netAmount decimal.Decimal, dueDate, evalDate time.Time, interestRate, discountRate decimal.Decimal) Charges {
	days := daysBetween(dueDate, evalDate)

	interest := decimal.Zero
	discount := decimal.Zero
	switch {
	case days > 0:
		interest = netAmount.
			Mul(interestRate).Div(hundred).
			Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear).
			Round(2)
	case days < 0:
		discount = netAmount.Mul(discountRate).Div(hundred).Round(2)
	}

	return Charges{
		Interest:   interest,
		Discount:   discount,
		NetPayable: netAmount.Add(interest).Sub(discount).Round(2),
	}
}

// daysBetween 整天数差（to 早于 from 时为负）
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// ChargeService 利息/折扣计算服务。
// 利率每次调用时从设置现读，调整设置后立即生效。
type ChargeService struct {
	settings *repository.SettingRepository
}

func NewChargeService(settings *repository.SettingRepository) *ChargeService {
	return &ChargeService{settings: settings}
}

// ForBill 计算某销售单在指定日期的利息、折扣与应付金额
func (s *ChargeService) ForBill(ctx context.Context, bill *entity.Bill, evalDate time.Time) (Charges, error) {
	interestRate, err := s.settings.GetRate(ctx, entity.SettingInterestRate)
	if err != nil {
		return Charges{}, err
	}
	discountRate, err := s.settings.GetRate(ctx, entity.SettingDiscountRate)
	if err != nil {
		return Charges{}, err
	}
	return CalculateCharges(bill.NetAmount, bill.DueDate, evalDate, interestRate, discountRate), nil
}
