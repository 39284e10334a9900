package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService 收款单聚合服务
type PaymentService struct {
	payments  *repository.PaymentRepository
	bills     *repository.BillRepository
	customers *repository.CustomerRepository
	charges   *ChargeService
	billSvc   *BillService
}

func NewPaymentService(
	payments *repository.PaymentRepository,
	bills *repository.BillRepository,
	customers *repository.CustomerRepository,
	charges *ChargeService,
	billSvc *BillService,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		bills:     bills,
		customers: customers,
		charges:   charges,
		billSvc:   billSvc,
	}
}

// SaveAllocationRequest 收款分配行请求
type SaveAllocationRequest struct {
	BillID          string          `json:"bill_id" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// SavePaymentRequest 创建/编辑收款单请求（ID 为空表示新建）
type SavePaymentRequest struct {
	ID          string                  `json:"id"`
	PaymentDate string                  `json:"payment_date" binding:"required"`
	CustomerID  string                  `json:"customer_id" binding:"required"`
	Amount      decimal.Decimal         `json:"amount"`
	Method      string                  `json:"method"`
	Reference   string                  `json:"reference"`
	Notes       string                  `json:"notes"`
	Allocations []SaveAllocationRequest `json:"allocations"`
}

// Save 保存收款单：校验、按当前账面重算各分配行的前置数据，然后单事务写入。
// 编辑时剔除本收款单自身已存的贡献后再汇总（避免重存时重复计入）。
func (s *PaymentService) Save(ctx context.Context, req *SavePaymentRequest) (*entity.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	if len(req.Allocations) == 0 {
		return nil, fmt.Errorf("%w: at least one allocation is required", ErrValidation)
	}
	for _, ar := range req.Allocations {
		if ar.AllocatedAmount.IsNegative() {
			return nil, fmt.Errorf("%w: allocated amount must not be negative", ErrValidation)
		}
	}

	paymentDate, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", req.CustomerID, err)
	}

	var payment *entity.Payment
	editing := req.ID != ""
	if editing {
		payment, err = s.payments.FindByID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("payment %s: %w", req.ID, err)
		}
		payment.Customer = nil
	} else {
		code, err := s.payments.GenerateCode(ctx)
		if err != nil {
			return nil, err
		}
		payment = &entity.Payment{
			ID:        uuid.New().String()[:32],
			PaymentNo: code,
		}
	}

	payment.PaymentDate = paymentDate
	payment.CustomerID = customer.ID
	payment.CustomerName = customer.Name
	payment.Amount = req.Amount.Round(2)
	payment.Method = req.Method
	if payment.Method == "" {
		payment.Method = entity.PaymentMethodCash
	}
	payment.Reference = req.Reference
	payment.Notes = req.Notes

	allocations := make([]entity.PaymentAllocation, 0, len(req.Allocations))
	for _, ar := range req.Allocations {
		bill, err := s.bills.FindByID(ctx, ar.BillID)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", ar.BillID, err)
		}

		var previousPaid decimal.Decimal
		if editing {
			previousPaid, err = s.bills.SumAllocationsExcluding(ctx, bill.ID, payment.ID)
		} else {
			previousPaid, err = s.bills.SumAllocations(ctx, bill.ID)
		}
		if err != nil {
			return nil, err
		}

		ch, err := s.charges.ForBill(ctx, bill, paymentDate)
		if err != nil {
			return nil, err
		}

		balanceBefore := ch.NetPayable.Sub(previousPaid).Round(2)
		allocated := ar.AllocatedAmount.Round(2)
		allocations = append(allocations, entity.PaymentAllocation{
			ID:              uuid.New().String()[:32],
			BillID:          bill.ID,
			BillNo:          bill.BillNo,
			PreviousPaid:    previousPaid,
			BalanceBefore:   balanceBefore,
			AllocatedAmount: allocated,
			BalanceAfter:    balanceBefore.Sub(allocated),
		})
	}
	payment.Allocations = allocations

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	return s.payments.FindByID(ctx, payment.ID)
}

// Get 获取收款单详情
func (s *PaymentService) Get(ctx context.Context, id string) (*entity.Payment, error) {
	return s.payments.FindByID(ctx, id)
}

// List 获取收款单列表
func (s *PaymentService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Payment, int64, error) {
	return s.payments.FindAll(ctx, page, pageSize, filters)
}

// Delete 删除收款单。相关销售单的余额自然回到收款前状态，
// 因为余额始终由剩余分配行重新汇总得出。
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	return s.payments.Delete(ctx, id)
}

// AutoAllocateRequest 自动分配（试算）请求
type AutoAllocateRequest struct {
	CustomerID  string          `json:"customer_id"`
	BrokerID    string          `json:"broker_id"`
	PaymentDate string          `json:"payment_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// AutoAllocate 将一笔款按瀑布规则试算分配到未清销售单上。
// 仅试算，不落库；余款由操作员确认处置。
func (s *PaymentService) AutoAllocate(ctx context.Context, req *AutoAllocateRequest) (AllocationResult, error) {
	paymentDate, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		return AllocationResult{}, err
	}

	outstanding, err := s.billSvc.Outstanding(ctx, req.CustomerID, req.BrokerID, paymentDate)
	if err != nil {
		return AllocationResult{}, err
	}

	open := make([]OpenBill, 0, len(outstanding))
	for _, ob := range outstanding {
		open = append(open, OpenBill{
			BillID:  ob.BillID,
			BillNo:  ob.BillNo,
			Balance: ob.Balance,
		})
	}
	return Allocate(open, req.Amount), nil
}
