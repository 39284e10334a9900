package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillService 销售单聚合服务
type BillService struct {
	bills     *repository.BillRepository
	customers *repository.CustomerRepository
	brokers   *repository.BrokerRepository
	items     *repository.ItemRepository
	charges   *ChargeService
}

func NewBillService(
	bills *repository.BillRepository,
	customers *repository.CustomerRepository,
	brokers *repository.BrokerRepository,
	items *repository.ItemRepository,
	charges *ChargeService,
) *BillService {
	return &BillService{
		bills:     bills,
		customers: customers,
		brokers:   brokers,
		items:     items,
		charges:   charges,
	}
}

// SaveBillLineRequest 销售单行项请求。
// 单价/杂费缺省时取商品档案当前值。
type SaveBillLineRequest struct {
	ItemID   string           `json:"item_id" binding:"required"`
	Quantity decimal.Decimal  `json:"quantity" binding:"required"`
	Rate     *decimal.Decimal `json:"rate"`
	Charges  *decimal.Decimal `json:"charges"`
}

// SaveBillRequest 创建/编辑销售单请求（ID 为空表示新建）
type SaveBillRequest struct {
	ID         string                `json:"id"`
	BillNo     string                `json:"bill_no"`
	BillDate   string                `json:"bill_date" binding:"required"`
	DueDate    string                `json:"due_date"`
	CustomerID string                `json:"customer_id" binding:"required"`
	BrokerID   *string               `json:"broker_id"`
	Notes      string                `json:"notes"`
	Lines      []SaveBillLineRequest `json:"lines"`
}

// Save 保存销售单：校验、重算汇总金额，然后单事务写入
func (s *BillService) Save(ctx context.Context, req *SaveBillRequest) (*entity.Bill, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", ErrValidation)
	}

	billDate, err := parseDate("bill_date", req.BillDate)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", req.CustomerID, err)
	}

	// 到期日缺省为单据日期加客户账期
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, err = parseDate("due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
	} else {
		dueDate = billDate.AddDate(0, 0, customer.CreditDays)
	}
	if dueDate.Before(billDate) {
		return nil, fmt.Errorf("%w: due date is earlier than bill date", ErrValidation)
	}

	var bill *entity.Bill
	if req.ID == "" {
		bill = &entity.Bill{ID: uuid.New().String()[:32]}
	} else {
		bill, err = s.bills.FindByID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", req.ID, err)
		}
		bill.Customer = nil
		bill.Broker = nil
	}

	bill.BillDate = billDate
	bill.DueDate = dueDate
	bill.CustomerID = customer.ID
	bill.CustomerName = customer.Name
	bill.Notes = req.Notes

	// 经纪人：请求指定优先，否则沿用客户档案默认
	brokerID := customer.BrokerID
	if req.BrokerID != nil {
		brokerID = *req.BrokerID
	}
	bill.BrokerID = brokerID
	bill.BrokerName = ""
	if brokerID != "" {
		broker, err := s.brokers.FindByID(ctx, brokerID)
		if err != nil {
			return nil, fmt.Errorf("broker %s: %w", brokerID, err)
		}
		bill.BrokerName = broker.Name
	}

	bill.BillNo = req.BillNo
	if bill.BillNo == "" {
		code, err := s.bills.GenerateCode(ctx)
		if err != nil {
			return nil, err
		}
		bill.BillNo = code
	}

	lines := make([]entity.BillLine, 0, len(req.Lines))
	for _, lr := range req.Lines {
		item, err := s.items.FindByID(ctx, lr.ItemID)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", lr.ItemID, err)
		}
		rate := item.Rate
		if lr.Rate != nil {
			rate = *lr.Rate
		}
		charges := item.Charges
		if lr.Charges != nil {
			charges = *lr.Charges
		}
		lines = append(lines, entity.BillLine{
			ID:       uuid.New().String()[:32],
			ItemID:   item.ID,
			ItemName: item.Name,
			Quantity: lr.Quantity,
			Rate:     rate,
			Charges:  charges,
		})
	}
	bill.Lines = lines
	bill.CalculateTotals()

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}
	return s.bills.FindByID(ctx, bill.ID)
}

// Get 获取销售单详情
func (s *BillService) Get(ctx context.Context, id string) (*entity.Bill, error) {
	return s.bills.FindByID(ctx, id)
}

// List 获取销售单列表
func (s *BillService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Bill, int64, error) {
	return s.bills.FindAll(ctx, page, pageSize, filters)
}

// Delete 删除销售单
func (s *BillService) Delete(ctx context.Context, id string) error {
	return s.bills.Delete(ctx, id)
}

// Charges 计算某销售单在指定日期的利息/折扣/应付金额
func (s *BillService) Charges(ctx context.Context, id string, evalDate time.Time) (Charges, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		return Charges{}, err
	}
	return s.charges.ForBill(ctx, bill, evalDate)
}

// OutstandingBill 未清销售单及其按日期调整后的余额
type OutstandingBill struct {
	BillID       string          `json:"bill_id"`
	BillNo       string          `json:"bill_no"`
	BillDate     time.Time       `json:"bill_date"`
	DueDate      time.Time       `json:"due_date"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	BrokerID     string          `json:"broker_id,omitempty"`
	BrokerName   string          `json:"broker_name,omitempty"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Interest     decimal.Decimal `json:"interest"`
	Discount     decimal.Decimal `json:"discount"`
	NetPayable   decimal.Decimal `json:"net_payable"`
	PaidToDate   decimal.Decimal `json:"paid_to_date"`
	Balance      decimal.Decimal `json:"balance"`
}

// Outstanding 未清销售单列表（按单据日期升序，最旧的在前）。
// 累计已收每次都从分配行重新汇总，不读缓存列。
// 净额减累计已收不超过 0.01 的销售单视为已清，不返回。
func (s *BillService) Outstanding(ctx context.Context, customerID, brokerID string, asOf time.Time) ([]OutstandingBill, error) {
	bills, sums, err := s.bills.FindOutstanding(ctx, customerID, brokerID)
	if err != nil {
		return nil, err
	}

	result := make([]OutstandingBill, 0, len(bills))
	for i := range bills {
		bill := &bills[i]
		paid := decimal.Zero
		if v, ok := sums[bill.ID]; ok {
			paid = v
		}
		if bill.NetAmount.Sub(paid).LessThanOrEqual(outstandingEpsilon) {
			continue
		}

		ch, err := s.charges.ForBill(ctx, bill, asOf)
		if err != nil {
			return nil, err
		}

		result = append(result, OutstandingBill{
			BillID:       bill.ID,
			BillNo:       bill.BillNo,
			BillDate:     bill.BillDate,
			DueDate:      bill.DueDate,
			CustomerID:   bill.CustomerID,
			CustomerName: bill.CustomerName,
			BrokerID:     bill.BrokerID,
			BrokerName:   bill.BrokerName,
			NetAmount:    bill.NetAmount,
			Interest:     ch.Interest,
			Discount:     ch.Discount,
			NetPayable:   ch.NetPayable,
			PaidToDate:   paid,
			Balance:      ch.NetPayable.Sub(paid).Round(2),
		})
	}
	return result, nil
}
