package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// 收款方式
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCheque   = "cheque"
	PaymentMethodTransfer = "transfer"
	PaymentMethodUPI      = "upi"
)

// Payment 收款单（含分配行）
type Payment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	PaymentNo   string    `json:"payment_no" gorm:"size:32;uniqueIndex;not null"`
	PaymentDate time.Time `json:"payment_date" gorm:"not null;index"`

	CustomerID   string `json:"customer_id" gorm:"size:32;index"`
	CustomerName string `json:"customer_name" gorm:"size:128"` // 收款时的客户名称快照

	// 实收金额
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(15,2)"`
	Method    string          `json:"method" gorm:"size:20;default:cash"`
	Reference string          `json:"reference" gorm:"size:100"`
	Notes     string          `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Allocations []PaymentAllocation `json:"allocations,omitempty" gorm:"foreignKey:PaymentID"`
	Customer    *Customer           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Payment) TableName() string {
	return "billing_payments"
}

// AllocatedTotal 分配行合计
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Allocations {
		total = total.Add(p.Allocations[i].AllocatedAmount)
	}
	return total.Round(2)
}

// PaymentAllocation 收款分配行：单笔收款分摊到某张销售单的部分。
// 一张销售单的累计已收永远是引用它的全部分配行 allocated_amount 之和，
// 不以 Bill.PaidAmount 缓存列为准。
type PaymentAllocation struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	PaymentID string `json:"payment_id" gorm:"size:32;not null;index"`
	BillID    string `json:"bill_id" gorm:"size:32;not null;index"`
	BillNo    string `json:"bill_no" gorm:"size:50"` // 分配时的单号快照

	PreviousPaid    decimal.Decimal `json:"previous_paid" gorm:"type:decimal(15,2)"`
	BalanceBefore   decimal.Decimal `json:"balance_before" gorm:"type:decimal(15,2)"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" gorm:"type:decimal(15,2)"`
	BalanceAfter    decimal.Decimal `json:"balance_after" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (PaymentAllocation) TableName() string {
	return "billing_payment_allocations"
}
