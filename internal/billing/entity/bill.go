package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bill 销售单（含行项）
type Bill struct {
	ID       string    `json:"id" gorm:"primaryKey;size:32"`
	BillNo   string    `json:"bill_no" gorm:"size:50;index"`
	BillDate time.Time `json:"bill_date" gorm:"not null;index"`
	DueDate  time.Time `json:"due_date" gorm:"not null"`

	CustomerID   string `json:"customer_id" gorm:"size:32;not null;index"`
	CustomerName string `json:"customer_name" gorm:"size:128"` // 开单时的客户名称快照
	BrokerID     string `json:"broker_id" gorm:"size:32;index"`
	BrokerName   string `json:"broker_name" gorm:"size:128"` // 开单时的经纪人名称快照

	// 金额（由行项汇总得出）
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(15,2)"`
	TotalCharges decimal.Decimal `json:"total_charges" gorm:"type:decimal(15,2)"`
	NetAmount    decimal.Decimal `json:"net_amount" gorm:"type:decimal(15,2)"`

	// 已收款缓存列，仅用于展示。余额计算一律从收款分配重新汇总
	PaidAmount decimal.Decimal `json:"paid_amount" gorm:"type:decimal(15,2)"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lines    []BillLine `json:"lines,omitempty" gorm:"foreignKey:BillID"`
	Customer *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Broker   *Broker    `json:"broker,omitempty" gorm:"foreignKey:BrokerID"`
}

func (Bill) TableName() string {
	return "billing_bills"
}

// CalculateTotals 重算行项金额并汇总表头金额
func (b *Bill) CalculateTotals() {
	total := decimal.Zero
	charges := decimal.Zero
	net := decimal.Zero
	for i := range b.Lines {
		b.Lines[i].Calculate()
		total = total.Add(b.Lines[i].Amount)
		charges = charges.Add(b.Lines[i].Charges)
		net = net.Add(b.Lines[i].LineTotal)
	}
	b.TotalAmount = total.Round(2)
	b.TotalCharges = charges.Round(2)
	b.NetAmount = net.Round(2)
}

// BillLine 销售单行项
type BillLine struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	BillID string `json:"bill_id" gorm:"size:32;not null;index"`

	ItemID   string `json:"item_id" gorm:"size:32;index"`
	ItemName string `json:"item_name" gorm:"size:128"` // 录入时的商品名称快照

	Quantity decimal.Decimal `json:"quantity" gorm:"type:decimal(15,3)"`
	Rate     decimal.Decimal `json:"rate" gorm:"type:decimal(15,2)"`
	Charges  decimal.Decimal `json:"charges" gorm:"type:decimal(15,2)"`

	// Amount = Quantity * Rate，LineTotal = Amount + Charges
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(15,2)"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:decimal(15,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (BillLine) TableName() string {
	return "billing_bill_lines"
}

// Calculate 重算本行金额
func (l *BillLine) Calculate() {
	l.Amount = l.Quantity.Mul(l.Rate).Round(2)
	l.LineTotal = l.Amount.Add(l.Charges).Round(2)
}
