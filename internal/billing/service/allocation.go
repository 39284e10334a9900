package service

import "github.com/shopspring/decimal"

// OpenBill 待分配的未清销售单（须按单据日期升序传入）
type OpenBill struct {
	BillID  string          `json:"bill_id"`
	BillNo  string          `json:"bill_no"`
	Balance decimal.Decimal `json:"balance"`
}

// BillAllocation 单张销售单的分配结果
type BillAllocation struct {
	BillID        string          `json:"bill_id"`
	BillNo        string          `json:"bill_no"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	Allocated     decimal.Decimal `json:"allocated"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// AllocationResult 一笔收款的分配结果。
// Remaining 是未分配完的余款，交由操作员处置，不会被静默丢弃。
type AllocationResult struct {
	Allocations    []BillAllocation `json:"allocations"`
	TotalAllocated decimal.Decimal  `json:"total_allocated"`
	Remaining      decimal.Decimal  `json:"remaining"`
}

// Allocate 瀑布式分配：按传入顺序逐张冲销，每张分配
// min(剩余款, 该单余额)，分完即止。金额不为正时全部分配为 0。
// 多余的款项只记入 Remaining，绝不回摊到任何一张单。
func Allocate(bills []OpenBill, amount decimal.Decimal) AllocationResult {
	result := AllocationResult{
		Allocations:    make([]BillAllocation, 0, len(bills)),
		TotalAllocated: decimal.Zero,
		Remaining:      decimal.Zero,
	}

	remaining := decimal.Zero
	if amount.IsPositive() {
		remaining = amount
	}

	for _, bill := range bills {
		alloc := decimal.Zero
		if remaining.IsPositive() && bill.Balance.IsPositive() {
			alloc = decimal.Min(remaining, bill.Balance)
			remaining = remaining.Sub(alloc)
		}
		result.Allocations = append(result.Allocations, BillAllocation{
			BillID:        bill.BillID,
			BillNo:        bill.BillNo,
			BalanceBefore: bill.Balance,
			Allocated:     alloc,
			BalanceAfter:  bill.Balance.Sub(alloc),
		})
		result.TotalAllocated = result.TotalAllocated.Add(alloc)
	}

	result.Remaining = remaining
	return result
}
