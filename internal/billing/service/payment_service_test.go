package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/bitfantasy/nimo-billing/internal/billing/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedOpenBill 建一张净额为 amount 的销售单
func (e *billTestEnv) seedOpenBill(t *testing.T, customerID, itemID, billDate, amount string) *entity.Bill {
	t.Helper()
	qty := decimal.RequireFromString(amount)
	rate := decimal.NewFromInt(1)
	return e.saveBill(t, &SaveBillRequest{
		BillDate:   billDate,
		CustomerID: customerID,
		Lines: []SaveBillLineRequest{
			{ItemID: itemID, Quantity: qty, Rate: &rate},
		},
	})
}

func TestSavePaymentBalanceConservation(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	bill := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")

	payment, err := env.Payments.Save(context.Background(), &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("60"),
		Method:      entity.PaymentMethodTransfer,
		Allocations: []SaveAllocationRequest{
			{BillID: bill.ID, AllocatedAmount: decimal.RequireFromString("60")},
		},
	})
	require.NoError(t, err)
	require.Len(t, payment.Allocations, 1)
	assert.True(t, strings.HasPrefix(payment.PaymentNo, "RCP-"), "got %s", payment.PaymentNo)

	alloc := payment.Allocations[0]
	assert.Equal(t, bill.BillNo, alloc.BillNo)
	assert.True(t, alloc.PreviousPaid.IsZero())
	assert.True(t, alloc.BalanceBefore.Equal(decimal.RequireFromString("100")))
	assert.True(t, alloc.BalanceAfter.Equal(decimal.RequireFromString("40")))
	// 分配行自洽：before - allocated == after
	assert.True(t, alloc.BalanceBefore.Sub(alloc.AllocatedAmount).Equal(alloc.BalanceAfter))

	outstanding, err := env.Bills.Outstanding(context.Background(), customer.ID, "", date(2026, 3, 1))
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.True(t, outstanding[0].PaidToDate.Equal(decimal.RequireFromString("60")))
	assert.True(t, outstanding[0].Balance.Equal(decimal.RequireFromString("40")))

	// 展示缓存列同事务刷新
	reloaded, err := env.Bills.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaidAmount.Equal(decimal.RequireFromString("60")))
}

func TestSavePaymentAcrossBills(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	first := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")
	second := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-05", "200")

	payment, err := env.Payments.Save(context.Background(), &SavePaymentRequest{
		PaymentDate: "2026-03-10",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("250"),
		Allocations: []SaveAllocationRequest{
			{BillID: first.ID, AllocatedAmount: decimal.RequireFromString("100")},
			{BillID: second.ID, AllocatedAmount: decimal.RequireFromString("150")},
		},
	})
	require.NoError(t, err)

	// 各单余额减少量之和等于分配总额
	total := decimal.Zero
	for _, alloc := range payment.Allocations {
		total = total.Add(alloc.BalanceBefore.Sub(alloc.BalanceAfter))
	}
	assert.True(t, total.Equal(payment.AllocatedTotal()))
	assert.True(t, total.Equal(decimal.RequireFromString("250")))

	outstanding, err := env.Bills.Outstanding(context.Background(), customer.ID, "", date(2026, 3, 10))
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, second.ID, outstanding[0].BillID)
	assert.True(t, outstanding[0].Balance.Equal(decimal.RequireFromString("50")))
}

func TestDeletePaymentRevertsBalances(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	bill := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")

	payment, err := env.Payments.Save(context.Background(), &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("100"),
		Allocations: []SaveAllocationRequest{
			{BillID: bill.ID, AllocatedAmount: decimal.RequireFromString("100")},
		},
	})
	require.NoError(t, err)

	settled, err := env.Bills.Outstanding(context.Background(), customer.ID, "", date(2026, 3, 1))
	require.NoError(t, err)
	assert.Empty(t, settled)

	require.NoError(t, env.Payments.Delete(context.Background(), payment.ID))

	_, err = env.Payments.Get(context.Background(), payment.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// 删除后余额回到收款前
	outstanding, err := env.Bills.Outstanding(context.Background(), customer.ID, "", date(2026, 3, 1))
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.True(t, outstanding[0].PaidToDate.IsZero())
	assert.True(t, outstanding[0].Balance.Equal(decimal.RequireFromString("100")))

	reloaded, err := env.Bills.Get(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.PaidAmount.IsZero())

	var count int64
	require.NoError(t, env.DB.Model(&entity.PaymentAllocation{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestEditPaymentExcludesOwnAllocations(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	bill := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")

	payment, err := env.Payments.Save(context.Background(), &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("60"),
		Allocations: []SaveAllocationRequest{
			{BillID: bill.ID, AllocatedAmount: decimal.RequireFromString("60")},
		},
	})
	require.NoError(t, err)

	// 重存同一收款单：本单已有的 60 不计入该销售单的"已收"
	edited, err := env.Payments.Save(context.Background(), &SavePaymentRequest{
		ID:          payment.ID,
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("80"),
		Allocations: []SaveAllocationRequest{
			{BillID: bill.ID, AllocatedAmount: decimal.RequireFromString("80")},
		},
	})
	require.NoError(t, err)
	require.Len(t, edited.Allocations, 1)

	alloc := edited.Allocations[0]
	assert.True(t, alloc.PreviousPaid.IsZero(), "got %s", alloc.PreviousPaid)
	assert.True(t, alloc.BalanceBefore.Equal(decimal.RequireFromString("100")))
	assert.True(t, alloc.BalanceAfter.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, payment.PaymentNo, edited.PaymentNo)

	outstanding, err := env.Bills.Outstanding(context.Background(), customer.ID, "", date(2026, 3, 1))
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.True(t, outstanding[0].PaidToDate.Equal(decimal.RequireFromString("80")))
}

func TestSavePaymentValidation(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	bill := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")

	ctx := context.Background()

	// 金额必须为正
	_, err := env.Payments.Save(ctx, &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.Zero,
		Allocations: []SaveAllocationRequest{{BillID: bill.ID, AllocatedAmount: decimal.Zero}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// 至少一条分配
	_, err = env.Payments.Save(ctx, &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("10"),
	})
	assert.ErrorIs(t, err, ErrValidation)

	// 分配金额不得为负
	_, err = env.Payments.Save(ctx, &SavePaymentRequest{
		PaymentDate: "2026-03-01",
		CustomerID:  customer.ID,
		Amount:      decimal.RequireFromString("10"),
		Allocations: []SaveAllocationRequest{{BillID: bill.ID, AllocatedAmount: decimal.RequireFromString("-1")}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, env.DB.Model(&entity.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAutoAllocatePreview(t *testing.T) {
	env := setupBillTest(t)
	customer := testutil.SeedCustomer(t, env.DB, "Acme Traders", 0, "")
	item := testutil.SeedItem(t, env.DB, "Cement Bag", "1.00", "0")
	first := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-01", "100")
	second := env.seedOpenBill(t, customer.ID, item.ID, "2026-03-05", "200")

	result, err := env.Payments.AutoAllocate(context.Background(), &AutoAllocateRequest{
		CustomerID:  customer.ID,
		PaymentDate: "2026-03-10",
		Amount:      decimal.RequireFromString("250"),
	})
	require.NoError(t, err)
	require.Len(t, result.Allocations, 2)

	assert.Equal(t, first.ID, result.Allocations[0].BillID)
	assert.True(t, result.Allocations[0].Allocated.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, second.ID, result.Allocations[1].BillID)
	assert.True(t, result.Allocations[1].Allocated.Equal(decimal.RequireFromString("150")))
	assert.True(t, result.Remaining.IsZero())

	// 试算不落库
	var count int64
	require.NoError(t, env.DB.Model(&entity.PaymentAllocation{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
