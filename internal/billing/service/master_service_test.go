package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/bitfantasy/nimo-billing/internal/billing/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMasterTest(t *testing.T) *MasterService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewMasterService(
		repository.NewCustomerRepository(db),
		repository.NewBrokerRepository(db),
		repository.NewItemRepository(db),
	)
}

func TestCustomerLifecycle(t *testing.T) {
	svc := setupMasterTest(t)
	ctx := context.Background()

	created, err := svc.SaveCustomer(ctx, &SaveCustomerRequest{
		Name:       "Acme Traders",
		Phone:      "9876543210",
		CreditDays: 30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 30, created.CreditDays)

	updated, err := svc.SaveCustomer(ctx, &SaveCustomerRequest{
		ID:         created.ID,
		Name:       "Acme Traders Pvt Ltd",
		CreditDays: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Acme Traders Pvt Ltd", updated.Name)
	assert.Equal(t, 45, updated.CreditDays)

	list, err := svc.ListCustomers(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCustomer(ctx, created.ID))
	_, err = svc.GetCustomer(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCustomerDuplicateName(t *testing.T) {
	svc := setupMasterTest(t)
	ctx := context.Background()

	first, err := svc.SaveCustomer(ctx, &SaveCustomerRequest{Name: "Acme Traders"})
	require.NoError(t, err)

	_, err = svc.SaveCustomer(ctx, &SaveCustomerRequest{Name: "Acme Traders"})
	assert.ErrorIs(t, err, repository.ErrDuplicateName)

	// 自身改名不算重名
	_, err = svc.SaveCustomer(ctx, &SaveCustomerRequest{ID: first.ID, Name: "Acme Traders"})
	assert.NoError(t, err)
}

func TestCustomerValidation(t *testing.T) {
	svc := setupMasterTest(t)
	ctx := context.Background()

	_, err := svc.SaveCustomer(ctx, &SaveCustomerRequest{Name: "Acme", CreditDays: -1})
	assert.ErrorIs(t, err, ErrValidation)

	missing := uuid.New().String()[:32]
	_, err = svc.SaveCustomer(ctx, &SaveCustomerRequest{Name: "Acme", BrokerID: &missing})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBrokerLifecycle(t *testing.T) {
	svc := setupMasterTest(t)
	ctx := context.Background()

	created, err := svc.SaveBroker(ctx, &SaveBrokerRequest{
		Name:       "Middleman & Co",
		Commission: decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)

	_, err = svc.SaveBroker(ctx, &SaveBrokerRequest{Name: "Middleman & Co"})
	assert.ErrorIs(t, err, repository.ErrDuplicateName)

	require.NoError(t, svc.DeleteBroker(ctx, created.ID))
	err = svc.DeleteBroker(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestItemLifecycle(t *testing.T) {
	svc := setupMasterTest(t)
	ctx := context.Background()

	_, err := svc.SaveItem(ctx, &SaveItemRequest{
		Name: "Cement Bag",
		Rate: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, ErrValidation)

	created, err := svc.SaveItem(ctx, &SaveItemRequest{
		Name:    "Cement Bag",
		Unit:    "bag",
		Rate:    decimal.RequireFromString("380"),
		Charges: decimal.RequireFromString("5"),
	})
	require.NoError(t, err)

	got, err := svc.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("380")))
	assert.Equal(t, "bag", got.Unit)
}

func TestSeededMasterData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewMasterService(
		repository.NewCustomerRepository(db),
		repository.NewBrokerRepository(db),
		repository.NewItemRepository(db),
	)

	broker := testutil.SeedBroker(t, db, "Middleman & Co")
	customer := testutil.SeedCustomer(t, db, "Acme Traders", 15, broker.ID)

	got, err := svc.GetCustomer(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, broker.ID, got.BrokerID)
}
