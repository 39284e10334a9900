package service

import (
	"context"
	"testing"

	"github.com/bitfantasy/nimo-billing/internal/billing/entity"
	"github.com/bitfantasy/nimo-billing/internal/billing/repository"
	"github.com/bitfantasy/nimo-billing/internal/billing/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingSetAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db))
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, entity.SettingInterestRate, "12"))
	got, err := svc.Get(ctx, entity.SettingInterestRate)
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	// 重复写入覆盖旧值
	require.NoError(t, svc.Set(ctx, entity.SettingInterestRate, "15.5"))
	got, err = svc.Get(ctx, entity.SettingInterestRate)
	require.NoError(t, err)
	assert.Equal(t, "15.5", got)

	// 未设置的键返回空串
	got, err = svc.Get(ctx, entity.SettingDiscountRate)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSettingRateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db))
	ctx := context.Background()

	assert.ErrorIs(t, svc.Set(ctx, "", "x"), ErrValidation)
	assert.ErrorIs(t, svc.Set(ctx, entity.SettingInterestRate, "abc"), ErrValidation)
	assert.ErrorIs(t, svc.Set(ctx, entity.SettingDiscountRate, "-1"), ErrValidation)

	// 非百分比键不做数值校验
	assert.NoError(t, svc.Set(ctx, entity.SettingCompanyName, "Nimo Trading Co"))
}

func TestSettingGetRateFallsBackToZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSettingRepository(db)
	ctx := context.Background()

	// 键缺失或值不可解析时按零计
	rate, err := repo.GetRate(ctx, entity.SettingInterestRate)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())

	testutil.SetSetting(t, db, entity.SettingInterestRate, "not-a-number")
	rate, err = repo.GetRate(ctx, entity.SettingInterestRate)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())

	testutil.SetSetting(t, db, entity.SettingInterestRate, "12.5")
	rate, err = repo.GetRate(ctx, entity.SettingInterestRate)
	require.NoError(t, err)
	assert.Equal(t, "12.5", rate.String())
}
