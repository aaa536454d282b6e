package services_test

import (
	"context"
	"testing"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/repositories/database/memory"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreatePeriod_CreatesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 6, 3))
	require.NoError(t, err)
	second, err := env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 6, 28))
	require.NoError(t, err)

	assert.Equal(t, first.PeriodID, second.PeriodID)
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 6, first.Month)
	assert.Equal(t, "Junio 2025", first.Name)
	assert.False(t, first.Closed)
}

func TestGetOrCreatePeriod_EnglishNames(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewPeriodService(store, store, services.WithMonthNamer(locale.NewMonthNamer("en")))

	period, err := svc.GetOrCreatePeriod(context.Background(), day(2025, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, "September 2025", period.Name)
}

func TestClosePeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	period, err := env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 6, 3))
	require.NoError(t, err)

	closed, err := env.svc.Period.ClosePeriod(ctx, period.PeriodID, testUser)
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assert.Equal(t, testUser, closed.ClosedBy)
	require.NotNil(t, closed.ClosedAt)

	_, err = env.svc.Period.ClosePeriod(ctx, period.PeriodID, testUser)
	assert.ErrorIs(t, err, services.ErrPeriodClosed)

	_, err = env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 6, 30))
	assert.ErrorIs(t, err, services.ErrPeriodClosed)

	_, err = env.svc.Period.ClosePeriod(ctx, "missing", testUser)
	assert.ErrorIs(t, err, services.ErrPeriodNotFound)
}

func TestReopenPeriod_OnlyLatestClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	may, err := env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 5, 1))
	require.NoError(t, err)
	june, err := env.svc.Period.GetOrCreatePeriod(ctx, day(2025, 6, 1))
	require.NoError(t, err)

	_, err = env.svc.Period.ReopenPeriod(ctx, may.PeriodID, testUser)
	assert.ErrorIs(t, err, services.ErrPeriodNotClosed)

	_, err = env.svc.Period.ClosePeriod(ctx, may.PeriodID, testUser)
	require.NoError(t, err)
	_, err = env.svc.Period.ClosePeriod(ctx, june.PeriodID, testUser)
	require.NoError(t, err)

	_, err = env.svc.Period.ReopenPeriod(ctx, may.PeriodID, testUser)
	assert.ErrorIs(t, err, services.ErrPeriodNotLatestClosed)

	reopened, err := env.svc.Period.ReopenPeriod(ctx, june.PeriodID, testUser)
	require.NoError(t, err)
	assert.False(t, reopened.Closed)
	assert.Nil(t, reopened.ClosedAt)
	assert.Empty(t, reopened.ClosedBy)

	// May is now the latest closed period
	_, err = env.svc.Period.ReopenPeriod(ctx, may.PeriodID, testUser)
	assert.NoError(t, err)

	periods, err := env.svc.Period.ListPeriods(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, 6, periods[0].Month)
}
