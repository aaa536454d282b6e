package services_test

import (
	"context"
	"testing"
	"time"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/platform/config"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	cfg := &config.Config{
		Locale:               "es",
		CashAccountCodes:     services.DefaultCashAccountCodes,
		MatchAmountTolerance: decimal.NewFromFloat(0.01),
	}
	return &testEnv{store: store, svc: services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store))}
}

// newSeededEnv also loads the default chart of accounts.
func newSeededEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	_, err := env.svc.Account.SeedDefaultChart(context.Background(), testUser)
	require.NoError(t, err)
	return env
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entryRequest(date string, debitCode, creditCode string, debit, credit string) dto.PostEntryRequest {
	return dto.PostEntryRequest{
		Date:        date,
		Kind:        "MANUAL",
		Description: "test entry",
		Lines: []dto.PostEntryLineRequest{
			{AccountCode: debitCode, Debit: dec(debit)},
			{AccountCode: creditCode, Credit: dec(credit)},
		},
	}
}
