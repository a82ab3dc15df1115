package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertromore/budget-sub019/internal/common"
	"github.com/robertromore/budget-sub019/internal/model"
	"github.com/robertromore/budget-sub019/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testTransactions(count int) []model.Transaction {
	base := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	txns := make([]model.Transaction, count)
	for i := 0; i < count; i++ {
		txns[i] = model.Transaction{
			ID:               fmt.Sprintf("txn-%d", i+1),
			Date:             base.AddDate(0, i, 0),
			Amount:           -15.99,
			CounterpartyID:   "cp-netflix",
			CounterpartyName: "NETFLIX.COM",
			AccountID:        "acc1",
			AccountName:      "Checking",
		}
	}
	return txns
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestSaveAndQueryTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	txns := testTransactions(4)
	require.NoError(t, store.SaveTransactions(ctx, txns))

	t.Run("window query returns everything after from", func(t *testing.T) {
		got, err := store.GetTransactionsSince(ctx, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("window query respects the from bound", func(t *testing.T) {
		got, err := store.GetTransactionsSince(ctx, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("window query filters by account", func(t *testing.T) {
		got, err := store.GetTransactionsSince(ctx, time.Time{}, "acc-missing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("saving the same rows again is idempotent", func(t *testing.T) {
		require.NoError(t, store.SaveTransactions(ctx, txns))
		got, err := store.GetTransactionsSince(ctx, time.Time{}, "")
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := store.GetTransactionByID(ctx, "txn-1")
		require.NoError(t, err)
		assert.Equal(t, "cp-netflix", got.CounterpartyID)
		assert.InDelta(t, -15.99, got.Amount, 1e-9)

		_, err = store.GetTransactionByID(ctx, "txn-404")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestGetTransactionsSinceExcludesSoftDeleted(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, testTransactions(3)))

	_, err := store.db.ExecContext(ctx,
		"UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP WHERE id = ?", "txn-2")
	require.NoError(t, err)

	got, err := store.GetTransactionsSince(ctx, time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, txn := range got {
		assert.NotEqual(t, "txn-2", txn.ID)
	}
}

func TestGetTransactionsFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, testTransactions(5)))

	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	got, err := store.GetTransactions(ctx, service.TransactionFilter{EndDate: &end, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first within the bound.
	assert.True(t, got[0].Date.After(got[1].Date))
}

func TestScheduleCRUD(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	schedule := &model.Schedule{
		Name:           "Netflix",
		CounterpartyID: "cp-netflix",
		AccountID:      "acc1",
		Frequency:      model.FrequencyMonthly,
		Amount:         -15.99,
		NextOccurrence: time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC),
		Active:         true,
	}

	require.NoError(t, store.CreateSchedule(ctx, schedule))
	assert.NotEmpty(t, schedule.ID, "an ID is assigned on create")

	t.Run("get and list", func(t *testing.T) {
		got, err := store.GetSchedule(ctx, schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, "Netflix", got.Name)
		assert.Equal(t, model.FrequencyMonthly, got.Frequency)

		all, err := store.GetSchedules(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("duplicate key is rejected", func(t *testing.T) {
		dup := &model.Schedule{
			Name:           "Netflix Again",
			CounterpartyID: "cp-netflix",
			AccountID:      "acc1",
			Frequency:      model.FrequencyMonthly,
		}
		err := store.CreateSchedule(ctx, dup)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("update", func(t *testing.T) {
		schedule.Amount = -18.99
		require.NoError(t, store.UpdateSchedule(ctx, schedule))

		got, err := store.GetSchedule(ctx, schedule.ID)
		require.NoError(t, err)
		assert.InDelta(t, -18.99, got.Amount, 1e-9)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteSchedule(ctx, schedule.ID))

		_, err := store.GetSchedule(ctx, schedule.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)

		err = store.DeleteSchedule(ctx, schedule.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestGetScheduleKeys(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	schedules := []*model.Schedule{
		{Name: "Netflix", CounterpartyID: "cp-netflix", AccountID: "acc1", Frequency: model.FrequencyMonthly, Active: true},
		{Name: "Rent", CounterpartyID: "cp-landlord", AccountID: "acc2", Frequency: model.FrequencyMonthly, Active: true},
	}
	for _, s := range schedules {
		require.NoError(t, store.CreateSchedule(ctx, s))
	}

	inactive := &model.Schedule{Name: "Old Gym", CounterpartyID: "cp-gym", AccountID: "acc1", Frequency: model.FrequencyMonthly}
	require.NoError(t, store.CreateSchedule(ctx, inactive))

	t.Run("all accounts", func(t *testing.T) {
		keys, err := store.GetScheduleKeys(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, keys, 2, "inactive schedules are not tracked keys")
	})

	t.Run("restricted to one account", func(t *testing.T) {
		keys, err := store.GetScheduleKeys(ctx, []string{"acc2"})
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.Equal(t, "cp-landlord", keys[0].CounterpartyID)
	})
}

func TestValidationRejectsBadInput(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.Error(t, store.SaveTransactions(ctx, nil))
	assert.Error(t, store.SaveTransactions(ctx, []model.Transaction{}))
	assert.Error(t, store.SaveTransactions(ctx, []model.Transaction{{ID: ""}}))

	_, err := store.GetTransactionByID(ctx, "  ")
	assert.Error(t, err)

	assert.Error(t, store.CreateSchedule(ctx, &model.Schedule{Name: ""}))
}
