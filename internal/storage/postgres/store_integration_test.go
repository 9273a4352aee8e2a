package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/erp-api/internal/date"
	"github.com/hongminglow/erp-api/internal/models"
	"github.com/hongminglow/erp-api/internal/storage"
)

// TestStoreIntegration exercises the Postgres store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	suffix := time.Now().UnixNano()

	t.Run("users", func(t *testing.T) {
		email := fmt.Sprintf("storetest_%d@example.com", suffix)
		user := models.User{
			ID:           fmt.Sprintf("u-%d", suffix),
			Name:         "Store Test",
			Email:        email,
			PasswordHash: "x",
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, store.CreateUser(ctx, user))

		dup := user
		dup.ID = fmt.Sprintf("u-%d-dup", suffix)
		assert.ErrorIs(t, store.CreateUser(ctx, dup), storage.ErrAlreadyExists)

		got, err := store.FindUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = store.FindUserByEmail(ctx, "missing_"+email)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("employees", func(t *testing.T) {
		late := models.Employee{ID: fmt.Sprintf("e-%d-late", suffix), Name: "Late", Position: "Dev", ExpiryDate: date.MustParse("2099-12-31"), Status: models.StatusActive, CreatedAt: time.Now()}
		early := models.Employee{ID: fmt.Sprintf("e-%d-early", suffix), Name: "Early", Position: "Dev", ExpiryDate: date.MustParse("1999-01-01"), Status: models.StatusActive, CreatedAt: time.Now()}
		require.NoError(t, store.CreateEmployee(ctx, late))
		require.NoError(t, store.CreateEmployee(ctx, early))

		list, err := store.ListEmployees(ctx)
		require.NoError(t, err)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].ExpiryDate.Before(list[i-1].ExpiryDate), "employees not sorted at %d", i)
		}

		require.NoError(t, store.DeleteEmployee(ctx, late.ID))
		require.NoError(t, store.DeleteEmployee(ctx, early.ID))
		require.NoError(t, store.DeleteEmployee(ctx, early.ID))
	})

	t.Run("ledger", func(t *testing.T) {
		account := fmt.Sprintf("Test Account %d", suffix)
		tx := models.Transaction{
			ID:          fmt.Sprintf("t-%d", suffix),
			Account:     account,
			Date:        date.MustParse("2026-01-05"),
			Particulars: "Sales Account",
			Type:        models.Debit,
			Amount:      decimal.RequireFromString("15000.50"),
			CreatedAt:   time.Now(),
		}
		require.NoError(t, store.CreateTransaction(ctx, tx))
		got, err := store.ListTransactions(ctx, account)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Amount.Equal(tx.Amount))
		assert.Equal(t, tx.Date, got[0].Date)
	})
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
