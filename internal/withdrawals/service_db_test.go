//go:build db
// +build db

package withdrawals

import (
	"context"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/pkg/db"
	"github.com/angelmondragon/hourstay-backend/pkg/db/dbtest"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to a migrated postgres database.
func openTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := os.Getenv("HOURSTAY_DB_DSN")
	if dsn == "" {
		t.Skip("HOURSTAY_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db.Wrap(conn)
}

func purgeAccounts(t *testing.T, client *db.Client, ids ...uuid.UUID) {
	t.Helper()
	t.Cleanup(func() {
		conn := client.DB()
		for _, table := range []string{"ledger_events", "balance_credits"} {
			conn.Exec("DELETE FROM "+table+" WHERE admin_id IN ?", ids)
		}
		conn.Exec("DELETE FROM withdrawal_requests WHERE manager_id IN ?", ids)
		conn.Exec("DELETE FROM users WHERE id IN ?", ids)
	})
}

func TestConcurrentCreatesReserveBalanceOnce(t *testing.T) {
	client := openTestDB(t)
	ctx := context.Background()
	log := logger.New(logger.Options{ServiceName: "withdrawals-db-test", Output: io.Discard})

	ledgerSvc, err := ledger.NewService(ledger.ServiceParams{
		Repo:     ledger.NewRepository(client.DB()),
		Users:    users.NewRepository(client.DB()),
		TxRunner: client,
		Logger:   log,
		Clock:    time.Now,
	})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		Ledger:   ledgerSvc,
		TxRunner: client,
		Logger:   log,
		Clock:    time.Now,
	})
	require.NoError(t, err)

	manager := dbtest.SeedUser(t, client, enums.UserRoleManager)
	accountant := dbtest.SeedUser(t, client, enums.UserRoleAccountant)
	purgeAccounts(t, client, manager.ID, accountant.ID)

	_, _, err = ledgerSvc.CreditBalance(ctx, as(accountant), ledger.CreditInput{
		AdminID: manager.ID,
		Source:  enums.BalanceCreditCommission,
		Amount:  5000,
	})
	require.NoError(t, err)

	const racers = 2
	start := make(chan struct{})
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Create(ctx, as(manager), CreateInput{Amount: 5000, Details: salary()})
		}()
	}
	close(start)
	wg.Wait()

	var created, refused int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance):
			refused++
		default:
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, refused)

	balance, err := ledgerSvc.Balance(ctx, as(manager), manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance.Reserved)
	assert.Equal(t, int64(0), balance.Available)
}
