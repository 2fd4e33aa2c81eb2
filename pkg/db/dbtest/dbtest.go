// Package dbtest opens SQLite databases that mirror the Postgres schema closely
// enough for service tests: same tables and columns, no enum types or row locks.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/hourstay-backend/pkg/db/types"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		permissions TEXT NOT NULL DEFAULT '{}',
		subscription_days_limit INTEGER,
		object_limit INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		state TEXT NOT NULL DEFAULT 'draft',
		moderation_comment TEXT,
		state_reason TEXT,
		subscription_expires_at DATETIME,
		created_by_owner BOOLEAN NOT NULL DEFAULT 0,
		created_by_employee_id TEXT,
		assigned_manager_id TEXT,
		archived_snapshot BLOB,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE listing_transitions (
		id TEXT PRIMARY KEY,
		listing_id TEXT NOT NULL,
		action TEXT NOT NULL,
		from_state TEXT NOT NULL,
		to_state TEXT NOT NULL,
		actor_id TEXT,
		actor_role TEXT NOT NULL,
		comment TEXT,
		version INTEGER NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE payout_records (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		bonuses_closed INTEGER NOT NULL CHECK (bonuses_closed > 0),
		note TEXT,
		paid_by TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE bonus_entries (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT,
		amount INTEGER NOT NULL CHECK (amount > 0),
		is_paid BOOLEAN NOT NULL DEFAULT 0,
		paid_at DATETIME,
		paid_by TEXT,
		payout_id TEXT,
		notes TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE balance_credits (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		source TEXT NOT NULL,
		reference_id TEXT,
		amount INTEGER NOT NULL CHECK (amount > 0),
		notes TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (admin_id, source, reference_id)
	)`,
	`CREATE TABLE ledger_events (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		reference_id TEXT,
		metadata BLOB,
		created_at DATETIME
	)`,
	`CREATE TABLE withdrawal_requests (
		id TEXT PRIMARY KEY,
		manager_id TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		method TEXT NOT NULL,
		phone TEXT,
		card_number TEXT NOT NULL,
		recipient_name TEXT,
		bank_name TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		paid_amount INTEGER NOT NULL DEFAULT 0 CHECK (paid_amount >= 0 AND paid_amount <= amount),
		payment_note TEXT,
		processed_at DATETIME,
		processed_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// Open returns a Client over a fresh in-memory database private to t.
func Open(t *testing.T) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db.Wrap(conn)
}

// UserOption customizes a seeded user.
type UserOption func(*models.User)

// WithPermissions grants employee capabilities.
func WithPermissions(perms ...enums.Permission) UserOption {
	return func(u *models.User) { u.Permissions = dbtypes.PermissionSet(perms) }
}

// WithSubscriptionDaysLimit caps how many days the user may add per extension.
func WithSubscriptionDaysLimit(days int) UserOption {
	return func(u *models.User) { u.SubscriptionDaysLimit = &days }
}

// WithObjectLimit caps how many listings a manager may hold.
func WithObjectLimit(limit int) UserOption {
	return func(u *models.User) { u.ObjectLimit = limit }
}

// Inactive marks the seeded user as disabled.
func Inactive() UserOption {
	return func(u *models.User) { u.IsActive = false }
}

// SeedUser inserts a user with the provided role.
func SeedUser(t *testing.T, client *db.Client, role enums.UserRole, opts ...UserOption) *models.User {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:           id,
		Email:        id.String() + "@hourstay.test",
		PasswordHash: "x",
		Name:         string(role) + " " + id.String()[:4],
		Role:         role,
		Permissions:  dbtypes.PermissionSet{},
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	if err := client.DB().WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if !user.IsActive {
		if err := client.DB().Model(user).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate user: %v", err)
		}
	}
	return user
}
