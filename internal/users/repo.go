package users

import (
	"context"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	LockForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListStaff(ctx context.Context, roles []enums.UserRole) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *repository) first(q *gorm.DB, conds ...any) (*models.User, error) {
	user := new(models.User)
	if err := q.First(user, conds...).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail expects an already normalized (lowercased) address.
func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "email = ?", email)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// LockForUpdate loads the user row with SELECT ... FOR UPDATE. Ledger writes
// for one staff account serialize on this lock.
func (r *repository) LockForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// ListStaff returns every non-owner account, oldest first, optionally
// narrowed to roles.
func (r *repository) ListStaff(ctx context.Context, roles []enums.UserRole) ([]models.User, error) {
	q := r.db.WithContext(ctx).Where("role <> ?", enums.UserRoleOwner)
	if len(roles) > 0 {
		q = q.Where("role IN ?", roles)
	}
	var staff []models.User
	err := q.Order("created_at ASC, id ASC").Find(&staff).Error
	return staff, err
}

func (r *repository) column(ctx context.Context, id uuid.UUID, name string, value any) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn(name, value)
}

func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.column(ctx, id, "last_login_at", at).Error
}

// SetActive reports gorm.ErrRecordNotFound when no row has the id.
func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.column(ctx, id, "is_active", active)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}
