package listings

import (
	"context"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists listings and their transition history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	InsertTransition(ctx context.Context, row *models.ListingTransition) error
	ListTransitions(ctx context.Context, listingID uuid.UUID) ([]models.ListingTransition, error)
	ListByState(ctx context.Context, state enums.ListingState, cursor *pagination.Cursor, limit int) ([]models.Listing, error)
	ListLapsed(ctx context.Context, now time.Time, since *time.Time, limit int) ([]models.Listing, error)
	CountAssigned(ctx context.Context, managerID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a listings repository to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateVersioned applies updates only when the stored version still matches
// expectedVersion and bumps the version. It returns the affected row count.
func (r *repository) UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		UpdateColumns(values)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) InsertTransition(ctx context.Context, row *models.ListingTransition) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListTransitions(ctx context.Context, listingID uuid.UUID) ([]models.ListingTransition, error) {
	var rows []models.ListingTransition
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("version ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByState pages listings in one state, oldest first.
func (r *repository) ListByState(ctx context.Context, state enums.ListingState, cursor *pagination.Cursor, limit int) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).Where("state = ?", state)
	if cursor != nil {
		q = q.Where("(created_at > ?) OR (created_at = ? AND id > ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Listing
	if err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLapsed returns active listings whose subscription ended at or before now.
// since bounds how far back the expiry may lie.
func (r *repository) ListLapsed(ctx context.Context, now time.Time, since *time.Time, limit int) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).
		Where("state = ?", enums.ListingStateActive).
		Where("(subscription_expires_at IS NULL OR subscription_expires_at <= ?)", now)
	if since != nil {
		q = q.Where("(subscription_expires_at IS NULL OR subscription_expires_at >= ?)", *since)
	}
	var rows []models.Listing
	if err := q.Order("subscription_expires_at ASC").Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountAssigned counts listings held by a manager outside the archive.
func (r *repository) CountAssigned(ctx context.Context, managerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("assigned_manager_id = ? AND state <> ?", managerID, enums.ListingStateArchived).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
