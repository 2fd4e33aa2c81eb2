package withdrawals

import (
	"context"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists withdrawal requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.WithdrawalRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error)
	ListByManager(ctx context.Context, managerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WithdrawalRequest, error)
	ListByStatus(ctx context.Context, statuses []enums.WithdrawalStatus, cursor *pagination.Cursor, limit int) ([]models.WithdrawalRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.WithdrawalStatus, updates map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a withdrawals repository to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByManager pages one manager's requests, newest first.
func (r *repository) ListByManager(ctx context.Context, managerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WithdrawalRequest, error) {
	q := r.db.WithContext(ctx).Where("manager_id = ?", managerID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.WithdrawalRequest
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByStatus pages requests in the given statuses, oldest first.
func (r *repository) ListByStatus(ctx context.Context, statuses []enums.WithdrawalStatus, cursor *pagination.Cursor, limit int) ([]models.WithdrawalRequest, error) {
	q := r.db.WithContext(ctx).Where("status IN ?", statuses)
	if cursor != nil {
		q = q.Where("(created_at > ?) OR (created_at = ? AND id > ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.WithdrawalRequest
	if err := q.Order("created_at ASC").Order("id ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus applies updates only while the row is still in one of from.
// Callers treat zero affected rows as a lost race.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.WithdrawalStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumns(updates)
	return res.RowsAffected, res.Error
}
