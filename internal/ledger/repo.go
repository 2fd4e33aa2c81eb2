package ledger

import (
	"context"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for bonus entries, payouts, balance credits
// and ledger events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEvent(ctx context.Context, event *models.LedgerEvent) error
	ListEvents(ctx context.Context, adminID uuid.UUID) ([]models.LedgerEvent, error)
	CreateEntry(ctx context.Context, entry *models.BonusEntry) error
	FindEntries(ctx context.Context, ids []uuid.UUID) ([]models.BonusEntry, error)
	ListEntries(ctx context.Context, adminID uuid.UUID, paid *bool) ([]models.BonusEntry, error)
	MarkEntriesPaid(ctx context.Context, adminID uuid.UUID, ids []uuid.UUID, paidBy, payoutID uuid.UUID, at time.Time) (int64, error)
	MarkEntriesUnpaid(ctx context.Context, adminID uuid.UUID, ids []uuid.UUID) (int64, error)
	CreatePayout(ctx context.Context, payout *models.PayoutRecord) error
	ListPayouts(ctx context.Context, adminID uuid.UUID) ([]models.PayoutRecord, error)
	Totals(ctx context.Context, adminID uuid.UUID) (Totals, error)
	ListTotals(ctx context.Context) ([]AdminTotals, error)
	CreateCredit(ctx context.Context, credit *models.BalanceCredit) error
	FindCredit(ctx context.Context, adminID uuid.UUID, source enums.BalanceCreditSource, referenceID uuid.UUID) (*models.BalanceCredit, error)
	ListCredits(ctx context.Context, adminID uuid.UUID) ([]models.BalanceCredit, error)
	CreditedTotal(ctx context.Context, adminID uuid.UUID) (int64, error)
	WithdrawalDebits(ctx context.Context, adminID uuid.UUID) (WithdrawalDebits, error)
}

// Totals aggregates one admin's bonus entries.
type Totals struct {
	Unpaid  int64 `json:"unpaid"`
	Paid    int64 `json:"paid"`
	Total   int64 `json:"total"`
	Entries int64 `json:"entries"`
}

// AdminTotals is one row of the per-admin bonus statistics.
type AdminTotals struct {
	AdminID uuid.UUID `json:"admin_id"`
	Totals
}

// WithdrawalDebits sums what withdrawals took or reserved from a balance.
type WithdrawalDebits struct {
	Settled  int64
	Reserved int64
}

// SUM over bigint is numeric in Postgres; the casts keep the scan target int64.
const totalsSelect = `CAST(COALESCE(SUM(CASE WHEN is_paid THEN 0 ELSE amount END), 0) AS BIGINT) AS unpaid,
	CAST(COALESCE(SUM(CASE WHEN is_paid THEN amount ELSE 0 END), 0) AS BIGINT) AS paid,
	CAST(COALESCE(SUM(amount), 0) AS BIGINT) AS total,
	COUNT(*) AS entries`

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.LedgerEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEvents(ctx context.Context, adminID uuid.UUID) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	if err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.BonusEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindEntries(ctx context.Context, ids []uuid.UUID) ([]models.BonusEntry, error) {
	var entries []models.BonusEntry
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListEntries(ctx context.Context, adminID uuid.UUID, paid *bool) ([]models.BonusEntry, error) {
	q := r.db.WithContext(ctx).Where("admin_id = ?", adminID)
	if paid != nil {
		q = q.Where("is_paid = ?", *paid)
	}
	var entries []models.BonusEntry
	if err := q.Order("created_at DESC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkEntriesPaid flips only entries that are still unpaid and returns how
// many rows changed.
func (r *repository) MarkEntriesPaid(ctx context.Context, adminID uuid.UUID, ids []uuid.UUID, paidBy, payoutID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BonusEntry{}).
		Where("id IN ? AND admin_id = ? AND is_paid = ?", ids, adminID, false).
		UpdateColumns(map[string]any{
			"is_paid":   true,
			"paid_at":   at,
			"paid_by":   paidBy,
			"payout_id": payoutID,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) MarkEntriesUnpaid(ctx context.Context, adminID uuid.UUID, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BonusEntry{}).
		Where("id IN ? AND admin_id = ? AND is_paid = ?", ids, adminID, true).
		UpdateColumns(map[string]any{
			"is_paid":   false,
			"paid_at":   nil,
			"paid_by":   nil,
			"payout_id": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.PayoutRecord) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) ListPayouts(ctx context.Context, adminID uuid.UUID) ([]models.PayoutRecord, error) {
	var payouts []models.PayoutRecord
	if err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// Totals sums the entries in SQL on every call. No running balance is stored.
func (r *repository) Totals(ctx context.Context, adminID uuid.UUID) (Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.BonusEntry{}).
		Select(totalsSelect).
		Where("admin_id = ?", adminID).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) ListTotals(ctx context.Context) ([]AdminTotals, error) {
	var rows []AdminTotals
	err := r.db.WithContext(ctx).
		Model(&models.BonusEntry{}).
		Select("admin_id, " + totalsSelect).
		Group("admin_id").
		Order("admin_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) WithdrawalDebits(ctx context.Context, adminID uuid.UUID) (WithdrawalDebits, error) {
	var debits WithdrawalDebits
	err := r.db.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Select(`CAST(COALESCE(SUM(CASE WHEN status = ? THEN paid_amount ELSE 0 END), 0) AS BIGINT) AS settled,
			CAST(COALESCE(SUM(CASE WHEN status IN ? THEN amount ELSE 0 END), 0) AS BIGINT) AS reserved`,
			enums.WithdrawalStatusPaid, enums.OpenWithdrawalStatuses).
		Where("manager_id = ?", adminID).
		Scan(&debits).Error
	return debits, err
}

func (r *repository) CreateCredit(ctx context.Context, credit *models.BalanceCredit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

// FindCredit returns gorm.ErrRecordNotFound when referenceID was never
// credited to adminID from source.
func (r *repository) FindCredit(ctx context.Context, adminID uuid.UUID, source enums.BalanceCreditSource, referenceID uuid.UUID) (*models.BalanceCredit, error) {
	credit := new(models.BalanceCredit)
	err := r.db.WithContext(ctx).
		Where("admin_id = ? AND source = ? AND reference_id = ?", adminID, source, referenceID).
		First(credit).Error
	if err != nil {
		return nil, err
	}
	return credit, nil
}

func (r *repository) ListCredits(ctx context.Context, adminID uuid.UUID) ([]models.BalanceCredit, error) {
	var credits []models.BalanceCredit
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC, id ASC").
		Find(&credits).Error
	return credits, err
}

func (r *repository) CreditedTotal(ctx context.Context, adminID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.BalanceCredit{}).
		Select("CAST(COALESCE(SUM(amount), 0) AS BIGINT)").
		Where("admin_id = ?", adminID).
		Scan(&total).Error
	return total, err
}
