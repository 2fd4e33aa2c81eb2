package withdrawals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/metrics"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// balanceLedger is the part of the ledger engine the processor writes through.
type balanceLedger interface {
	LockAccountTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*models.User, error)
	BalanceTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*ledger.Balance, error)
	RecordEventTx(ctx context.Context, tx *gorm.DB, input ledger.RecordLedgerEventInput) (*models.LedgerEvent, error)
}

// Service runs the withdrawal request lifecycle.
type Service interface {
	Create(ctx context.Context, actor auth.Principal, input CreateInput) (*models.WithdrawalRequest, error)
	StartProcessing(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.WithdrawalRequest, error)
	Process(ctx context.Context, actor auth.Principal, id uuid.UUID, paidAmount int64, note *string) (*models.WithdrawalRequest, error)
	Reject(ctx context.Context, actor auth.Principal, id uuid.UUID, note string) (*models.WithdrawalRequest, error)
	Cancel(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.WithdrawalRequest, error)
	Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.WithdrawalRequest, error)
	ListMine(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error)
	Queue(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error)
}

// CreateInput is a manager's withdrawal request.
type CreateInput struct {
	Amount  int64
	Details Details
}

// ServiceParams bundles the withdrawal processor dependencies.
type ServiceParams struct {
	Repo     Repository
	Ledger   balanceLedger
	TxRunner txRunner
	Logger   *logger.Logger
	Metrics  *metrics.DomainMetrics
	Clock    func() time.Time
}

type service struct {
	repo    Repository
	ledger  balanceLedger
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

var closable = []enums.WithdrawalStatus{enums.WithdrawalStatusPending, enums.WithdrawalStatusProcessing}

// NewService wires the withdrawal processor.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:    params.Repo,
		ledger:  params.Ledger,
		tx:      params.TxRunner,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

// Create reserves amount against the caller's balance. The balance read and
// the insert happen under the account lock.
func (s *service) Create(ctx context.Context, actor auth.Principal, input CreateInput) (request *models.WithdrawalRequest, err error) {
	defer s.observe("withdrawal_create", time.Now(), &err)

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.Role.IsManagerFamily() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only managers can request withdrawals")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout details are required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ledger.LockAccountTx(ctx, tx, actor.UserID); err != nil {
			return err
		}
		balance, err := s.ledger.BalanceTx(ctx, tx, actor.UserID)
		if err != nil {
			return err
		}
		if input.Amount > balance.Available {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "withdrawal exceeds available balance").
				WithDetails(map[string]any{"requested": input.Amount, "available": balance.Available})
		}

		now := s.now()
		request = &models.WithdrawalRequest{
			ID:        uuid.New(),
			ManagerID: actor.UserID,
			Amount:    input.Amount,
			Status:    enums.WithdrawalStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		input.Details.apply(request)
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdrawal request")
		}
		return s.record(ctx, tx, actor, request, enums.LedgerEventWithdrawalRequested, request.Amount, map[string]any{
			"method": request.Method,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logChange(ctx, actor, request, "withdrawal requested")
	return request, nil
}

func (s *service) StartProcessing(ctx context.Context, actor auth.Principal, id uuid.UUID) (request *models.WithdrawalRequest, err error) {
	defer s.observe("withdrawal_start", time.Now(), &err)

	if err := requireAccounting(actor); err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		request, err = s.transition(ctx, tx, id, []enums.WithdrawalStatus{enums.WithdrawalStatusPending}, map[string]any{
			"status": enums.WithdrawalStatusProcessing,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logChange(ctx, actor, request, "withdrawal processing started")
	return request, nil
}

// Process settles a request for paidAmount. Any shortfall stays owed and is
// available to a new request.
func (s *service) Process(ctx context.Context, actor auth.Principal, id uuid.UUID, paidAmount int64, note *string) (request *models.WithdrawalRequest, err error) {
	defer s.observe("withdrawal_process", time.Now(), &err)

	if err := requireAccounting(actor); err != nil {
		return nil, err
	}
	if paidAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid_amount must be positive")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.load(ctx, s.repo.WithTx(tx), id)
		if err != nil {
			return err
		}
		if paidAmount > current.Amount {
			return pkgerrors.New(pkgerrors.CodeValidation, "paid_amount exceeds requested amount").
				WithDetails(map[string]any{"paid_amount": paidAmount, "amount": current.Amount})
		}
		if _, err := s.ledger.LockAccountTx(ctx, tx, current.ManagerID); err != nil {
			return err
		}
		now := s.now()
		request, err = s.transition(ctx, tx, id, closable, map[string]any{
			"status":       enums.WithdrawalStatusPaid,
			"paid_amount":  paidAmount,
			"payment_note": nullableNote(note),
			"processed_at": now,
			"processed_by": actor.UserID,
		})
		if err != nil {
			return err
		}
		return s.record(ctx, tx, actor, request, enums.LedgerEventWithdrawalSettled, paidAmount, map[string]any{
			"requested": request.Amount,
			"paid":      paidAmount,
			"shortfall": request.Amount - paidAmount,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logChange(ctx, actor, request, "withdrawal settled")
	return request, nil
}

func (s *service) Reject(ctx context.Context, actor auth.Principal, id uuid.UUID, note string) (request *models.WithdrawalRequest, err error) {
	defer s.observe("withdrawal_reject", time.Now(), &err)

	if err := requireAccounting(actor); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a rejection note is required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()
		request, err = s.transition(ctx, tx, id, closable, map[string]any{
			"status":       enums.WithdrawalStatusRejected,
			"paid_amount":  0,
			"payment_note": note,
			"processed_at": now,
			"processed_by": actor.UserID,
		})
		if err != nil {
			return err
		}
		return s.record(ctx, tx, actor, request, enums.LedgerEventWithdrawalRejected, request.Amount, map[string]any{
			"note": note,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logChange(ctx, actor, request, "withdrawal rejected")
	return request, nil
}

// Cancel withdraws a pending request on behalf of the manager who made it.
func (s *service) Cancel(ctx context.Context, actor auth.Principal, id uuid.UUID) (request *models.WithdrawalRequest, err error) {
	defer s.observe("withdrawal_cancel", time.Now(), &err)

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.load(ctx, s.repo.WithTx(tx), id)
		if err != nil {
			return err
		}
		if current.ManagerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the requesting manager can cancel")
		}
		request, err = s.transition(ctx, tx, id, []enums.WithdrawalStatus{enums.WithdrawalStatusPending}, map[string]any{
			"status": enums.WithdrawalStatusCancelled,
		})
		if err != nil {
			return err
		}
		return s.record(ctx, tx, actor, request, enums.LedgerEventWithdrawalCancelled, request.Amount, nil)
	})
	if err != nil {
		return nil, err
	}
	s.logChange(ctx, actor, request, "withdrawal cancelled")
	return request, nil
}

func (s *service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*models.WithdrawalRequest, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	request, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if request.ManagerID != actor.UserID && !actor.Can(enums.PermissionAccounting) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another manager's withdrawal")
	}
	return request, nil
}

func (s *service) ListMine(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByManager(ctx, actor.UserID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
	}
	page := pagination.Trim(rows, params.Limit, cursorOf)
	return &page, nil
}

func (s *service) Queue(ctx context.Context, actor auth.Principal, params pagination.Params) (*pagination.Page[models.WithdrawalRequest], error) {
	if err := requireAccounting(actor); err != nil {
		return nil, err
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, enums.OpenWithdrawalStatuses, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawal queue")
	}
	page := pagination.Trim(rows, params.Limit, cursorOf)
	return &page, nil
}

// transition moves a request out of one of from. A request already past from
// is a state conflict; a row that changed between read and write is a
// concurrency conflict.
func (s *service) transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, from []enums.WithdrawalStatus, updates map[string]any) (*models.WithdrawalRequest, error) {
	repo := s.repo.WithTx(tx)
	current, err := s.load(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !statusIn(current.Status, from) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal is not in a state that allows this action").
			WithDetails(map[string]any{"status": current.Status, "allowed": from})
	}

	updates["updated_at"] = s.now()
	rows, err := repo.UpdateStatus(ctx, id, from, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update withdrawal")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "withdrawal changed concurrently")
	}
	return s.load(ctx, repo, id)
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.WithdrawalRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id is required")
	}
	request, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdrawal")
	}
	return request, nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, actor auth.Principal, request *models.WithdrawalRequest, typ enums.LedgerEventType, amount int64, meta map[string]any) error {
	var raw json.RawMessage
	if meta != nil {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode withdrawal metadata")
		}
		raw = encoded
	}
	_, err := s.ledger.RecordEventTx(ctx, tx, ledger.RecordLedgerEventInput{
		AdminID:     request.ManagerID,
		ActorID:     actor.UserID,
		Type:        typ,
		Amount:      amount,
		ReferenceID: &request.ID,
		Metadata:    raw,
	})
	return err
}

func (s *service) logChange(ctx context.Context, actor auth.Principal, request *models.WithdrawalRequest, msg string) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"withdrawal_id": request.ID.String(),
		"manager_id":    request.ManagerID.String(),
		"status":        string(request.Status),
		"amount":        request.Amount,
		"paid_amount":   request.PaidAmount,
	})
	logCtx = s.logg.WithActorRole(logCtx, string(actor.Role))
	s.logg.Info(logCtx, msg)
}

func (s *service) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveLedger(operation, metrics.ResultFor(*err), time.Since(started))
}

func requireAccounting(actor auth.Principal) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return actor.Require(enums.PermissionAccounting)
}

func statusIn(status enums.WithdrawalStatus, set []enums.WithdrawalStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}

func nullableNote(note *string) any {
	if note == nil {
		return nil
	}
	v := strings.TrimSpace(*note)
	if v == "" {
		return nil
	}
	return v
}

func cursorOf(w models.WithdrawalRequest) pagination.Cursor {
	return pagination.Cursor{CreatedAt: w.CreatedAt, ID: w.ID}
}
