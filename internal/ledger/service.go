package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns every balance-affecting fact of a staff account.
type Service interface {
	CreateBonusEntry(ctx context.Context, actor auth.Principal, input CreateEntryInput) (*models.BonusEntry, error)
	MarkPaid(ctx context.Context, actor auth.Principal, input MarkPaidInput) (*PayoutResult, error)
	MarkUnpaid(ctx context.Context, actor auth.Principal, adminID uuid.UUID, ids []uuid.UUID) (*Totals, error)
	Totals(ctx context.Context, actor auth.Principal, adminID uuid.UUID) (*Totals, error)
	ListTotals(ctx context.Context, actor auth.Principal) ([]AdminTotals, error)
	ListEntries(ctx context.Context, actor auth.Principal, adminID uuid.UUID, paid *bool) ([]models.BonusEntry, error)
	ListPayouts(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.PayoutRecord, error)
	Events(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.LedgerEvent, error)
	Balance(ctx context.Context, actor auth.Principal, adminID uuid.UUID) (*Balance, error)
	CreditBalance(ctx context.Context, actor auth.Principal, input CreditInput) (*models.BalanceCredit, bool, error)
	ListCredits(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.BalanceCredit, error)

	BalanceTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*Balance, error)
	LockAccountTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*models.User, error)
	RecordEventTx(ctx context.Context, tx *gorm.DB, input RecordLedgerEventInput) (*models.LedgerEvent, error)
}

// CreateEntryInput describes a bonus credited to a staff member.
type CreateEntryInput struct {
	AdminID    uuid.UUID
	EntityType enums.BonusEntityType
	EntityID   *uuid.UUID
	Amount     int64
	Notes      *string
}

// MarkPaidInput closes a batch of entries. Amount, when set, must equal the
// batch sum exactly.
type MarkPaidInput struct {
	AdminID uuid.UUID
	IDs     []uuid.UUID
	Amount  *int64
	Note    *string
}

// PayoutResult is the outcome of one mark-paid batch.
type PayoutResult struct {
	Payout  *models.PayoutRecord `json:"payout"`
	Entries []models.BonusEntry  `json:"entries"`
	Totals  Totals               `json:"totals"`
}

// CreditInput funds a staff account's withdrawable balance. A non-nil
// ReferenceID makes the credit idempotent per admin and source.
type CreditInput struct {
	AdminID     uuid.UUID
	Source      enums.BalanceCreditSource
	ReferenceID *uuid.UUID
	Amount      int64
	Notes       *string
}

// Balance is the derived withdrawable amount of a staff account. Unpaid bonus
// entries are not part of it; they are settled through MarkPaid.
type Balance struct {
	Credited  int64 `json:"credited"`
	Settled   int64 `json:"settled"`
	Reserved  int64 `json:"reserved"`
	Available int64 `json:"available"`
}

// RecordLedgerEventInput captures the immutable data a ledger event requires.
type RecordLedgerEventInput struct {
	AdminID     uuid.UUID             `json:"admin_id"`
	ActorID     uuid.UUID             `json:"actor_id"`
	Type        enums.LedgerEventType `json:"type"`
	Amount      int64                 `json:"amount"`
	ReferenceID *uuid.UUID            `json:"reference_id"`
	Metadata    json.RawMessage       `json:"metadata"`
}

// ServiceParams bundles the ledger dependencies.
type ServiceParams struct {
	Repo     Repository
	Users    users.Repository
	TxRunner txRunner
	Logger   *logger.Logger
	Metrics  *metrics.DomainMetrics
	Clock    func() time.Time
}

type service struct {
	repo    Repository
	users   users.Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

// NewService wires a ledger service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
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
		users:   params.Users,
		tx:      params.TxRunner,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) CreateBonusEntry(ctx context.Context, actor auth.Principal, input CreateEntryInput) (entry *models.BonusEntry, err error) {
	defer s.observe("create_entry", time.Now(), &err)

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := actor.Require(enums.PermissionBonuses); err != nil {
		return nil, err
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required")
	}
	if !input.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid entity_type").
			WithDetails(map[string]any{"entity_type": input.EntityType})
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		beneficiary, err := s.LockAccountTx(ctx, tx, input.AdminID)
		if err != nil {
			return err
		}
		if !beneficiary.Role.IsStaff() {
			return pkgerrors.New(pkgerrors.CodeValidation, "bonuses accrue to staff accounts only")
		}
		now := s.now()
		entry = &models.BonusEntry{
			ID:         uuid.New(),
			AdminID:    input.AdminID,
			EntityType: input.EntityType,
			EntityID:   input.EntityID,
			Amount:     input.Amount,
			Notes:      trimmed(input.Notes),
			CreatedBy:  actor.UserID,
			CreatedAt:  now,
		}
		if err := s.repo.WithTx(tx).CreateEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bonus entry")
		}
		_, err = s.RecordEventTx(ctx, tx, RecordLedgerEventInput{
			AdminID:     entry.AdminID,
			ActorID:     actor.UserID,
			Type:        enums.LedgerEventBonusAccrued,
			Amount:      entry.Amount,
			ReferenceID: &entry.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkPaid closes exactly the requested entries or changes nothing.
func (s *service) MarkPaid(ctx context.Context, actor auth.Principal, input MarkPaidInput) (result *PayoutResult, err error) {
	defer s.observe("mark_paid", time.Now(), &err)

	if err := requirePayoutDesk(actor); err != nil {
		return nil, err
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required")
	}
	if err := validateIDs(input.IDs); err != nil {
		return nil, err
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.LockAccountTx(ctx, tx, input.AdminID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		entries, err := s.loadOwned(ctx, repo, input.AdminID, input.IDs)
		if err != nil {
			return err
		}

		var sum int64
		var alreadyPaid []uuid.UUID
		for _, e := range entries {
			if e.IsPaid {
				alreadyPaid = append(alreadyPaid, e.ID)
			}
			sum += e.Amount
		}
		if len(alreadyPaid) > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bonus entries already paid").
				WithDetails(map[string]any{"entry_ids": alreadyPaid})
		}
		if input.Amount != nil && *input.Amount != sum {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the selected entries").
				WithDetails(map[string]any{"amount": *input.Amount, "entries_sum": sum})
		}

		now := s.now()
		payout := &models.PayoutRecord{
			ID:            uuid.New(),
			AdminID:       input.AdminID,
			Amount:        sum,
			BonusesClosed: len(entries),
			Note:          trimmed(input.Note),
			PaidBy:        actor.UserID,
			CreatedAt:     now,
		}
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout record")
		}

		rows, err := repo.MarkEntriesPaid(ctx, input.AdminID, input.IDs, actor.UserID, payout.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark bonus entries paid")
		}
		if rows != int64(len(input.IDs)) {
			return pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "bonus entries changed during payout").
				WithDetails(map[string]any{"expected": len(input.IDs), "updated": rows})
		}

		for _, e := range entries {
			entryID := e.ID
			if _, err := s.RecordEventTx(ctx, tx, RecordLedgerEventInput{
				AdminID:     input.AdminID,
				ActorID:     actor.UserID,
				Type:        enums.LedgerEventBonusPaid,
				Amount:      e.Amount,
				ReferenceID: &entryID,
			}); err != nil {
				return err
			}
		}
		meta, err := json.Marshal(map[string]any{"entry_ids": input.IDs})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode payout metadata")
		}
		if _, err := s.RecordEventTx(ctx, tx, RecordLedgerEventInput{
			AdminID:     input.AdminID,
			ActorID:     actor.UserID,
			Type:        enums.LedgerEventPayoutRecorded,
			Amount:      sum,
			ReferenceID: &payout.ID,
			Metadata:    meta,
		}); err != nil {
			return err
		}

		paid, err := repo.FindEntries(ctx, input.IDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload bonus entries")
		}
		totals, err := repo.Totals(ctx, input.AdminID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum bonus entries")
		}
		result = &PayoutResult{Payout: payout, Entries: paid, Totals: totals}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"admin_id":  input.AdminID.String(),
		"payout_id": result.Payout.ID.String(),
		"amount":    result.Payout.Amount,
		"entries":   result.Payout.BonusesClosed,
	})
	s.logg.Info(logCtx, "bonus payout recorded")
	return result, nil
}

// MarkUnpaid reopens paid entries. The payout records that closed them stay
// as they were; the reopen event records the difference.
func (s *service) MarkUnpaid(ctx context.Context, actor auth.Principal, adminID uuid.UUID, ids []uuid.UUID) (totals *Totals, err error) {
	defer s.observe("mark_unpaid", time.Now(), &err)

	if err := requirePayoutDesk(actor); err != nil {
		return nil, err
	}
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required")
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.LockAccountTx(ctx, tx, adminID); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)
		entries, err := s.loadOwned(ctx, repo, adminID, ids)
		if err != nil {
			return err
		}
		var sum int64
		var unpaid []uuid.UUID
		payouts := map[uuid.UUID]struct{}{}
		for _, e := range entries {
			if !e.IsPaid {
				unpaid = append(unpaid, e.ID)
			}
			if e.PayoutID != nil {
				payouts[*e.PayoutID] = struct{}{}
			}
			sum += e.Amount
		}
		if len(unpaid) > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bonus entries are not paid").
				WithDetails(map[string]any{"entry_ids": unpaid})
		}

		rows, err := repo.MarkEntriesUnpaid(ctx, adminID, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark bonus entries unpaid")
		}
		if rows != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "bonus entries changed during reopen").
				WithDetails(map[string]any{"expected": len(ids), "updated": rows})
		}

		payoutIDs := make([]uuid.UUID, 0, len(payouts))
		for id := range payouts {
			payoutIDs = append(payoutIDs, id)
		}
		meta, err := json.Marshal(map[string]any{"entry_ids": ids, "payout_ids": payoutIDs})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode reopen metadata")
		}
		if _, err := s.RecordEventTx(ctx, tx, RecordLedgerEventInput{
			AdminID:  adminID,
			ActorID:  actor.UserID,
			Type:     enums.LedgerEventBonusReopened,
			Amount:   sum,
			Metadata: meta,
		}); err != nil {
			return err
		}

		t, err := repo.Totals(ctx, adminID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum bonus entries")
		}
		totals = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (s *service) Totals(ctx context.Context, actor auth.Principal, adminID uuid.UUID) (*Totals, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	totals, err := s.repo.Totals(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum bonus entries")
	}
	return &totals, nil
}

func (s *service) ListTotals(ctx context.Context, actor auth.Principal) ([]AdminTotals, error) {
	if err := requirePayoutDesk(actor); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bonus totals")
	}
	return rows, nil
}

func (s *service) ListEntries(ctx context.Context, actor auth.Principal, adminID uuid.UUID, paid *bool) ([]models.BonusEntry, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, adminID, paid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bonus entries")
	}
	return entries, nil
}

func (s *service) ListPayouts(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.PayoutRecord, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	payouts, err := s.repo.ListPayouts(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return payouts, nil
}

func (s *service) Events(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.LedgerEvent, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEvents(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger events")
	}
	return events, nil
}

func (s *service) Balance(ctx context.Context, actor auth.Principal, adminID uuid.UUID) (*Balance, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	return s.BalanceTx(ctx, nil, adminID)
}

// BalanceTx derives credits minus settled and reserved withdrawals.
func (s *service) BalanceTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*Balance, error) {
	repo := s.repo.WithTx(tx)
	credited, err := repo.CreditedTotal(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum balance credits")
	}
	debits, err := repo.WithdrawalDebits(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum withdrawals")
	}
	return &Balance{
		Credited:  credited,
		Settled:   debits.Settled,
		Reserved:  debits.Reserved,
		Available: credited - debits.Settled - debits.Reserved,
	}, nil
}

// CreditBalance adds to the withdrawable balance. Repeating a referenced
// credit returns the stored one with created=false and writes nothing.
func (s *service) CreditBalance(ctx context.Context, actor auth.Principal, input CreditInput) (credit *models.BalanceCredit, created bool, err error) {
	defer s.observe("credit_balance", time.Now(), &err)

	if err := actor.Validate(); err != nil {
		return nil, false, err
	}
	if err := actor.Require(enums.PermissionAccounting); err != nil {
		return nil, false, err
	}
	if input.AdminID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required")
	}
	if !input.Source.IsValid() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "invalid source").
			WithDetails(map[string]any{"source": input.Source})
	}
	if input.Amount <= 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.ReferenceID != nil && *input.ReferenceID == uuid.Nil {
		input.ReferenceID = nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		beneficiary, err := s.LockAccountTx(ctx, tx, input.AdminID)
		if err != nil {
			return err
		}
		if !beneficiary.Role.IsStaff() {
			return pkgerrors.New(pkgerrors.CodeValidation, "balance credits go to staff accounts only")
		}
		repo := s.repo.WithTx(tx)
		if input.ReferenceID != nil {
			existing, err := repo.FindCredit(ctx, input.AdminID, input.Source, *input.ReferenceID)
			switch {
			case err == nil:
				credit = existing
				return nil
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up balance credit")
			}
		}

		credit = &models.BalanceCredit{
			ID:          uuid.New(),
			AdminID:     input.AdminID,
			Source:      input.Source,
			ReferenceID: input.ReferenceID,
			Amount:      input.Amount,
			Notes:       trimmed(input.Notes),
			CreatedBy:   actor.UserID,
			CreatedAt:   s.now(),
		}
		if err := repo.CreateCredit(ctx, credit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create balance credit")
		}
		created = true
		meta, err := json.Marshal(map[string]any{"source": credit.Source, "reference_id": credit.ReferenceID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode credit metadata")
		}
		_, err = s.RecordEventTx(ctx, tx, RecordLedgerEventInput{
			AdminID:     credit.AdminID,
			ActorID:     actor.UserID,
			Type:        enums.LedgerEventBalanceCredited,
			Amount:      credit.Amount,
			ReferenceID: &credit.ID,
			Metadata:    meta,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"admin_id":  credit.AdminID.String(),
			"credit_id": credit.ID.String(),
			"source":    string(credit.Source),
			"amount":    credit.Amount,
		})
		s.logg.Info(logCtx, "balance credited")
	}
	return credit, created, nil
}

func (s *service) ListCredits(ctx context.Context, actor auth.Principal, adminID uuid.UUID) ([]models.BalanceCredit, error) {
	if err := authorizeRead(actor, adminID); err != nil {
		return nil, err
	}
	credits, err := s.repo.ListCredits(ctx, adminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list balance credits")
	}
	return credits, nil
}

// LockAccountTx takes the per-account row lock that serializes balance checks.
func (s *service) LockAccountTx(ctx context.Context, tx *gorm.DB, adminID uuid.UUID) (*models.User, error) {
	user, err := s.users.WithTx(tx).LockForUpdate(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock staff account")
	}
	return user, nil
}

func (s *service) RecordEventTx(ctx context.Context, tx *gorm.DB, input RecordLedgerEventInput) (*models.LedgerEvent, error) {
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger event type %q", input.Type))
	}
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event amount must not be negative")
	}

	event := &models.LedgerEvent{
		ID:          uuid.New(),
		AdminID:     input.AdminID,
		ActorID:     input.ActorID,
		Type:        input.Type,
		Amount:      input.Amount,
		ReferenceID: input.ReferenceID,
		Metadata:    input.Metadata,
		CreatedAt:   s.now(),
	}
	if err := s.repo.WithTx(tx).CreateEvent(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger event")
	}
	return event, nil
}

// loadOwned loads exactly ids. Missing ids and ids of another admin are both
// reported as not found.
func (s *service) loadOwned(ctx context.Context, repo Repository, adminID uuid.UUID, ids []uuid.UUID) ([]models.BonusEntry, error) {
	entries, err := repo.FindEntries(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bonus entries")
	}
	found := make(map[uuid.UUID]models.BonusEntry, len(entries))
	for _, e := range entries {
		if e.AdminID == adminID {
			found[e.ID] = e
		}
	}
	missing := make([]uuid.UUID, 0)
	ordered := make([]models.BonusEntry, 0, len(ids))
	for _, id := range ids {
		e, ok := found[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, e)
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bonus entries not found").
			WithDetails(map[string]any{"entry_ids": missing})
	}
	return ordered, nil
}

func (s *service) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveLedger(operation, metrics.ResultFor(*err), time.Since(started))
}

// requirePayoutDesk admits staff holding either the bonuses or the
// accounting capability.
func requirePayoutDesk(actor auth.Principal) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Can(enums.PermissionBonuses) || actor.Can(enums.PermissionAccounting) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "missing bonuses or accounting capability")
}

func validateIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "ids must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "ids must not contain empty values")
		}
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "ids must be unique").
				WithDetails(map[string]any{"duplicate": id})
		}
		seen[id] = struct{}{}
	}
	return nil
}

// authorizeRead lets staff read their own ledger and bonus or accounting
// staff read anyone's.
func authorizeRead(actor auth.Principal, adminID uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if adminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin_id is required")
	}
	if actor.UserID == adminID && actor.Role.IsStaff() {
		return nil
	}
	if actor.Can(enums.PermissionBonuses) || actor.Can(enums.PermissionAccounting) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another account's ledger")
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
