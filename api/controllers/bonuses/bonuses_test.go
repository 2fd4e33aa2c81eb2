package bonuses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubLedgerService struct {
	ledger.Service
	created    ledger.CreateEntryInput
	credited   ledger.CreditInput
	duplicate  bool
	markPaid   ledger.MarkPaidInput
	balanceFor uuid.UUID
	err        error
}

func (s *stubLedgerService) CreditBalance(_ context.Context, actor pkgAuth.Principal, input ledger.CreditInput) (*models.BalanceCredit, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	s.credited = input
	return &models.BalanceCredit{
		ID:          uuid.New(),
		AdminID:     input.AdminID,
		Source:      input.Source,
		ReferenceID: input.ReferenceID,
		Amount:      input.Amount,
		CreatedBy:   actor.UserID,
	}, !s.duplicate, nil
}

func (s *stubLedgerService) CreateBonusEntry(_ context.Context, actor pkgAuth.Principal, input ledger.CreateEntryInput) (*models.BonusEntry, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.BonusEntry{ID: uuid.New(), AdminID: input.AdminID, EntityType: input.EntityType, Amount: input.Amount, CreatedBy: actor.UserID}, nil
}

func (s *stubLedgerService) MarkPaid(_ context.Context, _ pkgAuth.Principal, input ledger.MarkPaidInput) (*ledger.PayoutResult, error) {
	s.markPaid = input
	if s.err != nil {
		return nil, s.err
	}
	return &ledger.PayoutResult{
		Payout: &models.PayoutRecord{ID: uuid.New(), AdminID: input.AdminID, Amount: 2500, BonusesClosed: len(input.IDs)},
		Totals: ledger.Totals{Unpaid: 2500, Paid: 2500, Total: 5000, Entries: 3},
	}, nil
}

func (s *stubLedgerService) Balance(_ context.Context, _ pkgAuth.Principal, adminID uuid.UUID) (*ledger.Balance, error) {
	s.balanceFor = adminID
	return &ledger.Balance{Credited: 10000, Settled: 3000, Reserved: 1000, Available: 6000}, nil
}

func withActor(req *http.Request, actor pkgAuth.Principal) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), actor))
}

var chief = pkgAuth.Principal{UserID: uuid.New(), Role: enums.UserRoleChiefManager}

func TestCreateAcceptsRubles(t *testing.T) {
	svc := &stubLedgerService{}
	adminID := uuid.New()
	body := fmt.Sprintf(`{"admin_id":%q,"entity_type":"listing","amount_rub":"15.50"}`, adminID)

	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses", bytes.NewReader([]byte(body))), chief))

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, int64(1550), svc.created.Amount)
	require.Equal(t, enums.BonusEntityListing, svc.created.EntityType)

	var envelope struct {
		Data ledger.EntryDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "15.50", envelope.Data.AmountRub)
}

func TestCreateRejectsUnknownEntityType(t *testing.T) {
	body := fmt.Sprintf(`{"admin_id":%q,"entity_type":"yacht","amount":100}`, uuid.New())
	resp := httptest.NewRecorder()
	Create(&stubLedgerService{}, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMarkPaidForwardsBatch(t *testing.T) {
	svc := &stubLedgerService{}
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	body := fmt.Sprintf(`{"admin_id":%q,"ids":[%q,%q],"amount":2500}`, uuid.New(), ids[0], ids[1])

	resp := httptest.NewRecorder()
	MarkPaid(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/mark-paid", bytes.NewReader([]byte(body))), chief))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, ids, svc.markPaid.IDs)
	require.NotNil(t, svc.markPaid.Amount)
	require.Equal(t, int64(2500), *svc.markPaid.Amount)

	var envelope struct {
		Data ledger.PayoutResultDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, ledger.Totals{Unpaid: 2500, Paid: 2500, Total: 5000, Entries: 3}, envelope.Data.Totals)
	require.Equal(t, 2, envelope.Data.Payout.BonusesClosed)
}

func TestMarkPaidMapsAmountMismatch(t *testing.T) {
	svc := &stubLedgerService{err: pkgerrors.New(pkgerrors.CodeValidation, "amount does not match the selected entries").
		WithDetails(map[string]any{"amount": 2500, "entries_sum": 500})}
	body := fmt.Sprintf(`{"admin_id":%q,"ids":[%q],"amount":2500}`, uuid.New(), uuid.New())

	resp := httptest.NewRecorder()
	MarkPaid(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/mark-paid", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMarkPaidRequiresIDs(t *testing.T) {
	body := fmt.Sprintf(`{"admin_id":%q,"ids":[]}`, uuid.New())
	resp := httptest.NewRecorder()
	MarkPaid(&stubLedgerService{}, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/mark-paid", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBalanceDefaultsToCaller(t *testing.T) {
	svc := &stubLedgerService{}
	resp := httptest.NewRecorder()
	Balance(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodGet, "/api/v1/bonuses/balance", nil), chief))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, chief.UserID, svc.balanceFor)

	var envelope struct {
		Data ledger.Balance `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, int64(6000), envelope.Data.Available)
}

func TestCreditAnswersCreatedThenOK(t *testing.T) {
	adminID, ref := uuid.New(), uuid.New()
	body := fmt.Sprintf(`{"admin_id":%q,"source":"achievement","reference_id":%q,"amount_rub":"150.00"}`, adminID, ref)

	svc := &stubLedgerService{}
	resp := httptest.NewRecorder()
	Credit(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/credits", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, adminID, svc.credited.AdminID)
	require.Equal(t, enums.BalanceCreditAchievement, svc.credited.Source)
	require.Equal(t, int64(15000), svc.credited.Amount)
	require.NotNil(t, svc.credited.ReferenceID)
	require.Equal(t, ref, *svc.credited.ReferenceID)

	var envelope struct {
		Data ledger.CreditDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "150.00", envelope.Data.AmountRub)

	svc.duplicate = true
	resp = httptest.NewRecorder()
	Credit(svc, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/credits", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCreditRejectsUnknownSource(t *testing.T) {
	body := fmt.Sprintf(`{"admin_id":%q,"source":"lottery","amount":100}`, uuid.New())
	resp := httptest.NewRecorder()
	Credit(&stubLedgerService{}, nil).ServeHTTP(resp, withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bonuses/credits", bytes.NewReader([]byte(body))), chief))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
