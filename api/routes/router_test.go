package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/internal/moderation"
	"github.com/angelmondragon/hourstay-backend/internal/withdrawals"
	pkgAuth "github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/auth/session"
	"github.com/angelmondragon/hourstay-backend/pkg/config"
	"github.com/angelmondragon/hourstay-backend/pkg/db/models"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string, userID uuid.UUID) (bool, error) {
	return true, nil
}

type stubListingService struct {
	listings.Service
}

func (stubListingService) Get(_ context.Context, _ pkgAuth.Principal, id uuid.UUID) (*models.Listing, error) {
	return &models.Listing{ID: id, State: enums.ListingStateDraft, Version: 1}, nil
}

type stubModerationService struct {
	moderation.Service
}

func (stubModerationService) Queue(context.Context, pkgAuth.Principal, pagination.Params) (*pagination.Page[models.Listing], error) {
	return &pagination.Page[models.Listing]{}, nil
}

type stubLedgerService struct {
	ledger.Service
}

func (stubLedgerService) Balance(context.Context, pkgAuth.Principal, uuid.UUID) (*ledger.Balance, error) {
	return &ledger.Balance{}, nil
}

type stubWithdrawalService struct {
	withdrawals.Service
}

func (stubWithdrawalService) Queue(context.Context, pkgAuth.Principal, pagination.Params) (*pagination.Page[models.WithdrawalRequest], error) {
	return &pagination.Page[models.WithdrawalRequest]{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "hourstay", ExpirationMinutes: 60},
		Ledger: config.LedgerConfig{
			LapsedWithinDays: 30,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	return NewRouter(Params{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard}),
		DB:          stubPinger{},
		Sessions:    stubSessionManager{},
		Metrics:     http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
		Listings:    stubListingService{},
		Moderation:  stubModerationService{},
		Ledger:      stubLedgerService{},
		Withdrawals: stubWithdrawalService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, perms ...enums.Permission) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:      uuid.New(),
		Role:        role,
		Permissions: perms,
		JTI:         session.NewAccessID(),
	})
	require.NoError(t, err)
	return token
}

func call(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	require.Equal(t, http.StatusOK, call(router, http.MethodGet, "/health/live", "").Code)
	require.Equal(t, http.StatusOK, call(router, http.MethodGet, "/health/ready", "").Code)

	resp := call(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "# metrics")
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := call(router, http.MethodGet, "/api/v1/listings/"+uuid.NewString(), "")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListingsReachableByOwner(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	resp := call(router, http.MethodGet, "/api/v1/listings/"+uuid.NewString(), buildToken(t, cfg, enums.UserRoleOwner))
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBackOfficeRoutesRejectOwners(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	owner := buildToken(t, cfg, enums.UserRoleOwner)

	require.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/bonuses/balance", owner).Code)
	require.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/moderation/queue", owner).Code)
}

func TestModerationQueueRequiresListingsCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	employee := buildToken(t, cfg, enums.UserRoleEmployee)
	require.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/moderation/queue", employee).Code)

	moderator := buildToken(t, cfg, enums.UserRoleEmployee, enums.PermissionListings)
	require.Equal(t, http.StatusOK, call(router, http.MethodGet, "/api/v1/moderation/queue", moderator).Code)
}

func TestWithdrawalQueueRequiresAccounting(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	manager := buildToken(t, cfg, enums.UserRoleManager)
	require.Equal(t, http.StatusForbidden, call(router, http.MethodGet, "/api/v1/withdrawals/queue", manager).Code)

	accountant := buildToken(t, cfg, enums.UserRoleAccountant)
	require.Equal(t, http.StatusOK, call(router, http.MethodGet, "/api/v1/withdrawals/queue", accountant).Code)
}

func TestBalanceReachableByStaff(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	resp := call(router, http.MethodGet, "/api/v1/bonuses/balance", buildToken(t, cfg, enums.UserRoleManager))
	require.Equal(t, http.StatusOK, resp.Code)
}
