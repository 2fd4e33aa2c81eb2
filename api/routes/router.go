package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/hourstay-backend/api/controllers"
	bonuscontrollers "github.com/angelmondragon/hourstay-backend/api/controllers/bonuses"
	listingcontrollers "github.com/angelmondragon/hourstay-backend/api/controllers/listings"
	withdrawalcontrollers "github.com/angelmondragon/hourstay-backend/api/controllers/withdrawals"
	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/internal/auth"
	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/internal/moderation"
	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/internal/withdrawals"
	"github.com/angelmondragon/hourstay-backend/pkg/auth/session"
	"github.com/angelmondragon/hourstay-backend/pkg/config"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/redis"
)

// Params bundles everything the HTTP surface is wired from.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  http.Handler

	Auth        auth.Service
	Users       users.Service
	Listings    listings.Service
	Moderation  moderation.Service
	Ledger      ledger.Service
	Withdrawals withdrawals.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	ready := map[string]controllers.Pinger{"db": p.DB}
	if p.Redis != nil {
		ready["redis"] = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if p.Redis != nil {
				r.Use(middleware.AuthRateLimit(loginPolicy, p.Redis, logg))
			}
			r.Post("/auth/login", controllers.AuthLogin(p.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			if p.Redis != nil {
				r.Use(middleware.Idempotency(p.Redis, logg))
			}

			r.Post("/auth/logout", controllers.AuthLogout(p.Auth, logg))

			r.Route("/listings", func(r chi.Router) {
				r.Post("/", listingcontrollers.Create(p.Listings, logg))
				r.Get("/lapsed", listingcontrollers.Lapsed(p.Listings, cfg.Ledger.LapsedWithinDays, logg))
				r.Route("/{listingId}", func(r chi.Router) {
					r.Get("/", listingcontrollers.Get(p.Listings, logg))
					r.Delete("/", listingcontrollers.Delete(p.Listings, logg))
					r.Get("/history", listingcontrollers.History(p.Listings, logg))
					r.Post("/submit", listingcontrollers.Submit(p.Listings, logg))
					r.Post("/moderate", listingcontrollers.Moderate(p.Moderation, logg))
					r.Post("/freeze", listingcontrollers.Freeze(p.Listings, logg))
					r.Post("/unfreeze", listingcontrollers.Unfreeze(p.Listings, logg))
					r.Post("/deactivate", listingcontrollers.Deactivate(p.Listings, logg))
					r.Post("/activate", listingcontrollers.Activate(p.Listings, logg))
					r.Post("/archive", listingcontrollers.Archive(p.Listings, logg))
					r.Post("/unarchive", listingcontrollers.Unarchive(p.Listings, logg))
					r.Post("/subscription/extend", listingcontrollers.Extend(p.Listings, logg))
					r.Post("/assign", listingcontrollers.Assign(p.Listings, logg))
					r.Post("/release", listingcontrollers.Release(p.Listings, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))

				r.With(middleware.RequireCapability(logg, enums.PermissionListings)).
					Get("/moderation/queue", listingcontrollers.Queue(p.Moderation, logg))

				r.Route("/bonuses", func(r chi.Router) {
					r.With(middleware.RequireCapability(logg, enums.PermissionBonuses)).
						Post("/", bonuscontrollers.Create(p.Ledger, logg))
					r.Get("/", bonuscontrollers.List(p.Ledger, logg))
					r.Get("/stats", bonuscontrollers.Stats(p.Ledger, logg))
					r.Get("/balance", bonuscontrollers.Balance(p.Ledger, logg))
					r.Get("/events", bonuscontrollers.Events(p.Ledger, logg))
					r.Get("/credits", bonuscontrollers.Credits(p.Ledger, logg))
					r.With(middleware.RequireCapability(logg, enums.PermissionAccounting)).
						Post("/credits", bonuscontrollers.Credit(p.Ledger, logg))
					r.With(middleware.RequireCapability(logg, enums.PermissionBonuses, enums.PermissionAccounting)).
						Post("/mark-paid", bonuscontrollers.MarkPaid(p.Ledger, logg))
					r.With(middleware.RequireCapability(logg, enums.PermissionBonuses, enums.PermissionAccounting)).
						Post("/mark-unpaid", bonuscontrollers.MarkUnpaid(p.Ledger, logg))
				})
				r.Get("/payouts", bonuscontrollers.Payouts(p.Ledger, logg))

				r.Route("/withdrawals", func(r chi.Router) {
					r.Post("/", withdrawalcontrollers.Create(p.Withdrawals, logg))
					r.Get("/mine", withdrawalcontrollers.Mine(p.Withdrawals, logg))
					r.With(middleware.RequireCapability(logg, enums.PermissionAccounting)).
						Get("/queue", withdrawalcontrollers.Queue(p.Withdrawals, logg))
					r.Route("/{withdrawalId}", func(r chi.Router) {
						r.Get("/", withdrawalcontrollers.Get(p.Withdrawals, logg))
						r.Post("/cancel", withdrawalcontrollers.Cancel(p.Withdrawals, logg))
						r.Group(func(r chi.Router) {
							r.Use(middleware.RequireCapability(logg, enums.PermissionAccounting))
							r.Post("/start", withdrawalcontrollers.Start(p.Withdrawals, logg))
							r.Post("/process", withdrawalcontrollers.Process(p.Withdrawals, logg))
							r.Post("/reject", withdrawalcontrollers.Reject(p.Withdrawals, logg))
						})
					})
				})

				r.Route("/staff", func(r chi.Router) {
					r.Post("/", controllers.StaffCreate(p.Users, logg))
					r.Get("/", controllers.StaffList(p.Users, logg))
					r.Get("/{userId}", controllers.StaffGet(p.Users, logg))
					r.Post("/{userId}/activate", controllers.StaffSetActive(p.Users, true, logg))
					r.Post("/{userId}/deactivate", controllers.StaffSetActive(p.Users, false, logg))
				})
			})
		})
	})

	return r
}
