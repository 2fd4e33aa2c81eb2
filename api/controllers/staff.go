package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
)

type createStaffRequest struct {
	Email                 string   `json:"email" validate:"required,email"`
	Name                  string   `json:"name" validate:"required,max=255"`
	Role                  string   `json:"role" validate:"required"`
	Permissions           []string `json:"permissions" validate:"omitempty,max=5,dive,permission"`
	SubscriptionDaysLimit *int     `json:"subscription_days_limit" validate:"omitempty,min=0"`
	ObjectLimit           int      `json:"object_limit" validate:"min=0"`
}

type createStaffResponse struct {
	User         *users.UserDTO `json:"user"`
	TempPassword string         `json:"temp_password"`
}

// StaffCreate provisions a back-office account and returns its one-time password.
func StaffCreate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createStaffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role").
				WithDetails(map[string]any{"field": "role"}))
			return
		}

		user, tempPassword, err := svc.CreateStaff(r.Context(), actor, users.CreateStaffInput{
			Email:                 body.Email,
			Name:                  validators.SanitizeString(body.Name, 255),
			Role:                  role,
			Permissions:           body.Permissions,
			SubscriptionDaysLimit: body.SubscriptionDaysLimit,
			ObjectLimit:           body.ObjectLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createStaffResponse{User: user, TempPassword: tempPassword})
	}
}

// StaffList returns staff accounts, optionally filtered by ?role=a,b.
func StaffList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var roles []enums.UserRole
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				role, err := enums.ParseUserRole(strings.TrimSpace(part))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter").
						WithDetails(map[string]any{"field": "role"}))
					return
				}
				roles = append(roles, role)
			}
		}

		rows, err := svc.ListStaff(r.Context(), actor, roles)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// StaffGet returns one account.
func StaffGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// StaffSetActive toggles whether an account may sign in.
func StaffSetActive(svc users.Service, active bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), actor, id, active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "is_active": active})
	}
}
