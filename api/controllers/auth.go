package controllers

import (
	"net/http"

	"github.com/angelmondragon/hourstay-backend/api/middleware"
	"github.com/angelmondragon/hourstay-backend/api/responses"
	"github.com/angelmondragon/hourstay-backend/api/validators"
	"github.com/angelmondragon/hourstay-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
)

// accessTokenHeader mirrors the issued token for clients that cannot read the body.
const accessTokenHeader = "X-HS-Token"

func authUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
}

// AuthLogin exchanges staff credentials for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, authUnavailable())
			return
		}

		var creds auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &creds); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		session, err := svc.Login(ctx, creds)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set(accessTokenHeader, session.AccessToken)
		responses.WriteSuccess(w, session)
	}
}

// AuthLogout revokes the session that authenticated the request.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, authUnavailable())
			return
		}
		if err := svc.Logout(ctx, middleware.AccessIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
