package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/config"
	pkgdb "github.com/angelmondragon/hourstay-backend/pkg/db"
	dbtypes "github.com/angelmondragon/hourstay-backend/pkg/db/types"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
	"github.com/angelmondragon/hourstay-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 16

// Service manages back-office accounts.
type Service interface {
	CreateStaff(ctx context.Context, actor auth.Principal, input CreateStaffInput) (*UserDTO, string, error)
	ListStaff(ctx context.Context, actor auth.Principal, roles []enums.UserRole) ([]UserDTO, error)
	Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*UserDTO, error)
	SetActive(ctx context.Context, actor auth.Principal, id uuid.UUID, active bool) error
}

// CreateStaffInput describes a new staff account.
type CreateStaffInput struct {
	Email                 string
	Name                  string
	Role                  enums.UserRole
	Permissions           []string
	SubscriptionDaysLimit *int
	ObjectLimit           int
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the staff directory service.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

// CreateStaff registers a staff member and returns the generated temporary
// password exactly once.
func (s *service) CreateStaff(ctx context.Context, actor auth.Principal, input CreateStaffInput) (*UserDTO, string, error) {
	if err := actor.Validate(); err != nil {
		return nil, "", err
	}
	if !actor.IsSuperadmin() {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "only superadmin may create staff")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Role.IsStaff() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "staff role required").
			WithDetails(map[string]any{"role": input.Role})
	}
	perms, err := dbtypes.ParsePermissionSet(input.Permissions)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid permissions")
	}
	if input.SubscriptionDaysLimit != nil && *input.SubscriptionDaysLimit < 0 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "subscription_days_limit must not be negative")
	}
	if input.ObjectLimit < 0 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "object_limit must not be negative")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Email:                 email,
		PasswordHash:          hash,
		Name:                  name,
		Role:                  input.Role,
		Permissions:           perms,
		SubscriptionDaysLimit: input.SubscriptionDaysLimit,
		ObjectLimit:           input.ObjectLimit,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), tempPassword, nil
}

func (s *service) ListStaff(ctx context.Context, actor auth.Principal, roles []enums.UserRole) ([]UserDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.IsSuperadmin() && !actor.Can(enums.PermissionBonuses) && !actor.Can(enums.PermissionAccounting) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff directory not available")
	}
	rows, err := s.repo.ListStaff(ctx, roles)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor auth.Principal, id uuid.UUID) (*UserDTO, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if actor.UserID != id && !actor.IsSuperadmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another account")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) SetActive(ctx context.Context, actor auth.Principal, id uuid.UUID, active bool) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if !actor.IsSuperadmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only superadmin may change account status")
	}
	if actor.UserID == id && !active {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate own account")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user status")
	}
	return nil
}
