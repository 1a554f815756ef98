package appuser

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gatehouse/internal/audit"
	"gatehouse/internal/platform/metrics"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// Service manages staff accounts. Credentials are opaque strings compared
// verbatim; hashing is out of scope for this system.
type Service struct {
	store   Store
	audit   *audit.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, auditSvc *audit.Service, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, audit: auditSvc, logger: logger, metrics: m}
}

// Login checks a username/credential pair against active accounts. Only
// successful logins are audited; failures are counted in metrics only.
func (s *Service) Login(ctx context.Context, username, credential string) (User, error) {
	if username == "" || credential == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "username and credential are required")
	}
	user, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.RecordLogin("failure")
		return User{}, dErrors.New(dErrors.CodeNotFound, "invalid username or credential")
	}
	if err != nil {
		return User{}, dErrors.Wrap(dErrors.CodeInternal, "login failed", err)
	}
	if !user.Active || subtle.ConstantTimeCompare([]byte(user.Credential), []byte(credential)) != 1 {
		s.metrics.RecordLogin("failure")
		return User{}, dErrors.New(dErrors.CodeNotFound, "invalid username or credential")
	}
	s.metrics.RecordLogin("success")
	s.audit.Record(ctx, audit.Entry{
		ActorID: user.Username,
		Action:  audit.ActionUserLogin,
		Details: fmt.Sprintf("user %s logged in", user.Username),
	})
	return user, nil
}

// List returns all staff accounts. Credentials never leave the service with
// the User struct's json tag, but they are present on the returned values for
// internal callers.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list users", err)
	}
	return users, nil
}

// Create adds a staff account. Role defaults to user, accounts start active.
func (s *Service) Create(ctx context.Context, user User, actorID string) (int64, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Credential == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "username and credential are required")
	}
	switch user.Role {
	case RoleUser, RoleAdmin:
	case "":
		user.Role = RoleUser
	default:
		return 0, dErrors.New(dErrors.CodeBadRequest, "role must be user or admin")
	}
	user.Active = true

	id, err := s.store.Create(ctx, user)
	if errors.Is(err, sentinel.ErrConflict) {
		return 0, dErrors.New(dErrors.CodeConflict, "username already exists")
	}
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to create user", err)
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID: actorID,
		Action:  audit.ActionUserCreated,
		Details: fmt.Sprintf("created user %s (role %s)", user.Username, user.Role),
	})
	return id, nil
}

// Update applies a partial field set to an account.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, actorID string) error {
	if id <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	if patch.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	if patch.Role != nil && *patch.Role != RoleUser && *patch.Role != RoleAdmin {
		return dErrors.New(dErrors.CodeBadRequest, "role must be user or admin")
	}
	err := s.store.Update(ctx, id, patch)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "username already exists")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update user", err)
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID: actorID,
		Action:  audit.ActionUserUpdated,
		Details: fmt.Sprintf("updated user %d", id),
	})
	return nil
}

// Delete hard-deletes an account. Audit entries that reference the user keep
// their denormalized username string, so history survives the deletion.
func (s *Service) Delete(ctx context.Context, id int64, actorID string) error {
	if id <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete user", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete user", err)
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID: actorID,
		Action:  audit.ActionUserDeleted,
		Details: fmt.Sprintf("deleted user %s", user.Username),
	})
	return nil
}

// SeedBootstrapAdmin creates the default admin account when no account with
// that username exists yet. Safe to call on every boot.
func SeedBootstrapAdmin(ctx context.Context, store Store, username, credential string, logger *slog.Logger) error {
	_, err := store.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("check bootstrap admin: %w", err)
	}
	_, err = store.Create(ctx, User{
		Username:    username,
		Credential:  credential,
		DisplayName: "Administrator",
		Role:        RoleAdmin,
		Active:      true,
	})
	if errors.Is(err, sentinel.ErrConflict) {
		// Another instance seeded first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed bootstrap admin: %w", err)
	}
	logger.Info("seeded bootstrap admin account", "username", username)
	return nil
}
