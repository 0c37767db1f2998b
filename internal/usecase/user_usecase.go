package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// UserRequest carries the editable fields of a user. On update an empty
// Password keeps the current credential.
type UserRequest struct {
	FirstName string            `json:"first_name" validate:"notblank,max=100"`
	LastName  string            `json:"last_name" validate:"max=100"`
	Email     *string           `json:"email,omitempty" validate:"omitempty,email"`
	Role      domain.UserRole   `json:"role" validate:"required"`
	Login     string            `json:"login" validate:"notblank,max=100"`
	Password  string            `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Status    domain.UserStatus `json:"status"`
}

// UserUseCase handles the user registry
type UserUseCase struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	clock  ports.Clock
	log    logger.Logger
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(users ports.UserRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, clock ports.Clock, log logger.Logger) *UserUseCase {
	return &UserUseCase{users: users, hasher: hasher, audit: audit, clock: orSystemClock(clock), log: orNopLogger(log)}
}

// Create registers a user with a hashed credential
func (uc *UserUseCase) Create(ctx context.Context, actorID int64, req UserRequest) (user *domain.User, err error) {
	defer observe("user.create", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}

	user = &domain.User{RegisteredAt: now(uc.clock)}
	if err := uc.prepare(user, req); err != nil {
		return nil, err
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionUserCreated, fmt.Sprintf("user %d %q created", user.ID, user.Login))
	return user, nil
}

// Update overwrites a user's fields
func (uc *UserUseCase) Update(ctx context.Context, actorID, id int64, req UserRequest) (user *domain.User, err error) {
	defer observe("user.update", time.Now(), &err)

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err = uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := uc.prepare(user, req); err != nil {
		return nil, err
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	uc.audit.Record(ctx, actorID, domain.ActionUserUpdated, fmt.Sprintf("user %d %q updated", user.ID, user.Login))
	return user, nil
}

func (uc *UserUseCase) prepare(user *domain.User, req UserRequest) error {
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = req.Email
	user.Role = req.Role
	user.Login = req.Login
	user.Status = req.Status
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}

	if req.Password != "" {
		hash, err := uc.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.CredentialHash = hash
	}
	return nil
}

// Get retrieves a user by ID
func (uc *UserUseCase) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves users ordered by last and first name
func (uc *UserUseCase) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	users, err := uc.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// VerifyCredentials checks a login and password against the stored hash.
// Inactive users are rejected like unknown ones.
func (uc *UserUseCase) VerifyCredentials(ctx context.Context, login, password string) (user *domain.User, err error) {
	defer observe("user.verify", time.Now(), &err)

	user, err = uc.users.FindByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Status != domain.UserStatusActive || !uc.hasher.Verify(user.CredentialHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	uc.audit.Record(ctx, user.ID, domain.ActionUserLogin, fmt.Sprintf("user %q signed in", user.Login))
	return user, nil
}

// SeedAdministrator creates the primordial administrator on an empty user
// table. It is a no-op when the administrator already exists.
func (uc *UserUseCase) SeedAdministrator(ctx context.Context, login, password string) (*domain.User, error) {
	admin, err := uc.users.FindByID(ctx, domain.PrimordialAdministratorID)
	if err == nil {
		return admin, nil
	}
	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get administrator: %w", err)
	}

	existing, err := uc.users.List(ctx, domain.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(existing) > 0 {
		return nil, errors.New("cannot seed the primordial administrator: users already exist")
	}

	admin, err = uc.Create(ctx, domain.PrimordialAdministratorID, UserRequest{
		FirstName: "Administrator",
		Role:      domain.UserRoleAdministrator,
		Login:     login,
		Password:  password,
	})
	if err != nil {
		return nil, err
	}
	if admin.ID != domain.PrimordialAdministratorID {
		uc.log.Warn(ctx, "seeded administrator did not receive the primordial id", map[string]interface{}{
			"user_id": admin.ID,
		})
	}

	uc.log.Info(ctx, "primordial administrator seeded", map[string]interface{}{"login": admin.Login})
	return admin, nil
}
