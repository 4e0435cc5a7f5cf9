package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserTracker is the store the credential verifier reads from. Lookups
// are read-only except for the login attempt counters.
type UserTracker interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// UserProvider verifies credentials and resolves token subjects against
// the user store.
type UserProvider struct {
	store     UserTracker
	Validator func(*User) error
	logger    Logger
}

// MaxLoginAttempts is the maximum number of attempts a user gets in a
// cooldown period.
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:     store,
		logger:    defLogger{},
		Validator: defaultValidator,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

func (u *UserProvider) validate(user *User) error {
	if u.Validator != nil {
		return u.Validator(user)
	}
	return defaultValidator(user)
}

// VerifyIdentity looks the user up by email (exact, case-sensitive
// match) and compares the password against the stored hash. A missing
// account and a wrong password are indistinguishable to the caller.
func (u UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrapUpstream(err, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountDeactivated
	}

	if user.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, wrapUpstream(err, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// too many attempts in the window, cool off
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if err2 := u.store.TrackAttemptedLogin(ctx, user); err2 != nil {
			return nil, wrapUpstream(err2, "failed to track login attempt")
		}

		return nil, ErrInvalidCredentials
	}

	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err)
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

// FindIdentityByID resolves a token subject. Unknown ids map to
// ErrUnknownSubject, deactivated accounts to ErrAccountDeactivated.
func (u UserProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	user, err := u.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.validate(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

// FindUserByID returns the live record, tenant joined, applying the
// same subject checks as FindIdentityByID.
func (u UserProvider) FindUserByID(ctx context.Context, id string) (*User, error) {
	user, err := u.store.FindByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUnknownSubject
		}
		return nil, wrapUpstream(err, "failed to resolve token subject")
	}

	if user == nil {
		return nil, ErrUnknownSubject
	}

	if !user.Active {
		return nil, ErrAccountDeactivated
	}

	return user, nil
}

type authIdentity struct {
	id           string
	name         string
	email        string
	role         string
	restaurantID string
}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:           user.ID.String(),
		name:         user.Name,
		email:        user.Email,
		role:         string(user.Role),
		restaurantID: user.TenantID(),
	}
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Name() string {
	return a.name
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

func (a authIdentity) RestaurantID() string {
	return a.restaurantID
}

var _ Identity = authIdentity{}
var _ IdentityProvider = (*UserProvider)(nil)
var _ UserResolver = (*UserProvider)(nil)

func defaultValidator(u *User) error {
	switch u.Role {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return nil
	default:
		return errors.New("user has an unknown or invalid role", errors.CategoryAuth).
			WithTextCode("INVALID_ROLE").
			WithMetadata(map[string]any{"role": u.Role, "user_id": u.ID.String()})
	}
}
