package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Restaurant is the tenant entity. Every user belongs to exactly one,
// except super admins whose scope is global.
type Restaurant struct {
	bun.BaseModel `bun:"table:restaurants,alias:rst"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Address       string     `bun:"address" json:"address,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RestaurantRef is the tenant payload embedded in login/verify
// responses.
type RestaurantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the user model. The core only reads and compares these
// records; mutation belongs to the storage layer.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name           string      `bun:"name,notnull" json:"name,omitempty"`
	Email          string      `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string      `bun:"password_hash" json:"password_hash,omitempty"`
	Role           UserRole    `bun:"user_role,notnull" json:"user_role,omitempty"`
	Active         bool        `bun:"is_active,notnull" json:"is_active"`
	RestaurantID   uuid.UUID   `bun:"restaurant_id,nullzero,type:uuid" json:"restaurant_id,omitempty"`
	Restaurant     *Restaurant `bun:"rel:belongs-to,join:restaurant_id=id" json:"restaurant,omitempty"`
	LoginAttempts  int         `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time  `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time  `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureRole defaults blank roles to the regular user role.
func (u *User) EnsureRole() {
	if u == nil {
		return
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
}

// TenantID returns the restaurant binding as a string, empty for
// records without one (global accounts).
func (u *User) TenantID() string {
	if u == nil || u.RestaurantID == uuid.Nil {
		return ""
	}
	return u.RestaurantID.String()
}

// PublicUser is the caller-facing projection of a User. Password hash
// and bookkeeping columns never leave the server.
type PublicUser struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Role       UserRole       `json:"role"`
	Restaurant *RestaurantRef `json:"restaurant,omitempty"`
}

// Public builds the response projection for login/verify payloads.
func (u *User) Public() PublicUser {
	out := PublicUser{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}

	if u.Restaurant != nil {
		out.Restaurant = &RestaurantRef{
			ID:   u.Restaurant.ID.String(),
			Name: u.Restaurant.Name,
		}
	} else if u.RestaurantID != uuid.Nil {
		out.Restaurant = &RestaurantRef{ID: u.RestaurantID.String()}
	}

	return out
}
