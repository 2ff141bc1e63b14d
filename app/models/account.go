package models

import (
	"strings"
	"time"
)

// Role names a permission set.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
	RoleViewer    Role = "viewer"
	RoleModerator Role = "moderator"
)

// Permission is a capability granted by a role.
type Permission string

const (
	PermRead          Permission = "read"
	PermWrite         Permission = "write"
	PermDelete        Permission = "delete"
	PermManageUsers   Permission = "manage_users"
	PermViewAnalytics Permission = "view_analytics"
	PermModerate      Permission = "moderate"
)

// Account is a locally registered credential record.
//
// Password holds whatever the session store's hasher produced, which is the
// plaintext password unless hashing is enabled.
type Account struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
}

// Registration is a candidate account submitted for registration.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,dashemail"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin editor viewer moderator"`
	Avatar   string `json:"avatar"`
}

// Normalize trims the name and email and lower-cases the email.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// AccountPatch carries the fields of a profile edit. Nil fields are left alone.
type AccountPatch struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitnil,dashemail"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6"`
	Role     *Role   `json:"role,omitempty" validate:"omitnil,oneof=admin editor viewer moderator"`
	Avatar   *string `json:"avatar,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Apply merges the patch into a copy of the account. A new password must
// already be in its stored form.
func (p AccountPatch) Apply(a Account) Account {
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		a.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		a.Password = *p.Password
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Avatar != nil {
		a.Avatar = *p.Avatar
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	return a
}

// NormalizeEmail is the canonical form used for email comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Redacted returns a copy without the stored password, for display.
func (a Account) Redacted() Account {
	a.Password = ""
	return a
}
