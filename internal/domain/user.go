package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Persisted documents keep amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role differentiates the farm operator from customers.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Built-in accounts seeded on first run.
const (
	ReservedAdminID    = "1"
	ReservedAdminEmail = "1111@mail.com"
	DefaultCustomerID  = "2"
)

// User is an account together with its billing profile.
type User struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	Designation string           `json:"designation"`
	Photo       string           `json:"photo"`
	Role        Role             `json:"role"`
	Phone       string           `json:"phone,omitempty"`
	MilkLiter   *decimal.Decimal `json:"milkLiter,omitempty"`
	MilkPrice   *decimal.Decimal `json:"milkPrice,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
}

// IsAdmin reports whether the user operates the portal.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReservedAdmin reports whether u is the undeletable built-in admin: the
// account with the reserved id, or an admin holding the reserved email.
// Whatever account later takes that email as a customer stays ordinary.
func (u User) IsReservedAdmin() bool {
	if u.ID == ReservedAdminID {
		return true
	}
	return u.IsAdmin() && strings.EqualFold(u.Email, ReservedAdminEmail)
}

// MatchesIdentifier compares identifier against username or email, ignoring case
// and surrounding whitespace.
func (u User) MatchesIdentifier(identifier string) bool {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" {
		return false
	}
	return strings.ToLower(u.Email) == id || strings.ToLower(u.Username) == id
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	out := u
	if u.MilkLiter != nil {
		v := *u.MilkLiter
		out.MilkLiter = &v
	}
	if u.MilkPrice != nil {
		v := *u.MilkPrice
		out.MilkPrice = &v
	}
	return out
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username    *string          `json:"username,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Password    *string          `json:"password,omitempty"`
	Designation *string          `json:"designation,omitempty"`
	Photo       *string          `json:"photo,omitempty"`
	Phone       *string          `json:"phone,omitempty"`
	MilkLiter   *decimal.Decimal `json:"milkLiter,omitempty"`
	MilkPrice   *decimal.Decimal `json:"milkPrice,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil && p.Designation == nil &&
		p.Photo == nil && p.Phone == nil && p.MilkLiter == nil && p.MilkPrice == nil
}

// ApplyTo overwrites the fields set in p on u.
func (p UserPatch) ApplyTo(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Designation != nil {
		u.Designation = *p.Designation
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.MilkLiter != nil {
		v := *p.MilkLiter
		u.MilkLiter = &v
	}
	if p.MilkPrice != nil {
		v := *p.MilkPrice
		u.MilkPrice = &v
	}
}

// SnapshotOf captures u's current values for the fields set in p.
func (p UserPatch) SnapshotOf(u User) UserPatch {
	var old UserPatch
	if p.Username != nil {
		old.Username = strPtr(u.Username)
	}
	if p.Email != nil {
		old.Email = strPtr(u.Email)
	}
	if p.Password != nil {
		old.Password = strPtr(u.Password)
	}
	if p.Designation != nil {
		old.Designation = strPtr(u.Designation)
	}
	if p.Photo != nil {
		old.Photo = strPtr(u.Photo)
	}
	if p.Phone != nil {
		old.Phone = strPtr(u.Phone)
	}
	if p.MilkLiter != nil {
		old.MilkLiter = decPtrOrZero(u.MilkLiter)
	}
	if p.MilkPrice != nil {
		old.MilkPrice = decPtrOrZero(u.MilkPrice)
	}
	return old
}

// ChangesMilkQuota reports whether applying p would alter u's daily quota.
func (p UserPatch) ChangesMilkQuota(u User) bool {
	if p.MilkLiter == nil {
		return false
	}
	current := decimal.Zero
	if u.MilkLiter != nil {
		current = *u.MilkLiter
	}
	return !p.MilkLiter.Equal(current)
}

func (UserPatch) isRequestPayload() {}

func strPtr(s string) *string { return &s }

func decPtrOrZero(d *decimal.Decimal) *decimal.Decimal {
	v := decimal.Zero
	if d != nil {
		v = *d
	}
	return &v
}
