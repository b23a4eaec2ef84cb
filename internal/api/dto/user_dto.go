package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/ledger"
)

// ChallengeRequest may name an existing session to refresh its code.
type ChallengeRequest struct {
	SessionID string `json:"sessionId"`
}

// ChallengeResponse carries the code the login form must echo back.
type ChallengeResponse struct {
	SessionID string `json:"sessionId"`
	Challenge string `json:"challenge"`
}

// LoginRequest payload for login. Identifier is a username or an email.
type LoginRequest struct {
	SessionID  string `json:"sessionId"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Code       string `json:"code"`
}

// ResumeRequest payload for resuming the remembered session.
type ResumeRequest struct {
	SessionID string `json:"sessionId"`
}

// ForgotPasswordRequest payload for the reset acknowledgement.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	Designation string           `json:"designation"`
	Photo       string           `json:"photo"`
	Role        domain.Role      `json:"role"`
	Phone       string           `json:"phone"`
	MilkLiter   *decimal.Decimal `json:"milkLiter"`
	MilkPrice   *decimal.Decimal `json:"milkPrice"`
}

// User converts the payload.
func (r CreateUserRequest) User() domain.User {
	return domain.User{
		Username:    r.Username,
		Email:       r.Email,
		Password:    r.Password,
		Designation: r.Designation,
		Photo:       r.Photo,
		Role:        r.Role,
		Phone:       r.Phone,
		MilkLiter:   r.MilkLiter,
		MilkPrice:   r.MilkPrice,
	}
}

// UserResponse is a user as shown to clients, without the password.
type UserResponse struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	Designation  string           `json:"designation"`
	Photo        string           `json:"photo"`
	Role         domain.Role      `json:"role"`
	Phone        string           `json:"phone,omitempty"`
	MilkLiter    *decimal.Decimal `json:"milkLiter,omitempty"`
	MilkPrice    *decimal.Decimal `json:"milkPrice,omitempty"`
	Balance      decimal.Decimal  `json:"balance"`
	BalanceLabel ledger.Label     `json:"balanceLabel"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Designation:  u.Designation,
		Photo:        u.Photo,
		Role:         u.Role,
		Phone:        u.Phone,
		MilkLiter:    u.MilkLiter,
		MilkPrice:    u.MilkPrice,
		Balance:      u.Balance,
		BalanceLabel: ledger.BalanceLabel(u.Balance),
	}
}

// NewUserResponses maps a list of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
