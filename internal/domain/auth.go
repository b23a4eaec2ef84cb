package domain

import "time"

// Token describes an issued session token.
type Token struct {
	Value     string
	SessionID string
	UserID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
