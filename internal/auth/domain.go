package auth

import "time"

// User represents a registered account.
type User struct {
	ID                  int64
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Phone               string
	Role                string
	ResetToken          *string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UserWithOrderCount augments a user with their order total for admin listings.
type UserWithOrderCount struct {
	User
	OrderCount int
}
