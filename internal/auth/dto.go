package auth

import "time"

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Phone     string `json:"phone" validate:"omitempty,min=10"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Phone     string `json:"phone" validate:"omitempty,min=10"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type ListUsersRequest struct {
	Search string
	Page   int
	Limit  int
}

// UserResponse is the public projection of a user; the password hash and
// reset token never leave the service.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserListItem is the admin listing projection of a user.
type UserListItem struct {
	UserResponse
	OrderCount int `json:"orderCount"`
}

// NewUserListItems maps the admin listing rows to their public projection.
func NewUserListItems(rows []UserWithOrderCount) []UserListItem {
	items := make([]UserListItem, 0, len(rows))
	for i := range rows {
		items = append(items, UserListItem{
			UserResponse: NewUserResponse(&rows[i].User),
			OrderCount:   rows[i].OrderCount,
		})
	}
	return items
}

// NewUserResponse maps a user record to its public projection.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
