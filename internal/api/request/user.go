package request

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateUserRequest represents the request body for creating a user.
// Role defaults to MANAGER and isActive to true.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}
