package auth

import "time"

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID string
	Role   string
	Email  string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Active       bool       `json:"active"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type NewUser struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}
