package dto

import (
	"github.com/lanehart/authd/internal/domain"
)

// UserView is the public projection of a user record. Keys are
// camelCase on the wire.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	IsVerified  bool   `json:"isVerified"`
	IsSuperuser bool   `json:"isSuperuser"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Username:    u.Username,
		IsVerified:  u.Verified,
		IsSuperuser: u.Superuser,
	}
}

// SignupResponse is returned with 201 on successful registration. The
// new account's id sits at the top level; the full projection rides
// along under user.
type SignupResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	UserID  string   `json:"userId"`
	User    UserView `json:"user"`
}

// LoginResponse is returned with 200 on successful login. token is the
// raw bearer string; its metadata sits alongside it.
type LoginResponse struct {
	Success   bool     `json:"success"`
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	ExpiresIn int64    `json:"expiresIn"`
	User      UserView `json:"user"`
}

// MessageResponse is the generic success envelope.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MeResponse is returned by GET /me.
type MeResponse struct {
	Success bool     `json:"success"`
	User    UserView `json:"user"`
}
