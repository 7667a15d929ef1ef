package domain

import "time"

// User is the single persistent entity. Email and Username are unique;
// Email is stored lowercased and trimmed. Username is generated once at
// signup and never regenerated.
type User struct {
	ID           string
	Email        string
	Name         string
	Username     string
	PasswordHash string
	Verified     bool
	Active       bool
	Superuser    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanLogin reports whether the account may receive a bearer token,
// with the first blocking condition as the error. Existence and the
// password check are handled by the caller, in that order.
func (u *User) CanLogin() error {
	if !u.Verified {
		return ErrEmailNotVerified()
	}
	if !u.Active {
		return ErrAccountInactive()
	}
	return nil
}
