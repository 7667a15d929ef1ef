package postgres

import "time"

// userRow mirrors the users table. Kept separate from the domain type so
// storage columns can evolve without leaking into the workflow.
type userRow struct {
	ID           string
	Email        string
	Name         string
	Username     string
	PasswordHash string
	IsVerified   bool
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
