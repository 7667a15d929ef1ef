package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lanehart/authd/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, email, name, username, password_hash, is_verified, is_active, is_superuser, created_at, updated_at`

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.Username,
		&ur.PasswordHash,
		&ur.IsVerified,
		&ur.IsActive,
		&ur.IsSuperuser,
		&ur.CreatedAt,
		&ur.UpdatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	return domain.User{
		ID:           ur.ID,
		Email:        ur.Email,
		Name:         ur.Name,
		Username:     ur.Username,
		PasswordHash: ur.PasswordHash,
		Verified:     ur.IsVerified,
		Active:       ur.IsActive,
		Superuser:    ur.IsSuperuser,
		CreatedAt:    ur.CreatedAt,
		UpdatedAt:    ur.UpdatedAt,
	}
}

// uniqueViolation maps a 23505 to the conflicting column's domain error.
func uniqueViolation(err error) *domain.Error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return domain.ErrUsernameAlreadyExists()
	}
	return domain.ErrEmailAlreadyExists()
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	if u.PasswordHash == "" {
		return domain.User{}, domain.ErrMissingField("password_hash")
	}

	const q = `
INSERT INTO users (id, email, name, username, password_hash, is_verified, is_active, is_superuser)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + userColumns + `;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Name, u.Username, u.PasswordHash, u.Verified, u.Active, u.Superuser,
	))
	if err != nil {
		if de := uniqueViolation(err); de != nil {
			return domain.User{}, de
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execExpectingUser(ctx, q, userID, newHash)
}

func (r *UserRepo) SetVerified(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET is_verified = TRUE,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execExpectingUser(ctx, q, userID)
}

func (r *UserRepo) SetSuperuser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET is_superuser = TRUE,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execExpectingUser(ctx, q, userID)
}

func (r *UserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET is_active = $2,
    updated_at = NOW()
WHERE id = $1;
`
	return r.execExpectingUser(ctx, q, userID, active)
}

// execExpectingUser runs an UPDATE that must hit exactly one user row.
func (r *UserRepo) execExpectingUser(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
