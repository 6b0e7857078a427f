package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatekeep/gatekeep/internal/shared"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, mobile, password_hash, document_path, is_admin, revision, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a user with an unset password.
func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, mobile, document_path)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, in.Name, in.Email, in.Mobile, in.DocumentPath)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shared.ErrDuplicateUser
		}
		return nil, fmt.Errorf("users: insert: %w", err)
	}
	return user, nil
}

// FindByEmail fetches a user by login email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return user, nil
}

// ListNonAdmin returns every user without the admin flag.
func (r *Repository) ListNonAdmin(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_admin = FALSE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list rows: %w", err)
	}
	return users, nil
}

// SetPassword stores a new password hash in a single atomic write.
func (r *Repository) SetPassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, revision = revision + 1, updated_at = NOW()
		WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("users: set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}
	return nil
}

// UpdateProfile overwrites the record matched by email. A nil hash keeps the stored one.
func (r *Repository) UpdateProfile(ctx context.Context, in ProfileUpdate) (UpdateResult, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $2,
		    mobile = $3,
		    password_hash = COALESCE($4, password_hash),
		    revision = revision + 1,
		    updated_at = NOW()
		WHERE email = $1`, in.Email, in.Name, in.Mobile, in.PasswordHash)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("users: update profile: %w", err)
	}
	return UpdateResult{Matched: tag.RowsAffected() > 0}, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Mobile,
		&u.PasswordHash,
		&u.DocumentPath,
		&u.IsAdmin,
		&u.Revision,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
