package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kbediako/rentpadi/internal/domain/enums"
	"github.com/kbediako/rentpadi/internal/domain/model"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) CreateUser(ctx context.Context, user model.User, now time.Time) (model.User, error) {
	phone := strings.TrimSpace(user.Phone)
	if phone == "" || user.PasswordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	phone,
	full_name,
	password_hash,
	role,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $5)
RETURNING id, created_at, updated_at
`, phone, user.FullName, user.PasswordHash, string(user.Role), now).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.User{}, authsvc.ErrPhoneTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	user.Phone = phone
	return user, nil
}

func (r *UserRepo) GetUserByPhone(ctx context.Context, phone string) (model.User, bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return model.User{}, false, fmt.Errorf("phone is required")
	}
	if r.pool == nil {
		return model.User{}, false, fmt.Errorf("postgres pool is nil")
	}

	user, err := r.scanUser(r.pool.QueryRow(ctx, `
SELECT id, phone, full_name, password_hash, role, created_at, updated_at
FROM users
WHERE phone = $1
LIMIT 1
`, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("get user by phone: %w", err)
	}

	return user, true, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID int64) (model.User, bool, error) {
	if userID <= 0 {
		return model.User{}, false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.User{}, false, fmt.Errorf("postgres pool is nil")
	}

	user, err := r.scanUser(r.pool.QueryRow(ctx, `
SELECT id, phone, full_name, password_hash, role, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, false, nil
		}
		return model.User{}, false, fmt.Errorf("get user by id: %w", err)
	}

	return user, true, nil
}

func (r *UserRepo) scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Phone,
		&user.FullName,
		&user.PasswordHash,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return model.User{}, err
	}

	user.Role = enums.Role(role)
	return user, nil
}
