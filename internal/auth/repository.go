package auth

import (
	"context"
	"database/sql"
	"errors"

	"scholarship-service/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(bunDB *bun.DB) Repository {
	return &repository{
		db: bunDB,
	}
}

// Create inserts a new user. The unique index on email is the source of
// truth for duplicates; two racing registrations for the same email cannot
// both succeed.
func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
