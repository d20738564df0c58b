package application

import (
	"context"
	"database/sql"
	"errors"

	"scholarship-service/internal/db"

	"github.com/uptrace/bun"
)

type Repository interface {
	Insert(ctx context.Context, app *Application) (*Application, error)
	GetByUserID(ctx context.Context, userID int) (*Application, error)
}

type repository struct {
	db *bun.DB
}

func NewRepository(bunDB *bun.DB) Repository {
	return &repository{
		db: bunDB,
	}
}

// Insert creates the application row. The unique index on user_id rejects
// the second of two racing submissions, so the single-submission invariant
// holds without an advisory check-then-insert.
func (r *repository) Insert(ctx context.Context, app *Application) (*Application, error) {
	_, err := r.db.NewInsert().Model(app).Returning("*").Exec(ctx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID int) (*Application, error) {
	app := new(Application)
	err := r.db.NewSelect().
		Model(app).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}
