package application_test

import (
	"context"
	"testing"
	"time"

	"scholarship-service/internal/application"
	"scholarship-service/internal/auth"
	"scholarship-service/internal/db"
	"scholarship-service/internal/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Shared(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, pgContainer.DB, (*auth.User)(nil), (*application.Application)(nil)))

	repo := application.NewRepository(pgContainer.DB)

	newApp := func(userID int) *application.Application {
		return &application.Application{
			UserID:      userID,
			FullName:    "A",
			DateOfBirth: "2000-01-01",
			Essay:       "My essay.",
			Status:      application.StatusSubmitted,
		}
	}

	t.Run("Insert_Success", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "applications")

		created, err := repo.Insert(ctx, newApp(1))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, application.StatusSubmitted, created.Status)
		assert.False(t, created.SubmittedAt.IsZero())
		assert.False(t, created.UpdatedAt.IsZero())
	})

	// The unique index on user_id is what enforces one application per
	// user under concurrent submissions.
	t.Run("Insert_SecondForSameUser", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "applications")

		_, err := repo.Insert(ctx, newApp(1))
		require.NoError(t, err)

		_, err = repo.Insert(ctx, newApp(1))
		assert.ErrorIs(t, err, application.ErrAlreadySubmitted)

		count, err := pgContainer.DB.NewSelect().Model((*application.Application)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("GetByUserID_Success", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "applications")

		app := newApp(7)
		doc := "transcript.pdf"
		app.TranscriptDocument = &doc

		created, err := repo.Insert(ctx, app)
		require.NoError(t, err)

		found, err := repo.GetByUserID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
		require.NotNil(t, found.TranscriptDocument)
		assert.Equal(t, "transcript.pdf", *found.TranscriptDocument)
		assert.Nil(t, found.IncomeProofDocument)
	})

	t.Run("GetByUserID_NotFound", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "applications")

		_, err := repo.GetByUserID(ctx, 99)
		assert.ErrorIs(t, err, application.ErrNotFound)
	})

	// The trigger refreshes updated_at on any row change; the admin review
	// subsystem relies on this when it flips status.
	t.Run("UpdatedAt_RefreshedByTrigger", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "applications")

		created, err := repo.Insert(ctx, newApp(1))
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = pgContainer.DB.ExecContext(ctx,
			"UPDATE applications SET status = 'under_review' WHERE id = ?", created.ID)
		require.NoError(t, err)

		updated, err := repo.GetByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "under_review", updated.Status)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	})
}
