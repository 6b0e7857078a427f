package users_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep/gatekeep/internal/platform/db"
	"github.com/gatekeep/gatekeep/internal/shared"
	"github.com/gatekeep/gatekeep/internal/users"
)

// openTestPool connects to the database named by GATEKEEP_TEST_PG_DSN, migrates it
// and empties the users table. Tests skip when the variable is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("GATEKEEP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("GATEKEEP_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func TestRepositoryCreateAndDuplicate(t *testing.T) {
	pool := openTestPool(t)
	repo := users.NewRepository(pool)
	ctx := context.Background()

	doc := "/uploads/1700000000000_id.jpg"
	created, err := repo.Create(ctx, users.NewUser{Name: "Asha", Email: "asha@example.com", Mobile: "9876543210", DocumentPath: &doc})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Nil(t, created.PasswordHash)
	assert.False(t, created.IsAdmin)
	require.NotNil(t, created.DocumentPath)
	assert.Equal(t, doc, *created.DocumentPath)

	_, err = repo.Create(ctx, users.NewUser{Name: "Other", Email: "asha@example.com", Mobile: "9000000000"})
	assert.ErrorIs(t, err, shared.ErrDuplicateUser)

	byEmail, err := repo.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
	_, err = repo.FindByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestRepositoryPasswordAndProfileUpdates(t *testing.T) {
	pool := openTestPool(t)
	repo := users.NewRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, users.NewUser{Name: "Asha", Email: "asha@example.com", Mobile: "9876543210"})
	require.NoError(t, err)

	require.NoError(t, repo.SetPassword(ctx, created.ID, "hash-one"))
	assert.ErrorIs(t, repo.SetPassword(ctx, created.ID+100, "hash"), shared.ErrUserNotFound)

	res, err := repo.UpdateProfile(ctx, users.ProfileUpdate{Email: "asha@example.com", Name: "Asha Rao", Mobile: "9000000000"})
	require.NoError(t, err)
	assert.True(t, res.Matched)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", stored.Name)
	assert.Equal(t, "9000000000", stored.Mobile)
	require.NotNil(t, stored.PasswordHash)
	assert.Equal(t, "hash-one", *stored.PasswordHash)
	assert.Equal(t, created.Revision+2, stored.Revision)

	res, err = repo.UpdateProfile(ctx, users.ProfileUpdate{Email: "ghost@example.com", Name: "Ghost", Mobile: "9000000001"})
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestRepositoryListNonAdminExcludesAdmins(t *testing.T) {
	pool := openTestPool(t)
	repo := users.NewRepository(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO users (name, email, mobile, password_hash, is_admin) VALUES ('Root', 'root@example.com', '', 'x', TRUE)`)
	require.NoError(t, err)
	first, err := repo.Create(ctx, users.NewUser{Name: "Asha", Email: "asha@example.com", Mobile: "9876543210"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, users.NewUser{Name: "Ravi", Email: "ravi@example.com", Mobile: "9876543211"})
	require.NoError(t, err)

	list, err := repo.ListNonAdmin(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []int64{list[0].ID, list[1].ID}
	assert.ElementsMatch(t, []int64{first.ID, second.ID}, ids)
	for _, u := range list {
		assert.False(t, u.IsAdmin)
	}
}
