//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"contact-book/internal/domain"
	"contact-book/internal/testpg"
)

func seedUser(t *testing.T, repo *PgUserRepository, email string) domain.User {
	t.Helper()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestPostgresRepositories(t *testing.T) {
	pool := testpg.Start(t)
	ctx := context.Background()
	users := NewPgUserRepository(pool)
	contacts := NewPgContactRepository(pool)

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := users.Create(ctx, domain.User{ID: uuid.NewString(), Email: "alice@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()})
		require.ErrorIs(t, err, ErrDuplicateEmail)

		stored, err := users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, stored.ID)
	})

	t.Run("email lookup is exact", func(t *testing.T) {
		_, err := users.GetByEmail(ctx, "ALICE@example.com")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set verified is idempotent", func(t *testing.T) {
		u, err := users.SetVerified(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, u.IsVerified)
		u, err = users.SetVerified(ctx, alice.ID)
		require.NoError(t, err)
		require.True(t, u.IsVerified)
	})

	t.Run("set avatar url", func(t *testing.T) {
		u, err := users.SetAvatarURL(ctx, alice.ID, "https://cdn.example.com/avatars/a")
		require.NoError(t, err)
		require.NotNil(t, u.AvatarURL)
		require.Equal(t, "https://cdn.example.com/avatars/a", *u.AvatarURL)
	})

	base := time.Now().UTC()
	birthday := domain.NewDate(1990, time.March, 14)
	info := "met at conference"
	anna := domain.Contact{
		ID: uuid.NewString(), OwnerID: alice.ID,
		FirstName: "Anna", LastName: "Lee", Email: "anna@x.com", Phone: "123",
		Birthday: &birthday, AdditionalInfo: &info, CreatedAt: base,
	}
	bobSmith := domain.Contact{
		ID: uuid.NewString(), OwnerID: alice.ID,
		FirstName: "Bob", LastName: "Smith", Email: "bob@x.com", Phone: "456",
		CreatedAt: base.Add(time.Second),
	}
	require.NoError(t, contacts.Create(ctx, anna))
	require.NoError(t, contacts.Create(ctx, bobSmith))

	t.Run("owner scoping", func(t *testing.T) {
		_, err := contacts.GetByID(ctx, bob.ID, anna.ID)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = contacts.Update(ctx, bob.ID, anna.ID, domain.ContactPatch{FirstName: domain.Some("Hacked")})
		require.ErrorIs(t, err, ErrNotFound)

		require.ErrorIs(t, contacts.Delete(ctx, bob.ID, anna.ID), ErrNotFound)

		got, err := contacts.GetByID(ctx, alice.ID, anna.ID)
		require.NoError(t, err)
		require.Equal(t, "Anna", got.FirstName)
	})

	t.Run("list is ordered and windowed", func(t *testing.T) {
		all, err := contacts.List(ctx, alice.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, anna.ID, all[0].ID)

		page, err := contacts.List(ctx, alice.ID, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, bobSmith.ID, page[0].ID)

		none, err := contacts.List(ctx, bob.ID, 0, 10)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("search is case insensitive substring", func(t *testing.T) {
		found, err := contacts.Search(ctx, alice.ID, "an")
		require.NoError(t, err)
		require.Len(t, found, 1)
		require.Equal(t, anna.ID, found[0].ID)

		found, err = contacts.Search(ctx, alice.ID, "%")
		require.NoError(t, err)
		require.Empty(t, found)
	})

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		updated, err := contacts.Update(ctx, alice.ID, anna.ID, domain.ContactPatch{Phone: domain.Some("999")})
		require.NoError(t, err)
		require.Equal(t, "999", updated.Phone)
		require.Equal(t, "Anna", updated.FirstName)
		require.Equal(t, "anna@x.com", updated.Email)
		require.NotNil(t, updated.Birthday)
		require.Equal(t, birthday.String(), updated.Birthday.String())
		require.NotNil(t, updated.AdditionalInfo)

		same, err := contacts.Update(ctx, alice.ID, anna.ID, domain.ContactPatch{})
		require.NoError(t, err)
		require.Equal(t, updated.Phone, same.Phone)
	})

	t.Run("birthday listing skips null birthdays", func(t *testing.T) {
		withBirthday, err := contacts.ListWithBirthday(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, withBirthday, 1)
		require.Equal(t, anna.ID, withBirthday[0].ID)
	})

	t.Run("explicit null clears nullable fields", func(t *testing.T) {
		cleared, err := contacts.Update(ctx, alice.ID, anna.ID, domain.ContactPatch{
			Birthday:       domain.Null[domain.Date](),
			AdditionalInfo: domain.Null[string](),
		})
		require.NoError(t, err)
		require.Nil(t, cleared.Birthday)
		require.Nil(t, cleared.AdditionalInfo)
		require.Equal(t, "999", cleared.Phone)

		withBirthday, err := contacts.ListWithBirthday(ctx, alice.ID)
		require.NoError(t, err)
		require.Empty(t, withBirthday)

		restored, err := contacts.Update(ctx, alice.ID, anna.ID, domain.ContactPatch{Birthday: domain.Some(birthday)})
		require.NoError(t, err)
		require.NotNil(t, restored.Birthday)
		require.Equal(t, birthday.String(), restored.Birthday.String())
		require.Nil(t, restored.AdditionalInfo)
	})

	t.Run("deleting a user cascades to contacts", func(t *testing.T) {
		_, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, alice.ID)
		require.NoError(t, err)

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE owner_id = $1`, alice.ID).Scan(&n))
		require.Zero(t, n)
	})
}
