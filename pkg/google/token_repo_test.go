package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/familyhub/familyhub/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/oauth2"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, TokenRepository) {
	ctx := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(ctx))
	})
	return ctx, NewTokenRepository(db)
}

func TestTokenRepositoryImpl(t *testing.T) {

	t.Run("should store the token of a started authorization", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		expiry := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
		require.NoError(t, repo.StartAuthorization(ctx, test_utils.TestUserId, "nonce-1"))

		// when
		err := repo.StoreToken(ctx, "nonce-1", &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: expiry})

		// then
		require.NoError(t, err)
		token, err := repo.GetToken(ctx, test_utils.TestUserId)
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "access", token.AccessToken)
		assert.Equal(t, "refresh", token.RefreshToken)
		assert.True(t, expiry.Equal(token.Expiry))
	})

	t.Run("should return no token before the callback", func(t *testing.T) {
		ctx, repo := setupTestRepository(t)
		require.NoError(t, repo.StartAuthorization(ctx, test_utils.TestUserId, "nonce-1"))

		token, err := repo.GetToken(ctx, test_utils.TestUserId)

		require.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("should replace the previous authorization on a new login", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		require.NoError(t, repo.StartAuthorization(ctx, test_utils.TestUserId, "nonce-1"))
		require.NoError(t, repo.StoreToken(ctx, "nonce-1", &oauth2.Token{AccessToken: "old"}))

		// when
		require.NoError(t, repo.StartAuthorization(ctx, test_utils.TestUserId, "nonce-2"))

		// then
		token, err := repo.GetToken(ctx, test_utils.TestUserId)
		require.NoError(t, err)
		assert.Nil(t, token)
		assert.ErrorIs(t, repo.StoreToken(ctx, "nonce-1", &oauth2.Token{AccessToken: "late"}), ErrUnknownNonce)
	})

	t.Run("should delete the authorization", func(t *testing.T) {
		// given
		ctx, repo := setupTestRepository(t)
		require.NoError(t, repo.StartAuthorization(ctx, test_utils.TestUserId, "nonce-1"))
		require.NoError(t, repo.StoreToken(ctx, "nonce-1", &oauth2.Token{AccessToken: "access"}))

		// when
		err := repo.Delete(ctx, test_utils.TestUserId)

		// then
		require.NoError(t, err)
		token, err := repo.GetToken(ctx, test_utils.TestUserId)
		require.NoError(t, err)
		assert.Nil(t, token)
	})
}
