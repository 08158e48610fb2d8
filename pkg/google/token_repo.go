package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var ErrUnknownNonce = errors.New("unknown Google authentication nonce")

// TokenRepository keeps one Google authorization per user. A login starts a new
// authorization identified by a nonce; the callback attaches the token to it.
type TokenRepository interface {
	StartAuthorization(ctx context.Context, userId int, nonce string) error
	StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error
	// GetToken returns nil when the user has not authorized access.
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	Delete(ctx context.Context, userId int) error
}

type TokenRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	query := `INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET nonce = EXCLUDED.nonce, access_token = '', refresh_token = '', expiry = 0`
	_, err := r.db.Exec(ctx, query, userId, nonce)
	if err != nil {
		err := fmt.Errorf("failed to store Google auth nonce for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *TokenRepositoryImpl) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error {
	query := `UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4`
	tag, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		err := fmt.Errorf("unable to store Google auth token for nonce: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownNonce
	}
	return nil
}

func (r *TokenRepositoryImpl) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	query := `SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE user_id = $1 AND access_token <> ''`
	var token oauth2.Token
	var expiryTimestamp int64
	err := r.db.QueryRow(ctx, query, userId).Scan(&token.AccessToken, &token.RefreshToken, &expiryTimestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth token: %w", err)
		log.Error(err)
		return nil, err
	}
	token.Expiry = time.Unix(expiryTimestamp, 0)
	return &token, nil
}

func (r *TokenRepositoryImpl) Delete(ctx context.Context, userId int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM google_calendar_auth WHERE user_id = $1`, userId)
	if err != nil {
		err := fmt.Errorf("failed to delete Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}
