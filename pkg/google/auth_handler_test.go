package google

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/familyhub/familyhub/internal/config"
	"github.com/familyhub/familyhub/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setupAuth(t *testing.T) (*GoogleAuth, *TokenRepositoryStub) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "valid-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-token","token_type":"Bearer","refresh_token":"refresh-token","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	tokens := NewTokenRepositoryStub()
	auth := NewGoogleAuth(tokens, config.Application{
		Host:   "http://localhost:3000",
		Google: config.Google{ClientId: "client-id", ClientSecret: "client-secret"},
	})
	auth.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.example.com/auth",
		TokenURL:  tokenServer.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return auth, tokens
}

func login(t *testing.T, auth *GoogleAuth) string {
	req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/login?finalUrl=http://localhost:3000/settings", nil)
	req = req.WithContext(test_utils.TestUserContext())
	rr := httptest.NewRecorder()
	auth.OAuthLogin(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var redirect googleAuthRedirect
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&redirect))
	redirectUrl, err := url.Parse(redirect.RedirectUrl)
	require.NoError(t, err)
	return redirectUrl.Query().Get("state")
}

func TestGoogleAuth_OAuthLogin(t *testing.T) {
	// given
	auth, tokens := setupAuth(t)

	// when
	state := login(t, auth)

	// then
	finalUrl, nonce, found := strings.Cut(state, "|")
	require.True(t, found)
	assert.Equal(t, "http://localhost:3000/settings", finalUrl)
	assert.Equal(t, nonce, tokens.nonces[test_utils.TestUserId])
}

func TestGoogleAuth_OAuthCallback(t *testing.T) {

	t.Run("should store the token and redirect with success", func(t *testing.T) {
		// given
		auth, tokens := setupAuth(t)
		state := login(t, auth)
		req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=valid-code&state="+url.QueryEscape(state), nil)
		rr := httptest.NewRecorder()

		// when
		auth.OAuthCallback(rr, req)

		// then
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "http://localhost:3000/settings?success=true", rr.Header().Get("Location"))
		token, err := tokens.GetToken(test_utils.TestUserContext(), test_utils.TestUserId)
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "access-token", token.AccessToken)
		assert.Equal(t, "refresh-token", token.RefreshToken)
	})

	t.Run("should redirect with failure when the code is rejected", func(t *testing.T) {
		// given
		auth, tokens := setupAuth(t)
		state := login(t, auth)
		req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=bad-code&state="+url.QueryEscape(state), nil)
		rr := httptest.NewRecorder()

		// when
		auth.OAuthCallback(rr, req)

		// then
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "http://localhost:3000/settings?success=false", rr.Header().Get("Location"))
		token, err := tokens.GetToken(test_utils.TestUserContext(), test_utils.TestUserId)
		require.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("should reject a state without nonce", func(t *testing.T) {
		auth, _ := setupAuth(t)
		req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=valid-code&state=nonce-missing", nil)
		rr := httptest.NewRecorder()

		auth.OAuthCallback(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGoogleAuth_OAuthLogout(t *testing.T) {
	// given
	auth, tokens := setupAuth(t)
	ctx := test_utils.TestUserContext()
	authorize(t, ctx, tokens)
	req := httptest.NewRequest(http.MethodPost, "/api/integrations/google/auth/logout", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	// when
	auth.OAuthLogout(rr, req)

	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	token, err := tokens.GetToken(ctx, test_utils.TestUserId)
	require.NoError(t, err)
	assert.Nil(t, token)
}
