package google

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/familyhub/familyhub/internal/config"
	"github.com/familyhub/familyhub/internal/rest"
	"github.com/familyhub/familyhub/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

type GoogleAuth struct {
	tokens      TokenRepository
	oauthConfig *oauth2.Config
}

func NewGoogleAuth(tokens TokenRepository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}

	return &GoogleAuth{tokens: tokens, oauthConfig: oauthConfig}
}

// OAuthLogin godoc
// @Summary Start the Google Calendar authorization
// @Description Returns the Google consent page URL. After the consent the user is redirected to finalUrl.
// @Tags Google
// @Produce json
// @Param finalUrl query string false "URL to return to after the authorization"
// @Success 200 {object} googleAuthRedirect
// @Router /api/integrations/google/auth/login [get]
// @Security XUserId
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current user: ", err)
		http.Error(w, "unable to retrieve current user", http.StatusInternalServerError)
		return
	}

	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	if err := g.tokens.StartAuthorization(r.Context(), userId, stateNonce); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.WriteHeader(http.StatusOK)
	encodeErr := json.NewEncoder(w).Encode(googleAuthRedirect{
		RedirectUrl: u,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

// OAuthCallback godoc
// @Summary Google authorization callback
// @Description Stores the token of the authorization started by the login and redirects to its finalUrl
// @Tags Google
// @Param code query string true "Authorization code"
// @Param state query string true "State passed to the consent page"
// @Success 302
// @Router /api/integrations/google/auth/callback [get]
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	finalUrl, nonce, found := strings.Cut(state, "|")
	if !found || nonce == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	if err := g.tokens.StoreToken(r.Context(), nonce, token); err != nil {
		log.Errorf("unable to store Google auth token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// OAuthLogout godoc
// @Summary Remove the Google Calendar authorization
// @Tags Google
// @Success 204
// @Router /api/integrations/google/auth/logout [post]
// @Security XUserId
func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		log.Error("unable to retrieve current user: ", err)
		http.Error(w, "unable to retrieve current user", http.StatusInternalServerError)
		return
	}
	if err := g.tokens.Delete(r.Context(), userId); err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getClient returns nil when the user has not authorized access.
func (g *GoogleAuth) getClient(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.tokens.GetToken(ctx, userId)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
