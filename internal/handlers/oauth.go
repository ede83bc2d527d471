package handlers

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"task-manager-backend/internal/oauth"
	"task-manager-backend/internal/services"

	"github.com/gorilla/mux"
)

const stateCookie = "oauth_state"

// OAuthProvider is satisfied by *oauth.Provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Profile, error)
}

type OAuthHandler struct {
	auth        *services.AuthService
	providers   map[string]OAuthProvider
	frontendURL string
}

func NewOAuthHandler(auth *services.AuthService, providers map[string]OAuthProvider, frontendURL string) *OAuthHandler {
	if providers == nil {
		providers = map[string]OAuthProvider{}
	}
	return &OAuthHandler{auth: auth, providers: providers, frontendURL: frontendURL}
}

// Begin redirects the browser to the provider's consent page.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["provider"]
	provider, ok := h.providers[name]
	if !ok {
		sendError(w, http.StatusNotFound, name+" login is not configured")
		return
	}

	state, err := newState()
	if err != nil {
		log.Printf("oauth %s: state: %v", name, err)
		sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the exchange, signs the user in, and hands the session
// back to the frontend through query parameters.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["provider"]
	provider, ok := h.providers[name]
	if !ok {
		sendError(w, http.StatusNotFound, name+" login is not configured")
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth", MaxAge: -1})

	q := r.URL.Query()
	cookie, err := r.Cookie(stateCookie)
	if err != nil || q.Get("state") == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		log.Printf("oauth %s: state mismatch", name)
		h.fail(w, r)
		return
	}
	if e := q.Get("error"); e != "" || q.Get("code") == "" {
		log.Printf("oauth %s: provider returned error %q", name, e)
		h.fail(w, r)
		return
	}

	profile, err := provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Printf("oauth %s: %v", name, err)
		h.fail(w, r)
		return
	}

	result, err := h.auth.FindOrCreate(r.Context(), profile.Email, profile.Name)
	if err != nil {
		log.Printf("oauth %s: find or create user: %v", name, err)
		h.fail(w, r)
		return
	}

	params := url.Values{}
	params.Set("token", result.Token)
	params.Set("userId", strconv.Itoa(result.UserID))
	params.Set("email", result.Email)
	params.Set("name", result.Name)
	http.Redirect(w, r, h.frontendURL+"/auth/callback?"+params.Encode(), http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/login?error=oauth_failed", http.StatusFound)
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
