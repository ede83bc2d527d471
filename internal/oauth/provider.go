// Package oauth wraps the Google and Microsoft authorization-code flows down
// to the only thing the rest of the server needs: a verified email and name.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrNoEmail = errors.New("provider profile has no email")

type Profile struct {
	Email string
	Name  string
}

// Provider is one configured OAuth identity provider.
type Provider struct {
	Name         string
	config       *oauth2.Config
	profileURL   string
	parseProfile func(body []byte) (Profile, error)
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the user profile.
func (p *Provider) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: exchange code: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return Profile{}, err
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: fetch profile: %w", p.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%s: fetch profile: status %d", p.Name, resp.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, fmt.Errorf("%s: decode profile: %w", p.Name, err)
	}

	profile, err := p.parseProfile(body)
	if err != nil {
		return Profile{}, err
	}
	if profile.Email == "" {
		return Profile{}, ErrNoEmail
	}
	if profile.Name == "" {
		profile.Name = strings.Split(profile.Email, "@")[0]
	}
	return profile, nil
}

func NewGoogle(clientID, clientSecret, apiURL string) *Provider {
	return &Provider{
		Name: "google",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.Google,
			RedirectURL:  apiURL + "/api/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
		},
		profileURL:   "https://www.googleapis.com/oauth2/v2/userinfo",
		parseProfile: parseGoogleProfile,
	}
}

func NewMicrosoft(clientID, clientSecret, tenant, apiURL string) *Provider {
	return &Provider{
		Name: "microsoft",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoints.AzureAD(tenant),
			RedirectURL:  apiURL + "/api/auth/microsoft/callback",
			Scopes:       []string{"openid", "email", "profile", "User.Read"},
		},
		profileURL:   "https://graph.microsoft.com/v1.0/me",
		parseProfile: parseMicrosoftProfile,
	}
}

func parseGoogleProfile(body []byte) (Profile, error) {
	var p struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, fmt.Errorf("google: decode profile: %w", err)
	}
	return Profile{Email: p.Email, Name: p.Name}, nil
}

// Graph leaves mail empty for some personal accounts; userPrincipalName is
// the sign-in address in that case.
func parseMicrosoftProfile(body []byte) (Profile, error) {
	var p struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return Profile{}, fmt.Errorf("microsoft: decode profile: %w", err)
	}
	email := p.Mail
	if email == "" {
		email = p.UserPrincipalName
	}
	return Profile{Email: email, Name: p.DisplayName}, nil
}
