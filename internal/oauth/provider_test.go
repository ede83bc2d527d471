package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestParseGoogleProfile(t *testing.T) {
	p, err := parseGoogleProfile([]byte(`{"id":"1","email":"g@x.com","name":"Gee","verified_email":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Email != "g@x.com" || p.Name != "Gee" {
		t.Fatalf("profile = %+v", p)
	}
}

func TestParseMicrosoftProfile(t *testing.T) {
	p, err := parseMicrosoftProfile([]byte(`{"mail":"m@x.com","userPrincipalName":"upn@x.com","displayName":"Em"}`))
	if err != nil || p.Email != "m@x.com" || p.Name != "Em" {
		t.Fatalf("profile = %+v, err = %v", p, err)
	}

	p, err = parseMicrosoftProfile([]byte(`{"mail":null,"userPrincipalName":"upn@x.com","displayName":"Em"}`))
	if err != nil || p.Email != "upn@x.com" {
		t.Fatalf("fallback profile = %+v, err = %v", p, err)
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := NewGoogle("client-id", "secret", "http://api.test")

	u, err := url.Parse(p.AuthCodeURL("state-123"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("state") != "state-123" || q.Get("client_id") != "client-id" {
		t.Fatalf("query = %v", q)
	}
	if q.Get("redirect_uri") != "http://api.test/api/auth/google/callback" {
		t.Fatalf("redirect_uri = %q", q.Get("redirect_uri"))
	}

	m := NewMicrosoft("ms-id", "secret", "common", "http://api.test")
	if !strings.Contains(m.AuthCodeURL("s"), "login.microsoftonline.com/common") {
		t.Fatalf("microsoft url = %s", m.AuthCodeURL("s"))
	}
}

// fakeProvider serves both the token endpoint and the profile endpoint.
func fakeProvider(t *testing.T, profile string) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &Provider{
		Name: "fake",
		config: &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
			RedirectURL: "http://api.test/callback",
		},
		profileURL:   srv.URL + "/me",
		parseProfile: parseGoogleProfile,
	}
}

func TestExchange(t *testing.T) {
	p := fakeProvider(t, `{"email":"g@x.com","name":"Gee"}`)

	profile, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Email != "g@x.com" || profile.Name != "Gee" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestExchange_NameFallsBackToEmail(t *testing.T) {
	p := fakeProvider(t, `{"email":"someone@x.com"}`)

	profile, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Name != "someone" {
		t.Fatalf("name = %q", profile.Name)
	}
}

func TestExchange_Errors(t *testing.T) {
	p := fakeProvider(t, `{"name":"No Email"}`)

	if _, err := p.Exchange(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error for rejected code")
	}
	if _, err := p.Exchange(context.Background(), "good-code"); !errors.Is(err, ErrNoEmail) {
		t.Fatalf("err = %v, want ErrNoEmail", err)
	}
}
