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
)

func testProvider(tokenURL, userInfoURL string) *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:5000/auth/google/callback",
		AuthURL:      "http://example.com/auth",
		TokenURL:     tokenURL,
		UserInfoURL:  userInfoURL,
	})
}

func TestLoginURL(t *testing.T) {
	p := testProvider("http://example.com/token", "http://example.com/userinfo")

	raw := p.LoginURL("state-xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing login URL: %v", err)
	}

	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Fatalf("expected client_id in URL, got %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-xyz" {
		t.Fatalf("expected state to round-trip, got %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("expected response_type=code, got %q", q.Get("response_type"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Fatalf("expected email scope, got %q", q.Get("scope"))
	}
}

func TestExchange(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parsing token form: %v", err)
			}
			if r.PostForm.Get("code") != "auth-code" {
				t.Fatalf("expected code auth-code, got %q", r.PostForm.Get("code"))
			}
			if r.PostForm.Get("grant_type") != "authorization_code" {
				t.Fatalf("unexpected grant_type %q", r.PostForm.Get("grant_type"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-123",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		}))
		defer tokenSrv.Close()

		userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer access-123" {
				t.Fatalf("expected bearer header, got %q", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{
				"sub":   "google-sub-1",
				"email": "a@x.com",
				"name":  "A",
			})
		}))
		defer userSrv.Close()

		p := testProvider(tokenSrv.URL, userSrv.URL)
		profile, err := p.Exchange(context.Background(), "auth-code")
		if err != nil {
			t.Fatalf("Exchange returned error: %v", err)
		}
		if profile.GoogleID != "google-sub-1" {
			t.Fatalf("expected google id google-sub-1, got %q", profile.GoogleID)
		}
		if profile.Email != "a@x.com" {
			t.Fatalf("expected email a@x.com, got %q", profile.Email)
		}
	})

	t.Run("token endpoint error", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer tokenSrv.Close()

		p := testProvider(tokenSrv.URL, "http://example.invalid/userinfo")
		_, err := p.Exchange(context.Background(), "bad-code")
		if !errors.Is(err, ErrExchangeFailed) {
			t.Fatalf("expected ErrExchangeFailed, got %v", err)
		}
	})

	t.Run("empty access token", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"token_type": "Bearer"})
		}))
		defer tokenSrv.Close()

		p := testProvider(tokenSrv.URL, "http://example.invalid/userinfo")
		_, err := p.Exchange(context.Background(), "auth-code")
		if !errors.Is(err, ErrExchangeFailed) {
			t.Fatalf("expected ErrExchangeFailed, got %v", err)
		}
	})

	t.Run("userinfo missing subject", func(t *testing.T) {
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "access-123"})
		}))
		defer tokenSrv.Close()

		userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"email": "a@x.com"})
		}))
		defer userSrv.Close()

		p := testProvider(tokenSrv.URL, userSrv.URL)
		_, err := p.Exchange(context.Background(), "auth-code")
		if !errors.Is(err, ErrExchangeFailed) {
			t.Fatalf("expected ErrExchangeFailed, got %v", err)
		}
	})
}
