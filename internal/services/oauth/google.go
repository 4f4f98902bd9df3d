// Package oauth provides Google OAuth 2.0 sign-in.
//
// The provider talks to Google's token and userinfo endpoints directly. The
// endpoint URLs are overridable so the exchange can be tested against a local
// httptest server.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var ErrExchangeFailed = errors.New("oauth: code exchange failed")

// Profile is the subset of the Google account profile the service needs.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
}

// GoogleConfig configures the Google provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overridable endpoints, used by tests.
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// GoogleProvider implements Google OAuth 2.0 authorization code flow.
type GoogleProvider struct {
	config GoogleConfig
	client *http.Client
}

// NewGoogleProvider creates a GoogleProvider. Missing endpoint URLs fall back
// to Google's production endpoints.
func NewGoogleProvider(config GoogleConfig) *GoogleProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultUserInfoURL
	}
	return &GoogleProvider{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// GoogleConfigFromEnv reads provider credentials from the environment:
// GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_CALLBACK_URL.
func GoogleConfigFromEnv() GoogleConfig {
	return GoogleConfig{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
	}
}

// LoginURL builds the authorization URL the client is redirected to.
// Scope covers email and profile; state is round-tripped for CSRF checking.
func (p *GoogleProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userInfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades an authorization code for the account profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	token, err := p.exchangeToken(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	info, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	return Profile{
		GoogleID: info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}

func (p *GoogleProvider) exchangeToken(ctx context.Context, code string) (*tokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, errors.New("empty access token in response")
	}

	return &token, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*userInfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d: %s", resp.StatusCode, body)
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.New("empty subject in userinfo response")
	}

	return &info, nil
}
