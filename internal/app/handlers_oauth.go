package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/sdk/models"
	"github.com/contactdesk/contact-service/internal/sdk/sqldb"
	"github.com/contactdesk/contact-service/internal/services/oauth"
	"github.com/contactdesk/contact-service/internal/services/sentry"
)

const (
	oauthStateCookie = "oauth_state"
	stateCookieTTL   = 600 // seconds
)

// errAccountConflict marks an email that already belongs to a password
// account with no linked Google id; the caller must use password login.
var errAccountConflict = errors.New("account exists with password login")

// HandleGoogleLogin starts the Google OAuth flow. The state value is stored
// in a short-lived cookie and checked on callback.
func (a *App) HandleGoogleLogin(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		a.toSentry(c, "google_login", "state", sentry.LevelError, err)
		a.redirectWithError(c, "Google login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, stateCookieTTL, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, a.oauth.LoginURL(state))
}

// HandleGoogleCallback finishes the OAuth flow: verifies state, exchanges the
// code, resolves the profile to a user and redirects to the frontend with a
// session token. Failures redirect with an error query parameter; no error
// page is rendered server side.
func (a *App) HandleGoogleCallback(c *gin.Context) {
	state := c.Query("state")
	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie == "" || stateCookie != state {
		a.redirectWithError(c, "Invalid OAuth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		a.redirectWithError(c, "Missing authorization code")
		return
	}

	profile, err := a.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		a.toSentry(c, "google_callback", "exchange", sentry.LevelError, err)
		a.redirectWithError(c, "Google authentication error")
		return
	}

	user, err := a.resolveOAuthUser(c.Request.Context(), profile)
	if err != nil {
		if errors.Is(err, errAccountConflict) {
			a.redirectWithError(c, "This email is registered with a password. Please log in with your password.")
			return
		}
		a.toSentry(c, "google_callback", "resolve", sentry.LevelError, err)
		a.redirectWithError(c, "Google authentication error")
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		a.toSentry(c, "google_callback", "jwt", sentry.LevelError, err)
		a.redirectWithError(c, "Google authentication error")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/oauth-success?token=%s", a.frontendURL, url.QueryEscape(token)))
}

// resolveOAuthUser maps a Google profile to a user record:
//  1. a user already linked to this Google id wins;
//  2. a user with the same email is linked, unless it is a password-only
//     account (conflict: password login required);
//  3. otherwise a new user is created from the profile.
func (a *App) resolveOAuthUser(ctx context.Context, profile oauth.Profile) (models.User, error) {
	user, err := a.db.GetUserByGoogleID(ctx, profile.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sqldb.ErrDBNotFound) {
		return models.User{}, fmt.Errorf("looking up user by google id: %w", err)
	}

	user, err = a.db.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		if len(user.Password) > 0 && user.GoogleID == nil {
			return models.User{}, errAccountConflict
		}
		linked, err := a.db.LinkGoogleID(ctx, user.ID, profile.GoogleID)
		if err != nil {
			return models.User{}, fmt.Errorf("linking google id: %w", err)
		}
		return linked, nil
	}
	if !errors.Is(err, sqldb.ErrDBNotFound) {
		return models.User{}, fmt.Errorf("looking up user by email: %w", err)
	}

	googleID := profile.GoogleID
	created, err := a.db.CreateUser(ctx, models.NewUser{
		Name:     profile.Name,
		Email:    profile.Email,
		GoogleID: &googleID,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("creating user from profile: %w", err)
	}
	return created, nil
}

func (a *App) redirectWithError(c *gin.Context, message string) {
	c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/login?error=%s", a.frontendURL, url.QueryEscape(message)))
}

// generateState returns a cryptographically random CSRF state value.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
