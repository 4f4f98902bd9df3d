package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/sdk/models"
	"github.com/contactdesk/contact-service/internal/sdk/sqldb"
	"github.com/contactdesk/contact-service/internal/services/sentry"
)

func (a *App) HandleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "register", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	errCode, validationErrors := validateRegisterInput(req)
	if errCode != "" {
		writeError(c, errCode, validationErrors)
		return
	}

	hashedPassword, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "register", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	user, err := a.db.CreateUser(c.Request.Context(), models.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, sqldb.ErrDBDuplicatedEntry) {
			writeError(c, ErrEmailTaken, nil)
			return
		}
		a.toSentry(c, "register", "db", sentry.LevelError, err)
		writeError(c, ErrCreateUser, nil)
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		a.toSentry(c, "register", "jwt", sentry.LevelError, err)
		writeError(c, ErrGenerateToken, nil)
		return
	}

	// Welcome mail is best effort; a delivery failure must not block signup.
	go func(email, name string) {
		if err := a.email.SendWelcomeEmail(email, name); err != nil {
			a.sentry.CaptureException(err)
		}
	}(user.Email, user.Name)

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

func (a *App) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "login", "unmarshal", sentry.LevelWarning, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if validationErrors := validateLoginInput(req); len(validationErrors) > 0 {
		writeError(c, ErrMissingFields, validationErrors)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "login", "db", sentry.LevelError, err)
		writeError(c, ErrProcessLogin, nil)
		return
	}

	// Same error for unknown account and wrong password to avoid enumeration.
	// A Google-only account has no hash and always fails here.
	if !a.hash.CheckPasswordHash(req.Password, user.Password) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		a.toSentry(c, "login", "jwt", sentry.LevelError, err)
		writeError(c, ErrGenerateToken, nil)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
