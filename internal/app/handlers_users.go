package app

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/services/sentry"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// HandleListUsers returns one page of registered users. Password hashes never
// serialize; the model tags them json:"-".
func (a *App) HandleListUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	users, total, err := a.db.ListUsers(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		a.toSentry(c, "list_users", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveUsers, nil)
		return
	}

	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, UserListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}
