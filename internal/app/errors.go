package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrUnmarshal          = "invalid_request_body"
	ErrMissingFields      = "missing_required_fields"
	ErrInvalidEmail       = "invalid_email"
	ErrPasswordTooShort   = "password_too_short"
	ErrValidation         = "validation_failed"
	ErrEmailTaken         = "email_already_used"
	ErrInvalidCredentials = "invalid_credentials"
	ErrUnauthorized       = "unauthorized"
	ErrContactNotFound    = "contact_not_found"
	ErrInvalidImage       = "invalid_image"
	ErrHashPassword       = "internal_hash_error"
	ErrCreateUser         = "internal_create_user_error"
	ErrProcessLogin       = "internal_login_error"
	ErrRetrieveUsers      = "internal_retrieve_users_error"
	ErrGenerateToken      = "internal_generate_token_error"
	ErrRetrieveContacts   = "internal_retrieve_contacts_error"
	ErrCreateContact      = "internal_create_contact_error"
	ErrUpdateContact      = "internal_update_contact_error"
	ErrDeleteContact      = "internal_delete_contact_error"
	ErrStorePhoto         = "internal_store_photo_error"
)

// Login and duplicate-email failures map to 400; clients treat both as
// form-level errors.
var errorStatusMap = map[string]int{
	ErrUnmarshal:          http.StatusBadRequest,
	ErrMissingFields:      http.StatusBadRequest,
	ErrInvalidEmail:       http.StatusBadRequest,
	ErrPasswordTooShort:   http.StatusBadRequest,
	ErrValidation:         http.StatusBadRequest,
	ErrEmailTaken:         http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusBadRequest,
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrContactNotFound:    http.StatusNotFound,
	ErrInvalidImage:       http.StatusBadRequest,
	ErrHashPassword:       http.StatusInternalServerError,
	ErrCreateUser:         http.StatusInternalServerError,
	ErrProcessLogin:       http.StatusInternalServerError,
	ErrRetrieveUsers:      http.StatusInternalServerError,
	ErrGenerateToken:      http.StatusInternalServerError,
	ErrRetrieveContacts:   http.StatusInternalServerError,
	ErrCreateContact:      http.StatusInternalServerError,
	ErrUpdateContact:      http.StatusInternalServerError,
	ErrDeleteContact:      http.StatusInternalServerError,
	ErrStorePhoto:         http.StatusInternalServerError,
}

func statusForError(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code string, details map[string]string) {
	c.JSON(statusForError(code), ErrorResponse{Error: code, Details: details})
}
