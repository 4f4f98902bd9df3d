package app

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contactdesk/contact-service/internal/sdk/middleware"
	"github.com/contactdesk/contact-service/internal/sdk/models"
	"github.com/contactdesk/contact-service/internal/sdk/sqldb"
	"github.com/contactdesk/contact-service/internal/services/sentry"
)

const maxPhotoSize = 5 << 20 // 5 MB

func (a *App) HandleListContacts(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	contacts, err := a.db.ListContactsByOwner(c.Request.Context(), userID)
	if err != nil {
		a.toSentry(c, "list_contacts", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveContacts, nil)
		return
	}

	if contacts == nil {
		contacts = []models.Contact{}
	}
	for i := range contacts {
		a.fillPhotoURL(&contacts[i])
	}

	c.JSON(http.StatusOK, contacts)
}

func (a *App) HandleCreateContact(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if validationErrors := validateContactInput(req); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	contact, err := a.db.CreateContact(c.Request.Context(), models.NewContact{
		UserID:         userID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Age:            req.Age,
		SecondaryPhone: req.SecondaryPhone,
	})
	if err != nil {
		a.toSentry(c, "create_contact", "db", sentry.LevelError, err)
		writeError(c, ErrCreateContact, nil)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (a *App) HandleUpdateContact(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	var req ContactPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if validationErrors := validateContactPatch(req); len(validationErrors) > 0 {
		writeError(c, ErrValidation, validationErrors)
		return
	}

	contact, err := a.db.UpdateContact(c.Request.Context(), userID, c.Param("id"), models.ContactPatch{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Age:            req.Age,
		SecondaryPhone: req.SecondaryPhone,
	})
	if err != nil {
		// Not-found covers both a missing id and someone else's contact.
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "update_contact", "db", sentry.LevelError, err)
		writeError(c, ErrUpdateContact, nil)
		return
	}

	a.fillPhotoURL(&contact)
	c.JSON(http.StatusOK, contact)
}

func (a *App) HandleDeleteContact(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	contactID := c.Param("id")

	// Fetch first so a stored photo can be cleaned up after the delete.
	contact, err := a.db.GetContactByID(c.Request.Context(), userID, contactID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "delete_contact", "db", sentry.LevelError, err)
		writeError(c, ErrDeleteContact, nil)
		return
	}

	if err := a.db.DeleteContact(c.Request.Context(), userID, contactID); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "delete_contact", "db", sentry.LevelError, err)
		writeError(c, ErrDeleteContact, nil)
		return
	}

	if contact.PhotoObject != nil && a.photos != nil {
		if err := a.photos.DeleteWithVariants(c.Request.Context(), *contact.PhotoObject); err != nil {
			a.toSentry(c, "delete_contact", "storage", sentry.LevelWarning, err)
		}
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Deleted"})
}

// HandleUploadContactPhoto stores a photo for a contact the caller owns.
// The image is saved with small/medium/large variants.
func (a *App) HandleUploadContactPhoto(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}
	if a.photos == nil {
		writeError(c, ErrStorePhoto, nil)
		return
	}

	contactID := c.Param("id")

	// Ownership check before the upload touches storage.
	contact, err := a.db.GetContactByID(c.Request.Context(), userID, contactID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "upload_photo", "db", sentry.LevelError, err)
		writeError(c, ErrStorePhoto, nil)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}
	if fileHeader.Size > maxPhotoSize {
		writeError(c, ErrInvalidImage, map[string]string{"photo": "file_too_large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		a.toSentry(c, "upload_photo", "form", sentry.LevelError, err)
		writeError(c, ErrStorePhoto, nil)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	objectName := fmt.Sprintf("contacts/%s/%s%s", userID, contactID, ext)

	contentType := fileHeader.Header.Get("Content-Type")
	if err := a.photos.UploadWithVariants(c.Request.Context(), objectName, file, contentType); err != nil {
		a.toSentry(c, "upload_photo", "storage", sentry.LevelError, err)
		writeError(c, ErrInvalidImage, nil)
		return
	}

	contact, err = a.db.SetContactPhoto(c.Request.Context(), userID, contactID, &objectName)
	if err != nil {
		a.toSentry(c, "upload_photo", "db", sentry.LevelError, err)
		writeError(c, ErrStorePhoto, nil)
		return
	}

	a.fillPhotoURL(&contact)
	c.JSON(http.StatusOK, contact)
}

func (a *App) HandleDeleteContactPhoto(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}
	if a.photos == nil {
		writeError(c, ErrStorePhoto, nil)
		return
	}

	contactID := c.Param("id")

	contact, err := a.db.GetContactByID(c.Request.Context(), userID, contactID)
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			writeError(c, ErrContactNotFound, nil)
			return
		}
		a.toSentry(c, "delete_photo", "db", sentry.LevelError, err)
		writeError(c, ErrStorePhoto, nil)
		return
	}

	if contact.PhotoObject != nil {
		if err := a.photos.DeleteWithVariants(c.Request.Context(), *contact.PhotoObject); err != nil {
			a.toSentry(c, "delete_photo", "storage", sentry.LevelWarning, err)
		}
	}

	contact, err = a.db.SetContactPhoto(c.Request.Context(), userID, contactID, nil)
	if err != nil {
		a.toSentry(c, "delete_photo", "db", sentry.LevelError, err)
		writeError(c, ErrStorePhoto, nil)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (a *App) fillPhotoURL(contact *models.Contact) {
	if contact.PhotoObject != nil && a.photos != nil {
		contact.PhotoURL = a.photos.GetPublicURL(*contact.PhotoObject)
	}
}
