package app

import (
	"net/mail"
	"strings"
)

const (
	minPasswordLength = 6
	maxAge            = 150
)

func validateRegisterInput(req RegisterRequest) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}
	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		validationErrors["email"] = "invalid_email_format"
		return ErrInvalidEmail, validationErrors
	}
	if len(req.Password) < minPasswordLength {
		validationErrors["password"] = "password_too_short"
		return ErrPasswordTooShort, validationErrors
	}

	return "", nil
}

func validateLoginInput(req LoginRequest) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Email) == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateContactInput(req ContactRequest) map[string]string {
	validationErrors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		validationErrors["name"] = "name_required"
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			validationErrors["email"] = "invalid_email_format"
		}
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > maxAge) {
		validationErrors["age"] = "age_out_of_range"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

func validateContactPatch(req ContactPatchRequest) map[string]string {
	validationErrors := make(map[string]string)

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		validationErrors["name"] = "name_required"
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			validationErrors["email"] = "invalid_email_format"
		}
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > maxAge) {
		validationErrors["age"] = "age_out_of_range"
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}
