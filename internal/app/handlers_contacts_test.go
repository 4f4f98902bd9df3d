package app

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/contactdesk/contact-service/internal/sdk/models"
)

func registerUser(t *testing.T, env *testEnv, email string) (string, string) {
	t.Helper()

	rec := postJSON(t, env.router, "/auth/register", RegisterRequest{
		Name: "User", Email: email, Password: "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s failed: %d %s", email, rec.Code, rec.Body.String())
	}
	resp := decodeAuthResponse(t, rec)
	return resp.User.ID, resp.Token
}

func authedRequest(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func createContact(t *testing.T, env *testEnv, token, name string) models.Contact {
	t.Helper()

	rec := authedRequest(t, env, http.MethodPost, "/api/contacts", token, ContactRequest{Name: name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact failed: %d %s", rec.Code, rec.Body.String())
	}
	var contact models.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &contact); err != nil {
		t.Fatalf("decoding contact: %v", err)
	}
	return contact
}

func TestContactCRUD(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := registerUser(t, env, "a@x.com")

		age := 30
		rec := authedRequest(t, env, http.MethodPost, "/api/contacts", token, ContactRequest{
			Name: "B", Email: "b@x.com", Phone: "123", Age: &age, SecondaryPhone: "456",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		list := authedRequest(t, env, http.MethodGet, "/api/contacts", token, nil)
		if list.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", list.Code)
		}
		var contacts []models.Contact
		if err := json.Unmarshal(list.Body.Bytes(), &contacts); err != nil {
			t.Fatalf("decoding contacts: %v", err)
		}
		if len(contacts) != 1 {
			t.Fatalf("expected 1 contact, got %d", len(contacts))
		}
		if contacts[0].Name != "B" || contacts[0].Phone != "123" {
			t.Fatalf("unexpected contact %+v", contacts[0])
		}
		if contacts[0].Age == nil || *contacts[0].Age != 30 {
			t.Fatalf("expected age 30, got %v", contacts[0].Age)
		}
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := registerUser(t, env, "a@x.com")

		rec := authedRequest(t, env, http.MethodPost, "/api/contacts", token, ContactRequest{Name: "  "})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Error != ErrValidation {
			t.Fatalf("expected %s, got %s", ErrValidation, resp.Error)
		}

		badAge := -1
		rec = authedRequest(t, env, http.MethodPost, "/api/contacts", token, ContactRequest{Name: "B", Age: &badAge})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad age, got %d", rec.Code)
		}
	})

	t.Run("update merges partial fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := registerUser(t, env, "a@x.com")
		contact := createContact(t, env, token, "B")

		phone := "999"
		rec := authedRequest(t, env, http.MethodPut, "/api/contacts/"+contact.ID, token, ContactPatchRequest{Phone: &phone})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var updated models.Contact
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decoding contact: %v", err)
		}
		if updated.Phone != "999" {
			t.Fatalf("expected phone updated, got %q", updated.Phone)
		}
		if updated.Name != "B" {
			t.Fatalf("expected name preserved, got %q", updated.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := registerUser(t, env, "a@x.com")
		contact := createContact(t, env, token, "B")

		rec := authedRequest(t, env, http.MethodDelete, "/api/contacts/"+contact.ID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var msg MessageResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		if msg.Message == "" {
			t.Fatal("expected a message body")
		}

		rec = authedRequest(t, env, http.MethodDelete, "/api/contacts/"+contact.ID, token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d", rec.Code)
		}
	})

	t.Run("unauthenticated requests rejected", func(t *testing.T) {
		env := newTestEnv(t)

		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestContactOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := registerUser(t, env, "u1@x.com")
	_, token2 := registerUser(t, env, "u2@x.com")

	contact1 := createContact(t, env, token1, "B")
	createContact(t, env, token2, "C")

	t.Run("list never crosses users", func(t *testing.T) {
		rec := authedRequest(t, env, http.MethodGet, "/api/contacts", token2, nil)
		var contacts []models.Contact
		if err := json.Unmarshal(rec.Body.Bytes(), &contacts); err != nil {
			t.Fatalf("decoding contacts: %v", err)
		}
		for _, ct := range contacts {
			if ct.ID == contact1.ID {
				t.Fatalf("user 2 can see user 1's contact %s", ct.ID)
			}
		}
		if len(contacts) != 1 {
			t.Fatalf("expected user 2 to see exactly 1 contact, got %d", len(contacts))
		}
	})

	t.Run("cross-user update is 404", func(t *testing.T) {
		name := "hijacked"
		rec := authedRequest(t, env, http.MethodPut, "/api/contacts/"+contact1.ID, token2, ContactPatchRequest{Name: &name})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Error != ErrContactNotFound {
			t.Fatalf("expected %s, got %s", ErrContactNotFound, resp.Error)
		}

		check := authedRequest(t, env, http.MethodGet, "/api/contacts", token1, nil)
		var contacts []models.Contact
		if err := json.Unmarshal(check.Body.Bytes(), &contacts); err != nil {
			t.Fatalf("decoding contacts: %v", err)
		}
		if contacts[0].Name != "B" {
			t.Fatalf("cross-user update mutated the contact: %+v", contacts[0])
		}
	})

	t.Run("cross-user delete is 404", func(t *testing.T) {
		rec := authedRequest(t, env, http.MethodDelete, "/api/contacts/"+contact1.ID, token2, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}

		check := authedRequest(t, env, http.MethodGet, "/api/contacts", token1, nil)
		var contacts []models.Contact
		if err := json.Unmarshal(check.Body.Bytes(), &contacts); err != nil {
			t.Fatalf("decoding contacts: %v", err)
		}
		if len(contacts) != 1 {
			t.Fatalf("cross-user delete removed the contact")
		}
	})
}

func pngUpload(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestContactPhoto(t *testing.T) {
	t.Run("upload and delete", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := registerUser(t, env, "a@x.com")
		contact := createContact(t, env, token, "B")

		body, contentType := pngUpload(t, "photo", "face.png")
		req := httptest.NewRequest(http.MethodPost, "/api/contacts/"+contact.ID+"/photo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var updated models.Contact
		if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decoding contact: %v", err)
		}
		if !strings.HasPrefix(updated.PhotoURL, "http://storage.test/") {
			t.Fatalf("expected photo URL, got %q", updated.PhotoURL)
		}
		if len(env.photos.uploaded) != 1 {
			t.Fatalf("expected 1 uploaded object, got %d", len(env.photos.uploaded))
		}

		del := authedRequest(t, env, http.MethodDelete, "/api/contacts/"+contact.ID+"/photo", token, nil)
		if del.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", del.Code)
		}
		if len(env.photos.deleted) != 1 {
			t.Fatalf("expected 1 deleted object, got %d", len(env.photos.deleted))
		}
	})

	t.Run("cross-user upload is 404", func(t *testing.T) {
		env := newTestEnv(t)
		_, token1 := registerUser(t, env, "u1@x.com")
		_, token2 := registerUser(t, env, "u2@x.com")
		contact := createContact(t, env, token1, "B")

		body, contentType := pngUpload(t, "photo", "face.png")
		req := httptest.NewRequest(http.MethodPost, "/api/contacts/"+contact.ID+"/photo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token2)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if len(env.photos.uploaded) != 0 {
			t.Fatal("cross-user upload must not store an object")
		}
	})
}
