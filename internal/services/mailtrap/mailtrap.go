// Package mailtrap provides transactional email via the Mailtrap API.
package mailtrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Service is the email surface the application depends on.
type Service interface {
	SendWelcomeEmail(toEmail, toName string) error
}

type MailtrapService struct {
	apiKey    string
	url       string
	fromEmail string
	fromName  string
	client    *http.Client
}

func NewMailtrapService() *MailtrapService {
	fromEmail := os.Getenv("MAILTRAP_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "no-reply@contactdesk.app"
	}

	return &MailtrapService{
		apiKey:    os.Getenv("MAILTRAP_API_KEY"),
		url:       os.Getenv("MAILTRAP_API_URL"),
		fromEmail: fromEmail,
		fromName:  "Contact Service",
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// EmailRecipient represents an email recipient
type EmailRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// EmailRequest represents the request payload for sending an email
type EmailRequest struct {
	From     EmailRecipient   `json:"from"`
	To       []EmailRecipient `json:"to"`
	Subject  string           `json:"subject"`
	HTML     string           `json:"html,omitempty"`
	Text     string           `json:"text,omitempty"`
	Category string           `json:"category,omitempty"`
}

// SendWelcomeEmail sends the post-registration welcome mail.
func (m *MailtrapService) SendWelcomeEmail(toEmail, toName string) error {
	if toName == "" {
		toName = "there"
	}

	text := fmt.Sprintf(
		"Hello %s,\n\nYour contact book is ready. Sign in to start adding contacts.\n",
		toName,
	)

	return m.send(EmailRequest{
		From:     EmailRecipient{Email: m.fromEmail, Name: m.fromName},
		To:       []EmailRecipient{{Email: toEmail, Name: toName}},
		Subject:  "Welcome to Contact Service",
		Text:     text,
		Category: "welcome",
	})
}

func (m *MailtrapService) send(req EmailRequest) error {
	if m.apiKey == "" || m.url == "" {
		// Email is optional in local development.
		return nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling email request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Api-Token", m.apiKey)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mailtrap returned status %d", resp.StatusCode)
	}
	return nil
}
