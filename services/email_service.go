package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
)

// EmailInterface sends transactional emails. Params are flat template
// variables the mail template substitutes.
type EmailInterface interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

// EmailService sends mail through an EmailJS-compatible HTTP API
type EmailService struct {
	baseURL    string
	serviceID  string
	publicKey  string
	httpClient *http.Client
}

var emailServiceInstance EmailInterface

// InitEmailService initializes the email service from configuration
func InitEmailService(cfg *config.Config) EmailInterface {
	emailServiceInstance = &EmailService{
		baseURL:   cfg.EmailAPIBaseURL,
		serviceID: cfg.EmailServiceID,
		publicKey: cfg.EmailPublicKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	return emailServiceInstance
}

// GetEmailService returns the initialized email service instance
func GetEmailService() EmailInterface {
	return emailServiceInstance
}

// SetEmailService sets the email service instance (primarily for testing)
func SetEmailService(service EmailInterface) {
	emailServiceInstance = service
}

type emailSendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts one templated email. Any non-200 response is an error; the
// caller decides whether mail failure blocks the operation.
func (s *EmailService) Send(ctx context.Context, templateID string, params map[string]string) error {
	payload := emailSendRequest{
		ServiceID:      s.serviceID,
		TemplateID:     templateID,
		UserID:         s.publicKey,
		TemplateParams: params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/email/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call email API: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	logger.L().Sugar().Infow("email sent", "template", templateID, "to", params["to_email"])
	return nil
}
