package services

import (
	"context"
	"fmt"
	"sync"
)

// SentEmail records one call made through the mock
type SentEmail struct {
	TemplateID string
	Params     map[string]string
}

// MockEmailService is an in-memory EmailInterface for testing
type MockEmailService struct {
	mu      sync.Mutex
	sent    []SentEmail
	failAll bool
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SetAsMockForTesting sets this mock as the global email service instance
func (m *MockEmailService) SetAsMockForTesting() {
	SetEmailService(m)
}

// FailAll makes every subsequent Send return an error
func (m *MockEmailService) FailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

// Send records the email instead of delivering it
func (m *MockEmailService) Send(ctx context.Context, templateID string, params map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return fmt.Errorf("mock email service configured to fail")
	}

	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	m.sent = append(m.sent, SentEmail{TemplateID: templateID, Params: copied})
	return nil
}

// Sent returns a snapshot of everything sent so far
func (m *MockEmailService) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset clears the recorded sends
func (m *MockEmailService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
