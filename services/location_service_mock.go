package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLocationService is an in-memory LocationInterface for testing
type MockLocationService struct {
	mu        sync.RWMutex
	addresses map[string]Coordinates
	cities    []string
	streets   []string
}

// NewMockLocationService creates a new mock location service
func NewMockLocationService() *MockLocationService {
	return &MockLocationService{
		addresses: make(map[string]Coordinates),
	}
}

// SetAsMockForTesting sets this mock as the global location service instance
func (m *MockLocationService) SetAsMockForTesting() {
	SetLocationService(m)
}

// AddAddress registers a resolvable address
func (m *MockLocationService) AddAddress(address, city string, coords Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address+", "+city] = coords
}

// SetCities registers the city list returned by every search
func (m *MockLocationService) SetCities(cities []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities = cities
}

// SetStreets registers the street list returned by every search
func (m *MockLocationService) SetStreets(streets []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streets = streets
}

// Geocode resolves only registered addresses
func (m *MockLocationService) Geocode(ctx context.Context, address, city string) (*Coordinates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coords, ok := m.addresses[address+", "+city]
	if !ok {
		return nil, fmt.Errorf("address %q could not be resolved", address)
	}
	return &coords, nil
}

// SearchCities filters the registered cities by prefix
func (m *MockLocationService) SearchCities(ctx context.Context, query string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, c := range m.cities {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// SearchStreets filters the registered streets by prefix
func (m *MockLocationService) SearchStreets(ctx context.Context, query, city string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, s := range m.streets {
		if strings.HasPrefix(strings.ToLower(s), strings.ToLower(query)) {
			out = append(out, s)
		}
	}
	return out, nil
}
