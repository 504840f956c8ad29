package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/manivpc/manivpc-api/config"
	"github.com/manivpc/manivpc-api/logger"
)

// Coordinates is a resolved geographic position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationInterface resolves addresses and suggests city and street names
type LocationInterface interface {
	Geocode(ctx context.Context, address, city string) (*Coordinates, error)
	SearchCities(ctx context.Context, query string) ([]string, error)
	SearchStreets(ctx context.Context, query, city string) ([]string, error)
}

// LocationService talks to Nominatim for geocoding and to the national
// city registry for city suggestions. Both upstreams are slow and rate
// limited, so results are cached per query for the process lifetime.
type LocationService struct {
	geocodeBaseURL string
	citiesBaseURL  string
	httpClient     *http.Client

	mu          sync.RWMutex
	geocodeHits map[string]*Coordinates
	cityHits    map[string][]string
	streetHits  map[string][]string
}

// cityRegistryResource is the data.gov.il datastore resource holding the
// official list of settlements
const cityRegistryResource = "5c78e9fa-c2e2-4771-93ff-7f400a12f7ba"

var locationServiceInstance LocationInterface

// InitLocationService initializes the location service from configuration
func InitLocationService(cfg *config.Config) LocationInterface {
	locationServiceInstance = &LocationService{
		geocodeBaseURL: cfg.GeocodeBaseURL,
		citiesBaseURL:  cfg.CitiesBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		geocodeHits: make(map[string]*Coordinates),
		cityHits:    make(map[string][]string),
		streetHits:  make(map[string][]string),
	}
	return locationServiceInstance
}

// GetLocationService returns the initialized location service instance
func GetLocationService() LocationInterface {
	return locationServiceInstance
}

// SetLocationService sets the location service instance (primarily for testing)
func SetLocationService(service LocationInterface) {
	locationServiceInstance = service
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		Road string `json:"road"`
	} `json:"address"`
}

// Geocode resolves a street address within a city to coordinates. A miss
// on the upstream returns an error rather than zero coordinates.
func (s *LocationService) Geocode(ctx context.Context, address, city string) (*Coordinates, error) {
	query := strings.TrimSpace(address) + ", " + strings.TrimSpace(city) + ", Israel"

	s.mu.RLock()
	if cached, ok := s.geocodeHits[query]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", s.geocodeBaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "manivpc-api")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("address %q could not be resolved", query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid latitude %q", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid longitude %q", results[0].Lon)
	}

	coords := &Coordinates{Latitude: lat, Longitude: lon}

	s.mu.Lock()
	s.geocodeHits[query] = coords
	s.mu.Unlock()

	logger.L().Sugar().Debugw("geocoded address", "query", query, "lat", lat, "lon", lon)
	return coords, nil
}

type cityRegistryResponse struct {
	Result struct {
		Records []struct {
			Name string `json:"city_name_en"`
		} `json:"records"`
	} `json:"result"`
}

// SearchCities returns official city names matching the query prefix
func (s *LocationService) SearchCities(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)

	s.mu.RLock()
	if cached, ok := s.cityHits[query]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	endpoint := fmt.Sprintf("%s/api/3/action/datastore_search?resource_id=%s&limit=100&q=%s",
		s.citiesBaseURL, cityRegistryResource, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create city search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call city registry: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("city registry returned status %d", resp.StatusCode)
	}

	var parsed cityRegistryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode city registry response: %w", err)
	}

	cities := make([]string, 0, len(parsed.Result.Records))
	for _, rec := range parsed.Result.Records {
		name := strings.TrimSpace(rec.Name)
		if name != "" {
			cities = append(cities, name)
		}
	}

	s.mu.Lock()
	s.cityHits[query] = cities
	s.mu.Unlock()

	return cities, nil
}

// SearchStreets suggests street names within a city matching the query
func (s *LocationService) SearchStreets(ctx context.Context, query, city string) ([]string, error) {
	cacheKey := strings.TrimSpace(query) + "|" + strings.TrimSpace(city)

	s.mu.RLock()
	if cached, ok := s.streetHits[cacheKey]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	q := fmt.Sprintf("%s, %s, Israel", strings.TrimSpace(query), strings.TrimSpace(city))
	endpoint := fmt.Sprintf("%s/search?format=json&limit=10&addressdetails=1&q=%s", s.geocodeBaseURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create street search request: %w", err)
	}
	req.Header.Set("User-Agent", "manivpc-api")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call geocoder: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode street search response: %w", err)
	}

	seen := make(map[string]bool)
	streets := make([]string, 0, len(results))
	for _, r := range results {
		name := strings.TrimSpace(r.Address.Road)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		streets = append(streets, name)
	}

	s.mu.Lock()
	s.streetHits[cacheKey] = streets
	s.mu.Unlock()

	return streets, nil
}
