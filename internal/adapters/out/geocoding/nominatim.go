// Package geocoding resolves street addresses to coordinates through a
// Nominatim-compatible search endpoint. Resolution failures are expected and
// non-fatal: intake substitutes the depot's coordinates instead.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const defaultTimeout = 5 * time.Second

// NominatimGeocoder implements ports.Geocoder against a Nominatim search API.
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewNominatimGeocoder creates a geocoder for the given base URL, e.g.
// "https://nominatim.openstreetmap.org". Client may be nil for a default
// with a five second timeout.
func NewNominatimGeocoder(baseURL string, client *http.Client) (*NominatimGeocoder, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &NominatimGeocoder{
		baseURL: baseURL,
		client:  client,
	}, nil
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks the address up and returns its coordinates with the original
// address attached. An empty result set is an error; callers fall back to
// the depot.
func (g *NominatimGeocoder) Resolve(ctx context.Context, address string) (kernel.Location, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s",
		g.baseURL, url.QueryEscape(address))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return kernel.Location{}, err
	}

	response, err := g.client.Do(request)
	if err != nil {
		return kernel.Location{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return kernel.Location{}, fmt.Errorf("geocoding search returned status %d", response.StatusCode)
	}

	var results []searchResult
	if err = json.NewDecoder(response.Body).Decode(&results); err != nil {
		return kernel.Location{}, err
	}
	if len(results) == 0 {
		return kernel.Location{}, errs.NewObjectNotFoundError("address", address)
	}

	latitude, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return kernel.Location{}, err
	}
	longitude, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return kernel.Location{}, err
	}

	return kernel.NewLocationWithAddress(latitude, longitude, address)
}
