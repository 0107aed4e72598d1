package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SaumyaSingh04/Chow-Back/internal/config"
)

// GeoClient resolves pincodes to coordinates and coordinate pairs to driving
// distances. Both calls are bounded by the configured timeout.
type GeoClient interface {
	Geocode(ctx context.Context, pincode string) (*Coordinates, error)
	RouteDistanceKm(ctx context.Context, from, to *Coordinates) (float64, error)
}

type Coordinates struct {
	Lat float64
	Lon float64
}

type geoClientImpl struct {
	httpClient   *http.Client
	nominatimURL string
	osrmURL      string
}

func NewGeoClient(cfg *config.Geo) GeoClient {
	return &geoClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		nominatimURL: cfg.NominatimURL,
		osrmURL:      cfg.OSRMURL,
	}
}

func (c *geoClientImpl) Geocode(ctx context.Context, pincode string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("countrycodes", "in")
	q.Set("postalcode", pincode)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.nominatimURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("User-Agent", "ChowApp/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim error %d: %s", resp.StatusCode, string(b))
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding result for pincode %s", pincode)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude: %w", err)
	}

	return &Coordinates{Lat: lat, Lon: lon}, nil
}

func (c *geoClientImpl) RouteDistanceKm(ctx context.Context, from, to *Coordinates) (float64, error) {
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.osrmURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("osrm error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Routes []struct {
			Distance float64 `json:"distance"` // meters
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode osrm response: %w", err)
	}
	if len(result.Routes) == 0 || result.Routes[0].Distance <= 0 {
		return 0, fmt.Errorf("no route found")
	}

	return result.Routes[0].Distance / 1000, nil
}
