// Package api implements the REST client for the fleet backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/AlexG695/geo-engine-console/engine"
	"github.com/AlexG695/geo-engine-console/internal/metrics"
)

// Client talks to the fleet backend over HTTP. It satisfies
// engine.ConsoleAPI; every failure comes back as an engine.TransportError so
// callers can keep their previous state and classify the outcome.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ engine.ConsoleAPI = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchNearbyDrivers returns the drivers within radius meters of the point.
func (c *Client) FetchNearbyDrivers(ctx context.Context, lat, lng, radius float64) ([]engine.Driver, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lng", fmt.Sprintf("%f", lng))
	q.Set("radius", fmt.Sprintf("%f", radius))

	var payload struct {
		Data []engine.Driver `json:"data"`
	}
	if err := c.do(ctx, "fetch drivers", http.MethodGet, "/drivers/nearby?"+q.Encode(), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// FetchRoute returns a device's route as (lon,lat) pairs in travel order.
func (c *Client) FetchRoute(ctx context.Context, deviceID string) ([][2]float64, error) {
	var payload struct {
		Coordinates [][2]float64 `json:"coordinates"`
	}
	path := "/drivers/" + url.PathEscape(deviceID) + "/route"
	if err := c.do(ctx, "fetch route", http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Coordinates, nil
}

func (c *Client) ListGeofences(ctx context.Context) ([]engine.ZoneRecord, error) {
	var records []engine.ZoneRecord
	if err := c.do(ctx, "list geofences", http.MethodGet, "/geofences", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) CreateGeofence(ctx context.Context, name, geojson string) error {
	body := map[string]string{"name": name, "geojson": geojson}
	return c.do(ctx, "create geofence", http.MethodPost, "/geofences", body, nil)
}

// UpdateGeofence renames and/or reshapes a zone. Empty fields are omitted so
// the server only touches what changed.
func (c *Client) UpdateGeofence(ctx context.Context, id, name, geojson string) error {
	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if geojson != "" {
		body["geojson"] = geojson
	}
	return c.do(ctx, "update geofence", http.MethodPut, "/geofences/"+url.PathEscape(id), body, nil)
}

func (c *Client) DeleteGeofence(ctx context.Context, id string) error {
	return c.do(ctx, "delete geofence", http.MethodDelete, "/geofences/"+url.PathEscape(id), nil, nil)
}

// do runs one round trip. body is JSON-encoded when non-nil; out is decoded
// into when non-nil and the response is 2xx.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &engine.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &engine.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		return &engine.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &engine.TransportError{
			Op:  op,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.APIRequestsTotal.WithLabelValues(op, "error").Inc()
			return &engine.TransportError{Op: op, Err: err}
		}
	}
	metrics.APIRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}
