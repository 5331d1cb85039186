package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/AlexG695/geo-engine-console/geo"
	"github.com/AlexG695/geo-engine-console/internal/metrics"
)

// ZoneRecord is a persisted zone as the server returns it: name plus the raw
// GeoJSON polygon string in (lon,lat) order.
type ZoneRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GeoJSON string `json:"geojson"`
}

// GeofenceAPI is the slice of the upstream API the store needs. An empty
// geojson on update means rename only.
type GeofenceAPI interface {
	ListGeofences(ctx context.Context) ([]ZoneRecord, error)
	CreateGeofence(ctx context.Context, name, geojson string) error
	UpdateGeofence(ctx context.Context, id, name, geojson string) error
	DeleteGeofence(ctx context.Context, id string) error
}

// Geofence is a zone with its ring decoded to display order. Ring is closed
// (first point equals last) and has at least 4 points.
type Geofence struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Ring    []geo.LatLng `json:"ring"`
	GeoJSON string      `json:"geojson"`
}

// GeofenceStore owns the persisted zone collection. Mutations go through the
// server and are followed by a full Refresh, so the local copy is always the
// server's version, never an optimistic patch.
type GeofenceStore struct {
	mu    sync.RWMutex
	api   GeofenceAPI
	log   *zap.SugaredLogger
	zones []Geofence
}

func NewGeofenceStore(api GeofenceAPI, log *zap.SugaredLogger) *GeofenceStore {
	return &GeofenceStore{api: api, log: log}
}

// Refresh fetches all zones and replaces the collection wholesale. On
// transport error the previous collection is left untouched. Zones whose
// geometry fails to decode are skipped with a log line.
func (s *GeofenceStore) Refresh(ctx context.Context) error {
	records, err := s.api.ListGeofences(ctx)
	if err != nil {
		metrics.SnapshotRefreshTotal.WithLabelValues("geofences", "error").Inc()
		return err
	}
	zones := make([]Geofence, 0, len(records))
	for _, rec := range records {
		ring, err := geo.ParsePolygon(rec.GeoJSON)
		if err != nil {
			s.log.Warnw("skipping zone with undecodable geometry",
				"id", rec.ID, "name", rec.Name,
				"error", &DecodeError{What: "zone geometry", Err: err})
			metrics.ZonesSkippedTotal.Inc()
			continue
		}
		zones = append(zones, Geofence{ID: rec.ID, Name: rec.Name, Ring: ring, GeoJSON: rec.GeoJSON})
	}
	s.mu.Lock()
	s.zones = zones
	s.mu.Unlock()
	metrics.SnapshotRefreshTotal.WithLabelValues("geofences", "ok").Inc()
	return nil
}

// Create serializes the open vertex list as a closed (lon,lat) polygon,
// submits it, and re-syncs from the server on success.
func (s *GeofenceStore) Create(ctx context.Context, name string, verts []geo.LatLng) error {
	raw, err := geo.MarshalPolygon(verts)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	if err := s.api.CreateGeofence(ctx, name, raw); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Update reshapes and/or renames a zone. A nil vertex list is the pure rename
// path: only the name travels. Re-syncs from the server on success.
func (s *GeofenceStore) Update(ctx context.Context, id, name string, verts []geo.LatLng) error {
	raw := ""
	if verts != nil {
		var err error
		raw, err = geo.MarshalPolygon(verts)
		if err != nil {
			return &ValidationError{Msg: err.Error()}
		}
	}
	if err := s.api.UpdateGeofence(ctx, id, name, raw); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes a zone and re-syncs from the server on success.
func (s *GeofenceStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteGeofence(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Zones returns the current collection. Callers must not modify the rings.
func (s *GeofenceStore) Zones() []Geofence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Geofence, len(s.zones))
	copy(out, s.zones)
	return out
}

// Get returns the zone with the given id.
func (s *GeofenceStore) Get(id string) (Geofence, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, z := range s.zones {
		if z.ID == id {
			return z, true
		}
	}
	return Geofence{}, false
}

// ZonesContaining returns every zone whose polygon contains pt.
func (s *GeofenceStore) ZonesContaining(pt geo.LatLng) []Geofence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Geofence
	for _, z := range s.zones {
		if geo.RingContains(z.Ring, pt) {
			out = append(out, z)
		}
	}
	return out
}

func (s *GeofenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones)
}
