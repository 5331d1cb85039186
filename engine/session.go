package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/AlexG695/geo-engine-console/geo"
	"github.com/AlexG695/geo-engine-console/internal/metrics"
)

// ConsoleAPI is everything the session needs from the upstream server.
type ConsoleAPI interface {
	GeofenceAPI
	FetchNearbyDrivers(ctx context.Context, lat, lng, radius float64) ([]Driver, error)
	FetchRoute(ctx context.Context, deviceID string) ([][2]float64, error)
}

// Session wires the registry, geofence store, alert feed and editor together
// behind one facade and is the single entry point for the view layer. Each
// store guards itself; the session adds the route cache and the cross-store
// flows (save a draft, select a driver and load its route).
type Session struct {
	Registry  *Registry
	Geofences *GeofenceStore
	Alerts    *AlertFeed
	Editor    *Editor

	api        ConsoleAPI
	dispatcher *Dispatcher
	log        *zap.SugaredLogger

	center geo.LatLng
	radius float64

	mu    sync.RWMutex
	route []geo.LatLng
}

func NewSession(api ConsoleAPI, center geo.LatLng, radius float64, alertCapacity int, log *zap.SugaredLogger) *Session {
	s := &Session{
		Registry:  NewRegistry(),
		Geofences: NewGeofenceStore(api, log),
		Alerts:    NewAlertFeed(alertCapacity),
		Editor:    NewEditor(),
		api:       api,
		log:       log,
		center:    center,
		radius:    radius,
	}
	s.dispatcher = NewDispatcher(s.Registry, s.Alerts, log)
	return s
}

// Bootstrap performs the initial driver and geofence fetches. Both are
// attempted even if one fails; the joined error reports whatever went wrong
// while the session stays usable with what did load.
func (s *Session) Bootstrap(ctx context.Context) error {
	driverErr := s.RefreshDrivers(ctx)
	if driverErr != nil {
		s.log.Warnw("initial driver fetch failed", "error", driverErr)
	}
	zoneErr := s.Geofences.Refresh(ctx)
	if zoneErr != nil {
		s.log.Warnw("initial geofence fetch failed", "error", zoneErr)
	}
	return errors.Join(driverErr, zoneErr)
}

// RefreshDrivers bulk-fetches drivers around the configured center and
// replaces the registry snapshot. On error the previous snapshot is kept.
func (s *Session) RefreshDrivers(ctx context.Context) error {
	drivers, err := s.api.FetchNearbyDrivers(ctx, s.center.Lat, s.center.Lng, s.radius)
	if err != nil {
		metrics.SnapshotRefreshTotal.WithLabelValues("drivers", "error").Inc()
		return err
	}
	s.Registry.LoadSnapshot(drivers)
	metrics.SnapshotRefreshTotal.WithLabelValues("drivers", "ok").Inc()
	return nil
}

// SelectDriver marks a device selected and fetches its route for display.
// The selection sticks even when the route fetch fails; the stale route from
// a previous selection is cleared either way.
func (s *Session) SelectDriver(ctx context.Context, deviceID string) error {
	if _, ok := s.Registry.Get(deviceID); !ok {
		return &ValidationError{Msg: "unknown device id"}
	}
	s.Registry.Select(deviceID)
	s.setRoute(nil)
	coords, err := s.api.FetchRoute(ctx, deviceID)
	if err != nil {
		s.log.Warnw("route fetch failed", "device_id", deviceID, "error", err)
		return err
	}
	route := make([]geo.LatLng, len(coords))
	for i, c := range coords {
		route[i] = geo.FromLonLat(c)
	}
	s.setRoute(route)
	return nil
}

// ClearSelection drops the selection and the displayed route.
func (s *Session) ClearSelection() {
	s.Registry.ClearSelection()
	s.setRoute(nil)
}

// HandleStreamMessage folds one raw push message into the stores. Safe to use
// directly as the stream read-loop callback.
func (s *Session) HandleStreamMessage(data []byte) {
	s.dispatcher.Dispatch(data)
}

// StartDrawing opens a fresh drawing session, discarding any pending edit.
func (s *Session) StartDrawing() {
	s.Editor.StartDrawing()
}

// BeginEdit opens an edit session seeded from a stored zone.
func (s *Session) BeginEdit(zoneID string) error {
	zone, ok := s.Geofences.Get(zoneID)
	if !ok {
		return &ValidationError{Msg: "unknown zone id"}
	}
	s.Editor.BeginEdit(zone)
	return nil
}

func (s *Session) AddVertex(p geo.LatLng) error { return s.Editor.AddVertex(p) }

func (s *Session) MoveVertex(i int, p geo.LatLng) error { return s.Editor.MoveVertex(i, p) }

func (s *Session) RemoveVertex(i int) error { return s.Editor.RemoveVertex(i) }

func (s *Session) CancelEdit() { s.Editor.Cancel() }

// SaveZone commits the pending edit under the given name. A drawing session
// creates a new zone; an edit session reshapes its target. The editor is
// reset only after the store reports success, so a failed round trip keeps
// the operator's vertices for a retry.
func (s *Session) SaveZone(ctx context.Context, name string) error {
	if name == "" {
		return &ValidationError{Msg: "zone name required"}
	}
	draft, err := s.Editor.Commit()
	if err != nil {
		return err
	}
	if draft.TargetID == "" {
		err = s.Geofences.Create(ctx, name, draft.Vertices)
	} else {
		err = s.Geofences.Update(ctx, draft.TargetID, name, draft.Vertices)
	}
	if err != nil {
		return err
	}
	s.Editor.Reset()
	return nil
}

// RenameZone changes a zone's name without touching its geometry.
func (s *Session) RenameZone(ctx context.Context, zoneID, name string) error {
	if name == "" {
		return &ValidationError{Msg: "zone name required"}
	}
	if _, ok := s.Geofences.Get(zoneID); !ok {
		return &ValidationError{Msg: "unknown zone id"}
	}
	return s.Geofences.Update(ctx, zoneID, name, nil)
}

// DeleteZone removes a zone. If it is the target of the pending edit session
// the edit is cancelled too.
func (s *Session) DeleteZone(ctx context.Context, zoneID string) error {
	if _, ok := s.Geofences.Get(zoneID); !ok {
		return &ValidationError{Msg: "unknown zone id"}
	}
	if err := s.Geofences.Delete(ctx, zoneID); err != nil {
		return err
	}
	if s.Editor.TargetID() == zoneID {
		s.Editor.Cancel()
	}
	return nil
}

// DismissAlert removes one alert from the feed.
func (s *Session) DismissAlert(id int64) bool {
	return s.Alerts.Dismiss(id)
}

// Route returns the selected driver's route in display order.
func (s *Session) Route() []geo.LatLng {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geo.LatLng, len(s.route))
	copy(out, s.route)
	return out
}

func (s *Session) setRoute(route []geo.LatLng) {
	s.mu.Lock()
	s.route = route
	s.mu.Unlock()
}

// EditState is the editor's render snapshot.
type EditState struct {
	Mode     string       `json:"mode"`
	TargetID string       `json:"target_id,omitempty"`
	Vertices []geo.LatLng `json:"vertices"`
}

// ViewModel is one consistent render snapshot of the whole session.
type ViewModel struct {
	Drivers        []DriverView `json:"drivers"`
	Geofences      []Geofence   `json:"geofences"`
	Alerts         []Alert      `json:"alerts"`
	Edit           EditState    `json:"edit"`
	SelectedDevice string       `json:"selected_device,omitempty"`
	Route          []geo.LatLng `json:"route,omitempty"`
}

// Snapshot assembles the current view model. Each store is read under its own
// lock; the snapshot is point-in-time per store, not globally transactional.
func (s *Session) Snapshot() ViewModel {
	drivers := s.Registry.Drivers()
	for i, d := range drivers {
		drivers[i].DistanceMeters = geo.DistanceMeters(s.center, geo.LatLng{Lat: d.Latitude, Lng: d.Longitude})
	}
	return ViewModel{
		Drivers:   drivers,
		Geofences: s.Geofences.Zones(),
		Alerts:    s.Alerts.Alerts(),
		Edit: EditState{
			Mode:     s.Editor.Mode().String(),
			TargetID: s.Editor.TargetID(),
			Vertices: s.Editor.Vertices(),
		},
		SelectedDevice: s.Registry.Selected(),
		Route:          s.Route(),
	}
}
