package engine

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/AlexG695/geo-engine-console/geo"
)

type fakeConsoleAPI struct {
	fakeGeofenceAPI
	driversFn func(ctx context.Context, lat, lng, radius float64) ([]Driver, error)
	routeFn   func(ctx context.Context, deviceID string) ([][2]float64, error)
}

func (f *fakeConsoleAPI) FetchNearbyDrivers(ctx context.Context, lat, lng, radius float64) ([]Driver, error) {
	return f.driversFn(ctx, lat, lng, radius)
}

func (f *fakeConsoleAPI) FetchRoute(ctx context.Context, deviceID string) ([][2]float64, error) {
	return f.routeFn(ctx, deviceID)
}

func newTestSession(api *fakeConsoleAPI) *Session {
	return NewSession(api, geo.LatLng{Lat: 28.6353, Lng: -106.0889}, 50000, 4, zap.NewNop().Sugar())
}

func happyAPI(t *testing.T) *fakeConsoleAPI {
	t.Helper()
	raw := validZoneJSON(t)
	return &fakeConsoleAPI{
		fakeGeofenceAPI: fakeGeofenceAPI{
			listFn: func(context.Context) ([]ZoneRecord, error) {
				return []ZoneRecord{{ID: "z1", Name: "Centro", GeoJSON: raw}}, nil
			},
			createFn: func(context.Context, string, string) error { return nil },
			updateFn: func(context.Context, string, string, string) error { return nil },
			deleteFn: func(context.Context, string) error { return nil },
		},
		driversFn: func(context.Context, float64, float64, float64) ([]Driver, error) {
			return snapshotDrivers(), nil
		},
		routeFn: func(context.Context, string) ([][2]float64, error) {
			return [][2]float64{{-106.08, 28.63}, {-106.09, 28.64}}, nil
		},
	}
}

func TestSessionBootstrap(t *testing.T) {
	s := newTestSession(happyAPI(t))
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if s.Registry.Len() != 2 {
		t.Errorf("drivers = %d, want 2", s.Registry.Len())
	}
	if s.Geofences.Len() != 1 {
		t.Errorf("zones = %d, want 1", s.Geofences.Len())
	}
}

func TestSessionBootstrapFailSoft(t *testing.T) {
	api := happyAPI(t)
	api.driversFn = func(context.Context, float64, float64, float64) ([]Driver, error) {
		return nil, &TransportError{Op: "fetch drivers", Err: errors.New("down")}
	}
	s := newTestSession(api)

	err := s.Bootstrap(context.Background())
	if err == nil {
		t.Fatal("bootstrap error swallowed")
	}
	if s.Geofences.Len() != 1 {
		t.Error("geofence fetch skipped after driver failure")
	}
}

func TestSessionSelectDriverLoadsRoute(t *testing.T) {
	s := newTestSession(happyAPI(t))
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if err := s.SelectDriver(context.Background(), "taxi-001"); err != nil {
		t.Fatalf("SelectDriver: %v", err)
	}
	route := s.Route()
	if len(route) != 2 {
		t.Fatalf("route len = %d, want 2", len(route))
	}
	// Wire order is (lon,lat); display order is (lat,lng).
	if route[0].Lat != 28.63 || route[0].Lng != -106.08 {
		t.Errorf("route[0] = %v", route[0])
	}

	s.ClearSelection()
	if s.Registry.Selected() != "" {
		t.Error("selection not cleared")
	}
	if len(s.Route()) != 0 {
		t.Error("route not cleared with selection")
	}
}

func TestSessionSelectDriverKeepsSelectionOnRouteFailure(t *testing.T) {
	api := happyAPI(t)
	api.routeFn = func(context.Context, string) ([][2]float64, error) {
		return nil, &TransportError{Op: "fetch route", Err: errors.New("down")}
	}
	s := newTestSession(api)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if err := s.SelectDriver(context.Background(), "taxi-001"); err == nil {
		t.Fatal("route failure swallowed")
	}
	if s.Registry.Selected() != "taxi-001" {
		t.Error("selection dropped on route failure")
	}
	if len(s.Route()) != 0 {
		t.Error("stale route kept on failure")
	}
}

func TestSessionSelectUnknownDriver(t *testing.T) {
	s := newTestSession(happyAPI(t))
	err := s.SelectDriver(context.Background(), "taxi-999")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSessionSaveZoneCreatesFromDrawing(t *testing.T) {
	api := happyAPI(t)
	var createdName string
	api.createFn = func(_ context.Context, name, geojson string) error {
		createdName = name
		return nil
	}
	s := newTestSession(api)

	s.StartDrawing()
	for _, v := range triangle() {
		if err := s.AddVertex(v); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	if err := s.SaveZone(context.Background(), "Nueva"); err != nil {
		t.Fatalf("SaveZone: %v", err)
	}
	if createdName != "Nueva" {
		t.Errorf("created name = %q", createdName)
	}
	if s.Editor.Mode() != ModeIdle {
		t.Error("editor not reset after successful save")
	}
}

func TestSessionSaveZoneKeepsEditorOnFailure(t *testing.T) {
	api := happyAPI(t)
	api.createFn = func(context.Context, string, string) error {
		return &TransportError{Op: "create geofence", Err: errors.New("down")}
	}
	s := newTestSession(api)

	s.StartDrawing()
	for _, v := range triangle() {
		if err := s.AddVertex(v); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	if err := s.SaveZone(context.Background(), "Nueva"); err == nil {
		t.Fatal("store failure swallowed")
	}
	if s.Editor.Mode() != ModeDrawing {
		t.Error("editor reset despite failed save")
	}
	if s.Editor.VertexCount() != 3 {
		t.Error("vertices lost despite failed save")
	}
}

func TestSessionSaveZoneUpdatesFromEdit(t *testing.T) {
	api := happyAPI(t)
	var updatedID string
	api.updateFn = func(_ context.Context, id, name, geojson string) error {
		updatedID = id
		if geojson == "" {
			t.Error("reshape sent empty geometry")
		}
		return nil
	}
	s := newTestSession(api)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if err := s.BeginEdit("z1"); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if err := s.MoveVertex(0, geo.LatLng{Lat: 0.5, Lng: 0.5}); err != nil {
		t.Fatalf("MoveVertex: %v", err)
	}
	if err := s.SaveZone(context.Background(), "Centro"); err != nil {
		t.Fatalf("SaveZone: %v", err)
	}
	if updatedID != "z1" {
		t.Errorf("updated id = %q", updatedID)
	}
	if s.Editor.Mode() != ModeIdle {
		t.Error("editor not reset after successful save")
	}
}

func TestSessionSaveZoneRequiresName(t *testing.T) {
	s := newTestSession(happyAPI(t))
	s.StartDrawing()
	for _, v := range triangle() {
		if err := s.AddVertex(v); err != nil {
			t.Fatalf("AddVertex: %v", err)
		}
	}
	err := s.SaveZone(context.Background(), "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if s.Editor.VertexCount() != 3 {
		t.Error("rejected save touched the editor")
	}
}

func TestSessionRenameZone(t *testing.T) {
	api := happyAPI(t)
	var gotGeoJSON = "unset"
	api.updateFn = func(_ context.Context, id, name, geojson string) error {
		gotGeoJSON = geojson
		return nil
	}
	s := newTestSession(api)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if err := s.RenameZone(context.Background(), "z1", "Otro"); err != nil {
		t.Fatalf("RenameZone: %v", err)
	}
	if gotGeoJSON != "" {
		t.Errorf("rename sent geometry: %q", gotGeoJSON)
	}
}

func TestSessionDeleteZoneCancelsPendingEdit(t *testing.T) {
	s := newTestSession(happyAPI(t))
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := s.BeginEdit("z1"); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if err := s.DeleteZone(context.Background(), "z1"); err != nil {
		t.Fatalf("DeleteZone: %v", err)
	}
	if s.Editor.Mode() != ModeIdle {
		t.Error("edit session survived deletion of its target")
	}
}

func TestSessionStreamToSnapshot(t *testing.T) {
	s := newTestSession(happyAPI(t))
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	s.HandleStreamMessage([]byte(`{"type":"LOCATION_UPDATE","device_id":"taxi-050","latitude":28.6,"longitude":-106.0,"heading":0}`))
	s.HandleStreamMessage([]byte(`{"type":"GEOFENCE_EVENT","event":"ENTER","device_id":"taxi-050","zone_name":"Centro"}`))

	vm := s.Snapshot()
	if len(vm.Drivers) != 3 {
		t.Errorf("drivers = %d, want 3", len(vm.Drivers))
	}
	if len(vm.Alerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(vm.Alerts))
	}
	if vm.Edit.Mode != "idle" {
		t.Errorf("edit mode = %q", vm.Edit.Mode)
	}
}
