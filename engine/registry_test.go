package engine

import "testing"

func snapshotDrivers() []Driver {
	return []Driver{
		{ID: "d1", DeviceID: "taxi-001", Latitude: 28.63, Longitude: -106.08, Heading: 90},
		{ID: "d2", DeviceID: "taxi-002", Latitude: 28.64, Longitude: -106.09, Heading: 180},
	}
}

func TestRegistryApplyUpdateKeepsID(t *testing.T) {
	r := NewRegistry()
	r.LoadSnapshot(snapshotDrivers())

	r.ApplyUpdate("taxi-001", 28.70, -106.10, 45)

	d, ok := r.Get("taxi-001")
	if !ok {
		t.Fatal("taxi-001 missing after update")
	}
	if d.ID != "d1" {
		t.Errorf("id changed on update: got %q, want %q", d.ID, "d1")
	}
	if d.Latitude != 28.70 || d.Longitude != -106.10 || d.Heading != 45 {
		t.Errorf("position not replaced: %+v", d)
	}
	if r.Len() != 2 {
		t.Errorf("update duplicated entry: len = %d", r.Len())
	}
}

func TestRegistryApplyUpdateUnknownDevice(t *testing.T) {
	r := NewRegistry()
	r.LoadSnapshot(snapshotDrivers())

	r.ApplyUpdate("taxi-099", 28.50, -106.00, 0)

	d, ok := r.Get("taxi-099")
	if !ok {
		t.Fatal("unknown device not inserted")
	}
	if d.ID != "live-taxi-099" {
		t.Errorf("synthetic id: got %q, want %q", d.ID, "live-taxi-099")
	}
	if r.Len() != 3 {
		t.Errorf("len = %d, want 3", r.Len())
	}
}

func TestRegistrySnapshotReplacesEverything(t *testing.T) {
	r := NewRegistry()
	r.LoadSnapshot(snapshotDrivers())
	r.ApplyUpdate("taxi-099", 28.50, -106.00, 0)

	r.LoadSnapshot([]Driver{{ID: "d9", DeviceID: "taxi-009"}})

	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}
	if _, ok := r.Get("taxi-099"); ok {
		t.Error("live entry survived snapshot replace")
	}
	if _, ok := r.Get("taxi-009"); !ok {
		t.Error("snapshot entry missing")
	}
}

func TestRegistryDimming(t *testing.T) {
	r := NewRegistry()
	r.LoadSnapshot(snapshotDrivers())

	r.Select("taxi-001")
	for _, v := range r.Drivers() {
		want := v.DeviceID != "taxi-001"
		if v.Dimmed != want {
			t.Errorf("%s dimmed = %v, want %v", v.DeviceID, v.Dimmed, want)
		}
	}

	r.ClearSelection()
	for _, v := range r.Drivers() {
		if v.Dimmed {
			t.Errorf("%s dimmed with no selection", v.DeviceID)
		}
	}
}

func TestRegistryDriversInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.LoadSnapshot(snapshotDrivers())
	r.ApplyUpdate("taxi-050", 28.60, -106.05, 0)
	r.ApplyUpdate("taxi-001", 28.61, -106.06, 10)

	got := r.Drivers()
	want := []string{"taxi-001", "taxi-002", "taxi-050"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].DeviceID != id {
			t.Errorf("drivers[%d] = %s, want %s", i, got[i].DeviceID, id)
		}
	}
}
