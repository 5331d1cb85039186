package engine

import "sync"

// liveIDPrefix marks entries created from the stream rather than a snapshot.
const liveIDPrefix = "live-"

// Driver is a tracked vehicle. DeviceID is the merge key across the snapshot
// and the stream; ID may differ per source and is never used to match.
type Driver struct {
	ID        string  `json:"id"`
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Heading   float64 `json:"heading"`
}

// DriverView is a Driver plus render hints derived from the selection and
// the viewport.
type DriverView struct {
	Driver
	Dimmed         bool    `json:"dimmed"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Registry is the keyed upsert store for drivers. Snapshots replace the whole
// collection; stream updates upsert by device id. Drivers are never evicted by
// stream activity; only a later snapshot removes them.
type Registry struct {
	mu       sync.RWMutex
	byDevice map[string]int
	entries  []Driver
	selected string
}

func NewRegistry() *Registry {
	return &Registry{byDevice: make(map[string]int)}
}

// LoadSnapshot replaces the entire collection with the bulk-fetched list.
func (r *Registry) LoadSnapshot(drivers []Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]Driver, len(drivers))
	copy(r.entries, drivers)
	r.byDevice = make(map[string]int, len(drivers))
	for i, d := range r.entries {
		r.byDevice[d.DeviceID] = i
	}
}

// ApplyUpdate folds one stream delta into the collection. A known device has
// its position and heading replaced in place, keeping its id; an unknown
// device is inserted with a synthetic live id. The stream is authoritative for
// liveness even for devices the snapshot never mentioned.
func (r *Registry) ApplyUpdate(deviceID string, lat, lng, heading float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byDevice[deviceID]; ok {
		r.entries[i].Latitude = lat
		r.entries[i].Longitude = lng
		r.entries[i].Heading = heading
		return
	}
	r.byDevice[deviceID] = len(r.entries)
	r.entries = append(r.entries, Driver{
		ID:        liveIDPrefix + deviceID,
		DeviceID:  deviceID,
		Latitude:  lat,
		Longitude: lng,
		Heading:   heading,
	})
}

// Select marks at most one device as selected. It only affects the Dimmed
// flag computed on render; stored data is untouched.
func (r *Registry) Select(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = deviceID
}

func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected returns the currently selected device id, or "".
func (r *Registry) Selected() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected
}

// Drivers returns the collection in insertion order with dimming applied:
// when a selection exists, every other entry is dimmed.
func (r *Registry) Drivers() []DriverView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DriverView, len(r.entries))
	for i, d := range r.entries {
		out[i] = DriverView{
			Driver: d,
			Dimmed: r.selected != "" && r.selected != d.DeviceID,
		}
	}
	return out
}

// Get returns the entry for a device id.
func (r *Registry) Get(deviceID string) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.byDevice[deviceID]; ok {
		return r.entries[i], true
	}
	return Driver{}, false
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
