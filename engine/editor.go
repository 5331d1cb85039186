package engine

import (
	"sync"

	"github.com/AlexG695/geo-engine-console/geo"
)

// minVertices is enforced on every removal and at commit, not only at the end.
const minVertices = 3

// EditMode is the polygon edit session state.
type EditMode int

const (
	ModeIdle EditMode = iota
	ModeDrawing
	ModeEditing
)

func (m EditMode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModeEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Draft is the finished-geometry artifact Commit produces. The name arrives
// in a later step, so a Draft is what bridges the geometry phase and the
// naming phase of a save.
type Draft struct {
	TargetID string
	Vertices []geo.LatLng
}

// Editor is the vertex-by-vertex drawing/editing state machine. It holds an
// open vertex list (no closing duplicate; closing is synthesized at commit)
// and never touches a stored Geofence; it only reads one to seed an edit.
type Editor struct {
	mu       sync.RWMutex
	mode     EditMode
	targetID string
	vertices []geo.LatLng
}

func NewEditor() *Editor {
	return &Editor{}
}

// StartDrawing begins a fresh zone with an empty vertex list.
func (e *Editor) StartDrawing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeDrawing
	e.targetID = ""
	e.vertices = nil
}

// BeginEdit enters Editing for an existing zone, seeding the vertex list from
// its ring with the closing duplicate stripped.
func (e *Editor) BeginEdit(g Geofence) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeEditing
	e.targetID = g.ID
	e.vertices = geo.StripClosingPoint(g.Ring)
}

// AddVertex appends a point to the open vertex list.
func (e *Editor) AddVertex(p geo.LatLng) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeIdle {
		return &ValidationError{Msg: "no active edit session"}
	}
	e.vertices = append(e.vertices, p)
	return nil
}

// MoveVertex replaces the vertex at index in place; order is preserved.
func (e *Editor) MoveVertex(index int, p geo.LatLng) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeIdle {
		return &ValidationError{Msg: "no active edit session"}
	}
	if index < 0 || index >= len(e.vertices) {
		return &ValidationError{Msg: "vertex index out of range"}
	}
	e.vertices[index] = p
	return nil
}

// RemoveVertex deletes the vertex at index unless that would leave fewer than
// three; in that case the session is left unchanged.
func (e *Editor) RemoveVertex(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeIdle {
		return &ValidationError{Msg: "no active edit session"}
	}
	if index < 0 || index >= len(e.vertices) {
		return &ValidationError{Msg: "vertex index out of range"}
	}
	if len(e.vertices) <= minVertices {
		return &ValidationError{Msg: "at least 3 points required"}
	}
	e.vertices = append(e.vertices[:index], e.vertices[index+1:]...)
	return nil
}

// Commit validates the session and produces its Draft. The session itself is
// not reset: that happens through Reset once the store operation the Draft
// feeds has succeeded, so a failed round trip keeps the operator's vertices.
func (e *Editor) Commit() (Draft, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.vertices) < minVertices {
		return Draft{}, &ValidationError{Msg: "at least 3 points required"}
	}
	verts := make([]geo.LatLng, len(e.vertices))
	copy(verts, e.vertices)
	return Draft{TargetID: e.targetID, Vertices: verts}, nil
}

// Cancel unconditionally discards all pending vertices and returns to Idle.
func (e *Editor) Cancel() {
	e.Reset()
}

// Reset returns the session to Idle with an empty vertex list.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeIdle
	e.targetID = ""
	e.vertices = nil
}

func (e *Editor) Mode() EditMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

func (e *Editor) TargetID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.targetID
}

// Vertices returns a copy of the open vertex list.
func (e *Editor) Vertices() []geo.LatLng {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]geo.LatLng, len(e.vertices))
	copy(out, e.vertices)
	return out
}

func (e *Editor) VertexCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vertices)
}
