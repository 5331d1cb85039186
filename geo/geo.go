package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// LatLng is a display-order coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FromLonLat converts an interchange-order pair to display order.
func FromLonLat(c [2]float64) LatLng {
	return LatLng{Lat: c[1], Lng: c[0]}
}

// ToLonLat converts a display-order point back to interchange order.
func ToLonLat(p LatLng) [2]float64 {
	return [2]float64{p.Lng, p.Lat}
}

// CloseRing returns verts with the first point appended as the closing point.
// The input is not modified.
func CloseRing(verts []LatLng) []LatLng {
	ring := make([]LatLng, 0, len(verts)+1)
	ring = append(ring, verts...)
	if len(verts) > 0 {
		ring = append(ring, verts[0])
	}
	return ring
}

// StripClosingPoint returns the ring without its closing duplicate, if present.
func StripClosingPoint(ring []LatLng) []LatLng {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		out := make([]LatLng, len(ring)-1)
		copy(out, ring[:len(ring)-1])
		return out
	}
	out := make([]LatLng, len(ring))
	copy(out, ring)
	return out
}

// IsClosed reports whether the ring ends on its first point.
func IsClosed(ring []LatLng) bool {
	return len(ring) >= 2 && ring[0] == ring[len(ring)-1]
}

// RingContains reports whether pt lies inside the polygon bounded by ring.
// The ring may be open or closed; order is preserved as given.
func RingContains(ring []LatLng, pt LatLng) bool {
	if len(ring) < 3 {
		return false
	}
	r := make(orb.Ring, 0, len(ring)+1)
	for _, v := range ring {
		r = append(r, orb.Point{v.Lng, v.Lat})
	}
	if !IsClosed(ring) {
		r = append(r, r[0])
	}
	return planar.PolygonContains(orb.Polygon{r}, orb.Point{pt.Lng, pt.Lat})
}

// DistanceMeters returns the haversine distance between two points.
func DistanceMeters(a, b LatLng) float64 {
	return orbgeo.Distance(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat})
}
