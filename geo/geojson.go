package geo

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// MarshalPolygon serializes open display-order vertices as a GeoJSON Polygon
// string: coordinates flipped to (lon,lat) and the closing point appended.
func MarshalPolygon(verts []LatLng) (string, error) {
	if len(verts) < 3 {
		return "", fmt.Errorf("polygon needs at least 3 vertices, got %d", len(verts))
	}
	coords := make([][]float64, 0, len(verts)+1)
	for _, v := range verts {
		coords = append(coords, []float64{v.Lng, v.Lat})
	}
	coords = append(coords, coords[0])

	g := geojson.NewPolygonGeometry([][][]float64{coords})
	data, err := g.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal polygon: %w", err)
	}
	return string(data), nil
}

// ParsePolygon decodes a GeoJSON Polygon string into the closed display-order
// ring of its first linear ring.
func ParsePolygon(raw string) ([]LatLng, error) {
	g, err := geojson.UnmarshalGeometry([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal geometry: %w", err)
	}
	if !g.IsPolygon() {
		return nil, fmt.Errorf("expected Polygon geometry, got %s", g.Type)
	}
	if len(g.Polygon) == 0 || len(g.Polygon[0]) == 0 {
		return nil, fmt.Errorf("polygon has no linear ring")
	}
	outer := g.Polygon[0]
	ring := make([]LatLng, 0, len(outer))
	for _, c := range outer {
		if len(c) < 2 {
			return nil, fmt.Errorf("coordinate with fewer than 2 components")
		}
		ring = append(ring, LatLng{Lat: c[1], Lng: c[0]})
	}
	if len(ring) < 4 {
		return nil, fmt.Errorf("ring has %d points, need at least 4", len(ring))
	}
	return ring, nil
}
