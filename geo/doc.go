/*
Package geo handles the coordinate-order boundary of the console.

Storage and interchange (GeoJSON) use (lon,lat) order; the map display and
every in-memory ring use (lat,lng). All conversions between the two orders
live here, together with ring closing/stripping and polygon hit testing.
*/
package geo
