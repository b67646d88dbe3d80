package geo

import "math"

const earthRadiusKm = 6371.0

// Coordinate is a single GPS fix. CapturedAtMillis is unix milliseconds;
// callers guarantee non-decreasing capture times within a path.
type Coordinate struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	CapturedAtMillis int64   `json:"captured_at_millis"`
}

// DistanceKm returns the haversine great-circle distance between two fixes.
func DistanceKm(a, b Coordinate) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PathLengthKm sums consecutive distances along the path. Paths with fewer
// than two points have zero length.
func PathLengthKm(path []Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += DistanceKm(path[i-1], path[i])
	}
	return total
}

// PolygonAreaM2 computes the enclosed area of an implicitly closed polygon
// using the shoelace formula over radian coordinates scaled by the Earth
// radius. The locally-flat approximation holds for city-scale polygons, not
// for shapes spanning a large fraction of the globe. Polygons with fewer
// than three vertices have zero area.
func PolygonAreaM2(polygon []Coordinate) float64 {
	if len(polygon) < 3 {
		return 0
	}
	sum := 0.0
	for i := range polygon {
		j := (i + 1) % len(polygon)
		latI := polygon[i].Lat * math.Pi / 180
		latJ := polygon[j].Lat * math.Pi / 180
		lngI := polygon[i].Lng * math.Pi / 180
		lngJ := polygon[j].Lng * math.Pi / 180
		sum += (lngJ - lngI) * (2 + math.Sin(latI) + math.Sin(latJ))
	}
	area := math.Abs(sum) * earthRadiusKm * earthRadiusKm * 1e6 / 2
	return area
}

// PointInPolygon reports whether p lies inside the implicitly closed polygon
// using the crossing-number ray cast. Points exactly on an edge follow the
// half-open crossing rule; the tests pin this behavior.
func PointInPolygon(p Coordinate, polygon []Coordinate) bool {
	if len(polygon) < 3 {
		return false
	}
	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		yi, yj := polygon[i].Lat, polygon[j].Lat
		xi, xj := polygon[i].Lng, polygon[j].Lng
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PathOverlapPercent returns the percentage of path points that fall inside
// the polygon. Overlap is point-sampled rather than an intersection area,
// which is lossy for sparse paths but needs no clipping machinery.
func PathOverlapPercent(path, polygon []Coordinate) float64 {
	if len(path) == 0 {
		return 0
	}
	inside := 0
	for _, p := range path {
		if PointInPolygon(p, polygon) {
			inside++
		}
	}
	return float64(inside) / float64(len(path)) * 100
}
