package domain

import "math"

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Bounds struct {
	SW LatLng `json:"sw"`
	NE LatLng `json:"ne"`
}

// BoundsOf returns the smallest box containing every point. Zero points give a zero Bounds.
func BoundsOf(pts ...LatLng) Bounds {
	if len(pts) == 0 {
		return Bounds{}
	}
	b := Bounds{SW: pts[0], NE: pts[0]}
	for _, p := range pts[1:] {
		b.SW.Lat = math.Min(b.SW.Lat, p.Lat)
		b.SW.Lng = math.Min(b.SW.Lng, p.Lng)
		b.NE.Lat = math.Max(b.NE.Lat, p.Lat)
		b.NE.Lng = math.Max(b.NE.Lng, p.Lng)
	}
	return b
}

func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat && p.Lng >= b.SW.Lng && p.Lng <= b.NE.Lng
}

// Haversine returns the great-circle distance in metres.
func Haversine(a, b LatLng) float64 {
	const r = 6371000.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return r * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
