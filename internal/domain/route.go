package domain

// WalkRoute is the backend's walking path between two points.
type WalkRoute struct {
	Distance int      `json:"distance"` // metres
	Duration int      `json:"duration"` // seconds
	Path     []LatLng `json:"path"`
}

// RouteSummary describes the line currently drawn between start and end.
type RouteSummary struct {
	StartID     int64    `json:"start_id"`
	EndID       int64    `json:"end_id"`
	Distance    int      `json:"distance"`
	WalkMinutes int      `json:"walk_minutes"`
	Path        []LatLng `json:"path"`
	Routed      bool     `json:"routed"` // path came from the backend, not a straight segment
}
