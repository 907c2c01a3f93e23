package domain

import (
	"context"
	"time"
)

// MapService is the slice of the mapping SDK the controller drives.
type MapService interface {
	SetView(center LatLng, zoom int)
	AddMarker(m MarkerSpec) MarkerID
	RemoveMarker(id MarkerID)
	UpdateMarkerTitle(id MarkerID, title string)
	OpenPopup(on MarkerID, p Popup)
	ClosePopup()
	DrawLine(path []LatLng) LineID
	RemoveLine(id LineID)
	FitBounds(b Bounds)
}

// Page is the DOM binding surface, addressed by element id.
type Page interface {
	Value(id string) string
	SetValue(id, v string)
	SetText(id, text string)
	Show(id string)
	Hide(id string)
}

type Notifier interface {
	// Notify shows a non-blocking message.
	Notify(level NoticeLevel, msg string)
	// Alert is the blocking kind; the user has to dismiss it.
	Alert(msg string)
}

type Geolocator interface {
	CurrentPosition(ctx context.Context) (LatLng, error)
}

type FacilityAPI interface {
	ListFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error)
}

type ReservationAPI interface {
	Reserve(ctx context.Context, req ReservationRequest) (ReservationAck, error)
	MyReservations(ctx context.Context) ([]Reservation, error)
}

type RouteAPI interface {
	WalkRoute(ctx context.Context, from, to LatLng) (WalkRoute, error)
}

// StateStore persists small JSON documents with a TTL.
type StateStore interface {
	Load(ctx context.Context, key string, dst any) (bool, error)
	Save(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
