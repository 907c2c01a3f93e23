// Package scene is an in-memory map surface. It records what the controller
// draws and hands it to the page as a snapshot, which the page renders with
// its mapping SDK.
package scene

import (
	"context"
	"errors"
	"sort"
	"sync"

	"campus_map/internal/domain"
)

var ErrGeolocationDenied = errors.New("geolocation denied or unsupported")

type Marker struct {
	ID         domain.MarkerID   `json:"id"`
	Kind       domain.MarkerKind `json:"kind"`
	FacilityID int64             `json:"facility_id,omitempty"`
	Position   domain.LatLng     `json:"position"`
	Title      string            `json:"title"`
}

type Line struct {
	ID   domain.LineID   `json:"id"`
	Path []domain.LatLng `json:"path"`
}

type OpenPopup struct {
	Marker domain.MarkerID `json:"marker"`
	domain.Popup
}

type Element struct {
	Value   string `json:"value,omitempty"`
	Text    string `json:"text,omitempty"`
	Visible bool   `json:"visible"`
}

type Notice struct {
	Level   domain.NoticeLevel `json:"level"`
	Message string             `json:"message"`
}

type Snapshot struct {
	Center   domain.LatLng      `json:"center"`
	Zoom     int                `json:"zoom"`
	Bounds   *domain.Bounds     `json:"bounds,omitempty"`
	Markers  []Marker           `json:"markers"`
	Lines    []Line             `json:"lines"`
	Popup    *OpenPopup         `json:"popup,omitempty"`
	Elements map[string]Element `json:"elements"`
	Notices  []Notice           `json:"notices,omitempty"`
	Alerts   []string           `json:"alerts,omitempty"`
}

// Scene implements domain.MapService, domain.Page, domain.Notifier and
// domain.Geolocator.
type Scene struct {
	mu         sync.Mutex
	center     domain.LatLng
	zoom       int
	bounds     *domain.Bounds
	nextMarker domain.MarkerID
	nextLine   domain.LineID
	markers    map[domain.MarkerID]Marker
	lines      map[domain.LineID][]domain.LatLng
	popup      *OpenPopup
	elements   map[string]*Element
	notices    []Notice
	alerts     []string
	geo        *domain.LatLng
}

// New returns an empty scene. geo is the browser-reported position, nil when
// the browser denied it.
func New(geo *domain.LatLng) *Scene {
	s := &Scene{
		markers:  map[domain.MarkerID]Marker{},
		lines:    map[domain.LineID][]domain.LatLng{},
		elements: map[string]*Element{},
		geo:      geo,
	}
	s.el(domain.ElCategorySelect).Value = domain.CategoryAll
	s.el(domain.ElReserveModal).Visible = false
	return s
}

func (s *Scene) el(id string) *Element {
	e, ok := s.elements[id]
	if !ok {
		e = &Element{Visible: true}
		s.elements[id] = e
	}
	return e
}

// ---- domain.MapService ----

func (s *Scene) SetView(center domain.LatLng, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center, s.zoom = center, zoom
	s.bounds = nil
}

func (s *Scene) AddMarker(m domain.MarkerSpec) domain.MarkerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMarker++
	s.markers[s.nextMarker] = Marker{
		ID:         s.nextMarker,
		Kind:       m.Kind,
		FacilityID: m.FacilityID,
		Position:   m.Position,
		Title:      m.Title,
	}
	return s.nextMarker
}

func (s *Scene) RemoveMarker(id domain.MarkerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, id)
	if s.popup != nil && s.popup.Marker == id {
		s.popup = nil
	}
}

func (s *Scene) UpdateMarkerTitle(id domain.MarkerID, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Title = title
		s.markers[id] = m
	}
}

func (s *Scene) OpenPopup(on domain.MarkerID, p domain.Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = &OpenPopup{Marker: on, Popup: p}
}

func (s *Scene) ClosePopup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popup = nil
}

func (s *Scene) DrawLine(path []domain.LatLng) domain.LineID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLine++
	s.lines[s.nextLine] = append([]domain.LatLng(nil), path...)
	return s.nextLine
}

func (s *Scene) RemoveLine(id domain.LineID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lines, id)
}

func (s *Scene) FitBounds(b domain.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = &b
	s.center = domain.LatLng{Lat: (b.SW.Lat + b.NE.Lat) / 2, Lng: (b.SW.Lng + b.NE.Lng) / 2}
}

// ---- domain.Page ----

func (s *Scene) Value(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.elements[id]; ok {
		return e.Value
	}
	return ""
}

func (s *Scene) SetValue(id, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.el(id).Value = v
}

func (s *Scene) SetText(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.el(id).Text = text
}

func (s *Scene) Show(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.el(id).Visible = true
}

func (s *Scene) Hide(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.el(id).Visible = false
}

// ---- domain.Notifier ----

func (s *Scene) Notify(level domain.NoticeLevel, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, Notice{Level: level, Message: msg})
}

func (s *Scene) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, msg)
}

// ---- domain.Geolocator ----

func (s *Scene) CurrentPosition(ctx context.Context) (domain.LatLng, error) {
	if err := ctx.Err(); err != nil {
		return domain.LatLng{}, err
	}
	if s.geo == nil {
		return domain.LatLng{}, ErrGeolocationDenied
	}
	return *s.geo, nil
}

// ---- rendering ----

// Snapshot copies the current scene without consuming notices or alerts.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Render returns a snapshot and drains pending notices and alerts, which the
// page shows exactly once.
func (s *Scene) Render() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	s.notices, s.alerts = nil, nil
	return snap
}

func (s *Scene) snapshotLocked() Snapshot {
	snap := Snapshot{
		Center:   s.center,
		Zoom:     s.zoom,
		Markers:  make([]Marker, 0, len(s.markers)),
		Lines:    make([]Line, 0, len(s.lines)),
		Elements: make(map[string]Element, len(s.elements)),
		Notices:  append([]Notice(nil), s.notices...),
		Alerts:   append([]string(nil), s.alerts...),
	}
	if s.bounds != nil {
		b := *s.bounds
		snap.Bounds = &b
	}
	for _, m := range s.markers {
		snap.Markers = append(snap.Markers, m)
	}
	sort.Slice(snap.Markers, func(i, j int) bool { return snap.Markers[i].ID < snap.Markers[j].ID })
	for id, p := range s.lines {
		snap.Lines = append(snap.Lines, Line{ID: id, Path: append([]domain.LatLng(nil), p...)})
	}
	sort.Slice(snap.Lines, func(i, j int) bool { return snap.Lines[i].ID < snap.Lines[j].ID })
	if s.popup != nil {
		p := *s.popup
		p.Actions = append([]domain.PopupAction(nil), s.popup.Actions...)
		snap.Popup = &p
	}
	for id, e := range s.elements {
		snap.Elements[id] = *e
	}
	return snap
}

// FacilityMarkers returns facility markers only, in insertion order.
func (s Snapshot) FacilityMarkers() []Marker {
	var out []Marker
	for _, m := range s.Markers {
		if m.Kind == domain.MarkerFacility {
			out = append(out, m)
		}
	}
	return out
}
