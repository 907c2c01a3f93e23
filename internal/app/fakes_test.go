package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"campus_map/internal/adapters/scene"
	"campus_map/internal/app"
	"campus_map/internal/domain"
)

// ---- fakes ----

type fakeFacilities struct {
	mu       sync.Mutex
	byQuery  map[string][]domain.Facility // keyed by FacilityQuery.Key()
	fallback []domain.Facility
	err      error
	calls    []domain.FacilityQuery
	gate     map[string]chan struct{} // optional per-query release
}

func (f *fakeFacilities) ListFacilities(ctx context.Context, q domain.FacilityQuery) ([]domain.Facility, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gate[q.Key()]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if list, ok := f.byQuery[q.Key()]; ok {
		return list, nil
	}
	return f.fallback, nil
}

func (f *fakeFacilities) Calls() []domain.FacilityQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FacilityQuery(nil), f.calls...)
}

type fakeReservations struct {
	mu    sync.Mutex
	reqs  []domain.ReservationRequest
	err   error
	mine  []domain.Reservation
	block chan struct{}
}

func (f *fakeReservations) Reserve(ctx context.Context, req domain.ReservationRequest) (domain.ReservationAck, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.ReservationAck{}, f.err
	}
	return domain.ReservationAck{OK: true}, nil
}

func (f *fakeReservations) MyReservations(ctx context.Context) ([]domain.Reservation, error) {
	return f.mine, nil
}

func (f *fakeReservations) Requests() []domain.ReservationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ReservationRequest(nil), f.reqs...)
}

type fakeRoutes struct {
	route domain.WalkRoute
	err   error
}

func (f *fakeRoutes) WalkRoute(ctx context.Context, from, to domain.LatLng) (domain.WalkRoute, error) {
	return f.route, f.err
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memStore) Save(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = b
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ---- fixtures ----

var (
	library = domain.Facility{ID: 1, Lat: 36.01, Lng: 129.32, NameKO: "도서관", NameEN: "Library",
		DescKO: "박태준학술정보관", DescEN: "Main library", Category: "Study"}
	gym = domain.Facility{ID: 2, Lat: 36.015, Lng: 129.325, NameKO: "체육관", NameEN: "Gym",
		DescKO: "실내 체육관", DescEN: "Indoor gym", Category: "Sports"}
	cafe = domain.Facility{ID: 3, Lat: 36.012, Lng: 129.33, NameKO: "카페", NameEN: "Cafe",
		DescKO: "학생회관 카페", DescEN: "Student union cafe", Category: "Restaurant"}
)

var errNetwork = errors.New("connection refused")

type rig struct {
	c      *app.Controller
	scene  *scene.Scene
	facs   *fakeFacilities
	res    *fakeReservations
	routes *fakeRoutes
}

type rigOpt func(*domain.HostConfig, *app.Deps, *scene.Scene)

func asGuest() rigOpt {
	return func(h *domain.HostConfig, _ *app.Deps, _ *scene.Scene) { h.IsGuest = true }
}

func inEnglish() rigOpt {
	return func(h *domain.HostConfig, _ *app.Deps, _ *scene.Scene) { h.Lang = domain.LangEN }
}

func withRoutes(r *fakeRoutes) rigOpt {
	return func(_ *domain.HostConfig, d *app.Deps, _ *scene.Scene) { d.Routes = r }
}

func newRig(geo *domain.LatLng, facs []domain.Facility, opts ...rigOpt) *rig {
	sc := scene.New(geo)
	f := &fakeFacilities{fallback: facs, byQuery: map[string][]domain.Facility{}}
	r := &fakeReservations{}
	host := domain.HostConfig{Lang: domain.LangKO}
	d := app.Deps{
		Map:          sc,
		Page:         sc,
		Notifier:     sc,
		Geo:          sc,
		Facilities:   f,
		Reservations: r,
		Log:          zerolog.Nop(),
	}
	for _, o := range opts {
		o(&host, &d, sc)
	}
	rt, _ := d.Routes.(*fakeRoutes)
	return &rig{c: app.NewController(host, d), scene: sc, facs: f, res: r, routes: rt}
}
