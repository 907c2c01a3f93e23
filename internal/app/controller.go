package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"campus_map/internal/domain"
)

// Campus default view (POSTECH).
var DefaultCenter = domain.LatLng{Lat: 36.01449, Lng: 129.32154}

const DefaultZoom = 3

// Deps are the collaborators of a Controller. Geo and Routes are optional.
type Deps struct {
	Map          domain.MapService
	Page         domain.Page
	Notifier     domain.Notifier
	Geo          domain.Geolocator
	Facilities   domain.FacilityAPI
	Reservations domain.ReservationAPI
	Routes       domain.RouteAPI
	Log          zerolog.Logger
}

// Controller owns the state of one map page: markers, route endpoints,
// language and the reservation modal. Network calls run outside the lock.
type Controller struct {
	d Deps

	mu      sync.Mutex
	lang    domain.Lang
	isGuest bool
	booted  bool

	loadSeq    uint64
	facilities []domain.Facility
	byID       map[int64]domain.Facility
	markers    map[int64]domain.MarkerID
	here       *domain.MarkerID
	popupFor   int64
	popupOpen  bool

	route routeState
	modal modalState
}

func NewController(host domain.HostConfig, d Deps) *Controller {
	return &Controller{
		d:       d,
		lang:    domain.ParseLang(string(host.Lang)),
		isGuest: host.IsGuest,
		byID:    map[int64]domain.Facility{},
		markers: map[int64]domain.MarkerID{},
	}
}

// Bootstrap sets the default view once, tries to place a current-location
// marker, then runs the initial facility load.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.mu.Lock()
	if !c.booted {
		c.d.Map.SetView(DefaultCenter, DefaultZoom)
		c.booted = true
	}
	c.mu.Unlock()

	c.locate(ctx)
	return c.LoadFacilities(ctx)
}

// locate never surfaces an error to the user.
func (c *Controller) locate(ctx context.Context) {
	if c.d.Geo == nil {
		return
	}
	pos, err := c.d.Geo.CurrentPosition(ctx)
	if err != nil {
		c.d.Log.Debug().Err(err).Msg("geolocation unavailable")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.here != nil {
		c.d.Map.RemoveMarker(*c.here)
	}
	id := c.d.Map.AddMarker(domain.MarkerSpec{
		Kind:     domain.MarkerCurrentLocation,
		Position: pos,
		Title:    text(c.lang, msgHere),
	})
	c.here = &id
}

func (c *Controller) Lang() domain.Lang {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

func (c *Controller) IsGuest() bool { return c.isGuest }

// SetLanguage switches the display language and re-renders what is on
// screen from facilities already loaded.
func (c *Controller) SetLanguage(l domain.Lang) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l == c.lang {
		return
	}
	c.lang = l

	for _, f := range c.facilities {
		if id, ok := c.markers[f.ID]; ok {
			c.d.Map.UpdateMarkerTitle(id, f.Name(l))
		}
	}
	if c.here != nil {
		c.d.Map.UpdateMarkerTitle(*c.here, text(l, msgHere))
	}
	if f, ok := c.byID[c.popupFor]; ok && c.popupOpen {
		c.d.Map.OpenPopup(c.markers[f.ID], c.popupLocked(f))
	}
	if c.modal.open {
		c.d.Page.SetText(domain.ElReserveTitle, c.modal.facility.Name(l))
		c.d.Page.SetText(domain.ElReserveDesc, c.modal.facility.Desc(l))
	}
}

// Facility returns a facility from the latest applied load.
func (c *Controller) Facility(id int64) (domain.Facility, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.byID[id]
	return f, ok
}

func (c *Controller) Filters() domain.FacilityQuery {
	return domain.FacilityQuery{
		Category: c.d.Page.Value(domain.ElCategorySelect),
		Q:        c.d.Page.Value(domain.ElSearchInput),
	}
}
