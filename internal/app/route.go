package app

import (
	"context"
	"math"

	"campus_map/internal/domain"
)

// walking pace used for the time estimate, metres per minute (~4 km/h)
const walkMetersPerMinute = 67.0

type routeState struct {
	start, end *domain.Facility
	line       *domain.LineID
	seq        uint64
	summary    *domain.RouteSummary
}

func (c *Controller) SetStart(ctx context.Context, f domain.Facility) error {
	c.mu.Lock()
	c.route.start = &f
	c.mu.Unlock()
	return c.redrawRoute(ctx)
}

func (c *Controller) SetEnd(ctx context.Context, f domain.Facility) error {
	c.mu.Lock()
	c.route.end = &f
	c.mu.Unlock()
	return c.redrawRoute(ctx)
}

// ResetRoute clears both endpoints and removes the line. A walking path
// still being fetched is discarded when it arrives.
func (c *Controller) ResetRoute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.route.seq++
	c.route.start, c.route.end = nil, nil
	c.removeLineLocked()
}

// Route returns the current endpoints (nil when unset) and the drawn line summary.
func (c *Controller) Route() (start, end *domain.Facility, summary *domain.RouteSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.route.start != nil {
		s := *c.route.start
		start = &s
	}
	if c.route.end != nil {
		e := *c.route.end
		end = &e
	}
	if c.route.summary != nil {
		sm := *c.route.summary
		summary = &sm
	}
	return start, end, summary
}

func (c *Controller) removeLineLocked() {
	if c.route.line != nil {
		c.d.Map.RemoveLine(*c.route.line)
		c.route.line = nil
	}
	c.route.summary = nil
}

// redrawRoute replaces the line once both endpoints are set. There is never
// more than one line on the map.
func (c *Controller) redrawRoute(ctx context.Context) error {
	c.mu.Lock()
	if c.route.start == nil || c.route.end == nil {
		c.mu.Unlock()
		return nil
	}
	a, b := *c.route.start, *c.route.end
	c.route.seq++
	token := c.route.seq
	if a.ID == b.ID {
		c.removeLineLocked()
		c.d.Notifier.Notify(domain.NoticeInfo, text(c.lang, msgSameEndpoints))
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	path := []domain.LatLng{a.Position(), b.Position()}
	dist := domain.Haversine(a.Position(), b.Position())
	routed := false
	if c.d.Routes != nil {
		wr, err := c.d.Routes.WalkRoute(ctx, a.Position(), b.Position())
		switch {
		case err != nil:
			c.d.Log.Warn().Err(err).Int64("start", a.ID).Int64("end", b.ID).Msg("walking route unavailable, drawing straight segment")
		case len(wr.Path) >= 2:
			path = wr.Path
			if wr.Distance > 0 {
				dist = float64(wr.Distance)
			}
			routed = true
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.route.seq {
		return nil
	}
	c.removeLineLocked()
	id := c.d.Map.DrawLine(path)
	c.route.line = &id
	c.d.Map.FitBounds(domain.BoundsOf(append([]domain.LatLng{a.Position(), b.Position()}, path...)...))
	c.route.summary = &domain.RouteSummary{
		StartID:     a.ID,
		EndID:       b.ID,
		Distance:    int(math.Round(dist)),
		WalkMinutes: int(math.Ceil(dist / walkMetersPerMinute)),
		Path:        path,
		Routed:      routed,
	}
	return nil
}

// RestoreRoute re-applies endpoints by facility id after a reload. A nil id
// leaves that endpoint unset; ids missing from the current facility set are
// skipped.
func (c *Controller) RestoreRoute(ctx context.Context, startID, endID *int64) error {
	c.mu.Lock()
	if startID != nil {
		if f, ok := c.byID[*startID]; ok {
			c.route.start = &f
		}
	}
	if endID != nil {
		if f, ok := c.byID[*endID]; ok {
			c.route.end = &f
		}
	}
	c.mu.Unlock()
	return c.redrawRoute(ctx)
}
