package app

import (
	"context"
	"fmt"

	"campus_map/internal/adapters/observability"
	"campus_map/internal/domain"
)

// LoadFacilities fetches facilities for the current filter controls and
// replaces every marker with the result. Each call takes a token; a response
// whose token is no longer the newest is dropped, so a slow earlier request
// can never overwrite a later one. On failure the previous markers stay.
func (c *Controller) LoadFacilities(ctx context.Context) error {
	q := c.Filters()

	c.mu.Lock()
	c.loadSeq++
	token := c.loadSeq
	c.mu.Unlock()

	list, err := c.d.Facilities.ListFacilities(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.loadSeq {
		observability.ObserveLoad("stale")
		c.d.Log.Debug().Uint64("token", token).Uint64("latest", c.loadSeq).
			Str("query", q.Key()).Msg("dropping superseded facility response")
		return nil
	}
	if err != nil {
		observability.ObserveLoad("error")
		c.d.Log.Error().Err(err).Str("query", q.Key()).Msg("facility load failed")
		c.d.Notifier.Notify(domain.NoticeError, text(c.lang, msgLoadFailed))
		return fmt.Errorf("load facilities: %w", err)
	}

	c.redrawLocked(list)
	observability.ObserveLoad("ok")
	c.d.Log.Debug().Str("query", q.Key()).Int("count", len(list)).Msg("facilities loaded")
	return nil
}

func (c *Controller) redrawLocked(list []domain.Facility) {
	if c.popupOpen {
		c.d.Map.ClosePopup()
		c.popupOpen = false
	}
	for fid, mid := range c.markers {
		c.d.Map.RemoveMarker(mid)
		delete(c.markers, fid)
	}

	c.facilities = make([]domain.Facility, 0, len(list))
	c.byID = make(map[int64]domain.Facility, len(list))
	for _, f := range list {
		if _, dup := c.byID[f.ID]; dup {
			c.d.Log.Warn().Int64("facility_id", f.ID).Msg("duplicate facility id in response, keeping the first")
			continue
		}
		c.facilities = append(c.facilities, f)
		c.byID[f.ID] = f
		c.markers[f.ID] = c.d.Map.AddMarker(domain.MarkerSpec{
			Kind:       domain.MarkerFacility,
			FacilityID: f.ID,
			Position:   f.Position(),
			Title:      f.Name(c.lang),
		})
	}
}

// MarkerCount is the number of facility markers on the map.
func (c *Controller) MarkerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.markers)
}
