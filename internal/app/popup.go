package app

import (
	"context"
	"fmt"

	"campus_map/internal/domain"
)

// SelectFacility opens the info popup of a facility marker.
func (c *Controller) SelectFacility(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("facility %d: %w", id, domain.ErrNotFound)
	}
	c.d.Map.OpenPopup(c.markers[id], c.popupLocked(f))
	c.popupFor, c.popupOpen = id, true
	return nil
}

func (c *Controller) ClosePopup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.popupOpen {
		c.d.Map.ClosePopup()
		c.popupOpen = false
	}
}

func (c *Controller) popupLocked(f domain.Facility) domain.Popup {
	return domain.Popup{
		FacilityID: f.ID,
		Title:      f.Name(c.lang),
		Body:       f.Desc(c.lang),
		Actions: []domain.PopupAction{
			{Kind: domain.ActionReserve, Label: text(c.lang, msgActionReserve)},
			{Kind: domain.ActionStart, Label: text(c.lang, msgActionStart)},
			{Kind: domain.ActionEnd, Label: text(c.lang, msgActionEnd)},
		},
	}
}

// PopupAction runs a popup button. The facility is resolved at click time
// against the latest load, so no handler outlives the popup it came from.
func (c *Controller) PopupAction(ctx context.Context, id int64, kind domain.PopupActionKind) error {
	f, ok := c.Facility(id)
	if !ok {
		return fmt.Errorf("facility %d: %w", id, domain.ErrNotFound)
	}
	switch kind {
	case domain.ActionReserve:
		return c.OpenReservation(f)
	case domain.ActionStart:
		return c.SetStart(ctx, f)
	case domain.ActionEnd:
		return c.SetEnd(ctx, f)
	default:
		return fmt.Errorf("popup action %q: %w", kind, domain.ErrBadEvent)
	}
}
