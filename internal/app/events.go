package app

import (
	"context"
	"fmt"
	"strconv"

	"campus_map/internal/adapters/observability"
	"campus_map/internal/domain"
)

// Dispatch routes a page event to the component that owns its target.
// User-facing failures (validation, guest refusal, load errors) are already
// shown on the page when Dispatch returns them.
func (c *Controller) Dispatch(ctx context.Context, ev domain.Event) error {
	observability.ObserveEvent(ev.Target)

	switch ev.Target {
	case domain.ElCategorySelect:
		c.d.Page.SetValue(ev.Target, ev.Value)
		if ev.Type == domain.EventChange {
			return c.LoadFacilities(ctx)
		}
		return nil

	case domain.ElSearchInput:
		c.d.Page.SetValue(ev.Target, ev.Value)
		if ev.Type == domain.EventSubmit {
			return c.LoadFacilities(ctx)
		}
		return nil

	case domain.ElSearchButton:
		return c.LoadFacilities(ctx)

	case domain.ElResetButton:
		// resets the category only; the search text stays
		c.d.Page.SetValue(domain.ElCategorySelect, domain.CategoryAll)
		return c.LoadFacilities(ctx)

	case domain.ElLangButton:
		lang, ok := ev.Data["lang"]
		if !ok {
			return fmt.Errorf("%s without data-lang: %w", ev.Target, domain.ErrBadEvent)
		}
		c.SetLanguage(domain.ParseLang(lang))
		return nil

	case domain.ElRouteClear:
		c.ResetRoute()
		return nil

	case domain.TargetMarker:
		id, err := facilityID(ev)
		if err != nil {
			return err
		}
		return c.SelectFacility(id)

	case domain.TargetPopupAction:
		id, err := facilityID(ev)
		if err != nil {
			return err
		}
		return c.PopupAction(ctx, id, domain.PopupActionKind(ev.Data["action"]))

	case domain.TargetPopupClose:
		c.ClosePopup()
		return nil

	case domain.ElReserveTime, domain.ElReserveMemo:
		c.d.Page.SetValue(ev.Target, ev.Value)
		return nil

	case domain.ElReserveConfirm:
		return c.SubmitReservation(ctx)

	case domain.ElReserveCancel, domain.ElReserveModal:
		c.CloseReservation()
		return nil
	}
	return fmt.Errorf("%q: %w", ev.Target, domain.ErrUnknownTarget)
}

func facilityID(ev domain.Event) (int64, error) {
	raw, ok := ev.Data["facility"]
	if !ok {
		return 0, fmt.Errorf("%s without facility: %w", ev.Target, domain.ErrBadEvent)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s facility %q: %w", ev.Target, raw, domain.ErrBadEvent)
	}
	return id, nil
}
