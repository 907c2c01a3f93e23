package app

import (
	"context"
	"fmt"
	"strings"

	"campus_map/internal/domain"
)

// modalState: closed, or open for one facility. gen changes on every open
// and close so a submission that returns late cannot touch a newer modal.
type modalState struct {
	open       bool
	facility   domain.Facility
	hint       string
	gen        uint64
	submitting bool
}

// OpenReservation shows the modal for f with empty inputs. Guests get a
// blocking alert and the modal stays closed.
func (c *Controller) OpenReservation(f domain.Facility) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isGuest {
		c.d.Notifier.Alert(text(c.lang, msgGuestOnly))
		return domain.ErrGuest
	}
	c.modal = modalState{open: true, facility: f, gen: c.modal.gen + 1}
	c.d.Page.SetText(domain.ElReserveTitle, f.Name(c.lang))
	c.d.Page.SetText(domain.ElReserveDesc, f.Desc(c.lang))
	c.d.Page.SetText(domain.ElReserveHint, "")
	c.d.Page.SetValue(domain.ElReserveTime, "")
	c.d.Page.SetValue(domain.ElReserveMemo, "")
	c.d.Page.Show(domain.ElReserveModal)
	return nil
}

// CloseReservation hides the modal and clears its inputs.
func (c *Controller) CloseReservation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeModalLocked()
}

func (c *Controller) closeModalLocked() {
	c.modal = modalState{gen: c.modal.gen + 1}
	c.d.Page.Hide(domain.ElReserveModal)
	c.d.Page.SetText(domain.ElReserveHint, "")
	c.d.Page.SetValue(domain.ElReserveTime, "")
	c.d.Page.SetValue(domain.ElReserveMemo, "")
}

// SubmitReservation posts the modal's form. An empty time slot never
// reaches the network. On failure the modal stays open with its values.
func (c *Controller) SubmitReservation(ctx context.Context) error {
	c.mu.Lock()
	if !c.modal.open {
		c.mu.Unlock()
		return domain.ErrModalClosed
	}
	if c.modal.submitting {
		c.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	slot := strings.TrimSpace(c.d.Page.Value(domain.ElReserveTime))
	if slot == "" {
		c.setHintLocked(text(c.lang, msgTimeRequired))
		c.mu.Unlock()
		return domain.ErrTimeSlotRequired
	}
	c.setHintLocked("")
	c.modal.submitting = true
	gen := c.modal.gen
	req := domain.ReservationRequest{
		FacilityID: c.modal.facility.ID,
		TimeSlot:   slot,
		Memo:       c.d.Page.Value(domain.ElReserveMemo),
	}
	c.mu.Unlock()

	_, err := c.d.Reservations.Reserve(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	current := gen == c.modal.gen && c.modal.open
	if current {
		c.modal.submitting = false
	}

	if err != nil {
		msg := domain.ServerMessage(err)
		if msg == "" {
			msg = text(c.lang, msgReserveFailed)
		}
		c.d.Log.Warn().Err(err).Int64("facility_id", req.FacilityID).Str("time_slot", req.TimeSlot).Msg("reservation failed")
		if current {
			c.setHintLocked(msg)
		} else {
			c.d.Notifier.Notify(domain.NoticeError, msg)
		}
		return fmt.Errorf("reserve facility %d: %w", req.FacilityID, err)
	}

	c.d.Log.Info().Int64("facility_id", req.FacilityID).Str("time_slot", req.TimeSlot).Msg("reservation submitted")
	if current {
		c.closeModalLocked()
	}
	c.d.Notifier.Notify(domain.NoticeSuccess, text(c.lang, msgReserveOK))
	return nil
}

func (c *Controller) setHintLocked(s string) {
	c.modal.hint = s
	c.d.Page.SetText(domain.ElReserveHint, s)
}

func (c *Controller) Modal() domain.ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.open {
		return domain.ModalState{}
	}
	return domain.ModalState{
		Open:       true,
		FacilityID: c.modal.facility.ID,
		Title:      c.modal.facility.Name(c.lang),
		Desc:       c.modal.facility.Desc(c.lang),
		Hint:       c.modal.hint,
	}
}

// MyReservations lists the signed-in user's bookings. Guests have none to
// list and get domain.ErrGuest without a backend call.
func (c *Controller) MyReservations(ctx context.Context) ([]domain.Reservation, error) {
	if c.IsGuest() {
		return nil, domain.ErrGuest
	}
	list, err := c.d.Reservations.MyReservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("my reservations: %w", err)
	}
	return list, nil
}
