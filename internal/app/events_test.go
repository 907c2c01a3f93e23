package app_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_map/internal/domain"
)

func click(target string, data map[string]string) domain.Event {
	return domain.Event{Type: domain.EventClick, Target: target, Data: data}
}

func popupAction(f domain.Facility, a domain.PopupActionKind) domain.Event {
	return click(domain.TargetPopupAction, map[string]string{
		"facility": strconv.FormatInt(f.ID, 10),
		"action":   string(a),
	})
}

func TestDispatch_LibraryToGymScenario(t *testing.T) {
	r := newRig(nil, nil)
	ctx := context.Background()
	r.facs.byQuery["*"] = []domain.Facility{library, gym}

	// empty filters -> no query parameters
	r.scene.SetValue(domain.ElCategorySelect, "")
	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElSearchButton, nil)))
	calls := r.facs.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Values().Encode())

	ms := r.scene.Snapshot().FacilityMarkers()
	require.Len(t, ms, 2)
	assert.Equal(t, domain.LatLng{Lat: 36.01, Lng: 129.32}, ms[0].Position)

	// marker click opens the popup, "출발지" on it sets the start
	require.NoError(t, r.c.Dispatch(ctx, click(domain.TargetMarker, map[string]string{"facility": "1"})))
	snap := r.scene.Snapshot()
	require.NotNil(t, snap.Popup)
	assert.Equal(t, "출발지", snap.Popup.Actions[1].Label)
	require.NoError(t, r.c.Dispatch(ctx, popupAction(library, domain.ActionStart)))

	require.NoError(t, r.c.Dispatch(ctx, click(domain.TargetMarker, map[string]string{"facility": "2"})))
	require.NoError(t, r.c.Dispatch(ctx, popupAction(gym, domain.ActionEnd)))

	snap = r.scene.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, []domain.LatLng{library.Position(), gym.Position()}, snap.Lines[0].Path)
	require.NotNil(t, snap.Bounds)
	assert.Equal(t, domain.BoundsOf(library.Position(), gym.Position()), *snap.Bounds)

	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElRouteClear, nil)))
	assert.Empty(t, r.scene.Snapshot().Lines)
}

func TestDispatch_FilterControls(t *testing.T) {
	r := newRig(nil, []domain.Facility{library, gym, cafe})
	ctx := context.Background()
	r.facs.byQuery["category=Restaurant"] = []domain.Facility{cafe}

	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventChange, Target: domain.ElCategorySelect, Value: "Restaurant"}))
	assert.Len(t, r.scene.Snapshot().FacilityMarkers(), 1)

	// typing alone does not search
	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventInput, Target: domain.ElSearchInput, Value: "카"}))
	assert.Len(t, r.facs.Calls(), 1)

	// enter does
	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventSubmit, Target: domain.ElSearchInput, Value: "카페"}))
	calls := r.facs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "category=Restaurant&q=%EC%B9%B4%ED%8E%98", calls[1].Values().Encode())

	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElResetButton, nil)))
	calls = r.facs.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "q=%EC%B9%B4%ED%8E%98", calls[2].Values().Encode(), "reset drops the category only")
	snap := r.scene.Snapshot()
	assert.Equal(t, domain.CategoryAll, snap.Elements[domain.ElCategorySelect].Value)
	assert.Equal(t, "카페", snap.Elements[domain.ElSearchInput].Value)
	assert.Len(t, snap.FacilityMarkers(), 3)
}

func TestDispatch_ResetKeepsSearchText(t *testing.T) {
	r := newRig(nil, []domain.Facility{library, gym})
	ctx := context.Background()

	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventInput, Target: domain.ElSearchInput, Value: "lib"}))
	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventChange, Target: domain.ElCategorySelect, Value: "Study"}))
	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElResetButton, nil)))

	assert.Equal(t, "lib", r.scene.Value(domain.ElSearchInput))
	assert.Equal(t, domain.CategoryAll, r.scene.Value(domain.ElCategorySelect))
	calls := r.facs.Calls()
	assert.Equal(t, "q=lib", calls[len(calls)-1].Values().Encode())
}

func TestDispatch_PageMarkupIDs(t *testing.T) {
	r := newRig(nil, []domain.Facility{library, gym})
	ctx := context.Background()
	require.NoError(t, r.c.LoadFacilities(ctx))

	require.NoError(t, r.c.Dispatch(ctx, click("reset-category", nil)))
	require.NoError(t, r.c.Dispatch(ctx, click("toggle-btn", map[string]string{"lang": "en"})))
	assert.Equal(t, domain.LangEN, r.c.Lang())

	require.NoError(t, r.c.Dispatch(ctx, popupAction(library, domain.ActionStart)))
	require.NoError(t, r.c.Dispatch(ctx, popupAction(gym, domain.ActionEnd)))
	require.Len(t, r.scene.Snapshot().Lines, 1)
	require.NoError(t, r.c.Dispatch(ctx, click("clear-route", nil)))
	assert.Empty(t, r.scene.Snapshot().Lines)

	require.NoError(t, r.c.Dispatch(ctx, popupAction(library, domain.ActionReserve)))
	require.True(t, r.c.Modal().Open)
	require.NoError(t, r.c.Dispatch(ctx, click("reserve-modal-backdrop", nil)))
	assert.False(t, r.c.Modal().Open)
	assert.False(t, r.scene.Snapshot().Elements["reserve-modal-backdrop"].Visible)
}

func TestDispatch_ReservationFlow(t *testing.T) {
	r := newRig(nil, []domain.Facility{library})
	ctx := context.Background()
	require.NoError(t, r.c.LoadFacilities(ctx))

	require.NoError(t, r.c.Dispatch(ctx, popupAction(library, domain.ActionReserve)))
	assert.ErrorIs(t, r.c.Dispatch(ctx, click(domain.ElReserveConfirm, nil)), domain.ErrTimeSlotRequired)

	require.NoError(t, r.c.Dispatch(ctx, domain.Event{Type: domain.EventInput, Target: domain.ElReserveTime, Value: "2026-10-20T10:00"}))
	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElReserveConfirm, nil)))
	require.Len(t, r.res.Requests(), 1)
	assert.False(t, r.c.Modal().Open)

	require.NoError(t, r.c.Dispatch(ctx, popupAction(library, domain.ActionReserve)))
	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElReserveModal, nil)))
	assert.False(t, r.c.Modal().Open, "backdrop click closes the modal")
}

func TestDispatch_LanguageButton(t *testing.T) {
	r := newRig(nil, []domain.Facility{library})
	ctx := context.Background()
	require.NoError(t, r.c.LoadFacilities(ctx))

	require.NoError(t, r.c.Dispatch(ctx, click(domain.ElLangButton, map[string]string{"lang": "en"})))
	assert.Equal(t, domain.LangEN, r.c.Lang())
	assert.Equal(t, "Library", r.scene.Snapshot().FacilityMarkers()[0].Title)

	assert.ErrorIs(t, r.c.Dispatch(ctx, click(domain.ElLangButton, nil)), domain.ErrBadEvent)
}

func TestDispatch_RejectsUnknownAndMalformed(t *testing.T) {
	r := newRig(nil, []domain.Facility{library})
	ctx := context.Background()
	require.NoError(t, r.c.LoadFacilities(ctx))

	assert.ErrorIs(t, r.c.Dispatch(ctx, click("nope", nil)), domain.ErrUnknownTarget)
	assert.ErrorIs(t, r.c.Dispatch(ctx, click(domain.TargetMarker, nil)), domain.ErrBadEvent)
	assert.ErrorIs(t, r.c.Dispatch(ctx, click(domain.TargetMarker, map[string]string{"facility": "x"})), domain.ErrBadEvent)
	assert.ErrorIs(t, r.c.Dispatch(ctx, click(domain.TargetMarker, map[string]string{"facility": "9"})), domain.ErrNotFound)
	assert.ErrorIs(t, r.c.Dispatch(ctx, popupAction(library, "teleport")), domain.ErrBadEvent)
}
