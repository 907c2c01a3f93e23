package domain

// Element ids and event targets shared with the page markup. Renaming any of
// these breaks the page.
const (
	ElCategorySelect = "category-select"
	ElSearchInput    = "search-input"
	ElSearchButton   = "search-btn"
	ElResetButton    = "reset-category"
	ElLangButton     = "toggle-btn" // class of the ko/en toggles; data-lang carries the code
	ElRouteClear     = "clear-route"

	ElReserveModal   = "reserve-modal-backdrop"
	ElReserveTitle   = "reserve-title"
	ElReserveDesc    = "reserve-desc"
	ElReserveHint    = "reserve-hint"
	ElReserveTime    = "reserve-time"
	ElReserveMemo    = "reserve-memo"
	ElReserveConfirm = "reserve-confirm"
	ElReserveCancel  = "reserve-cancel"

	// delegated targets raised by the map layer
	TargetMarker      = "marker"
	TargetPopupAction = "popup-action"
	TargetPopupClose  = "popup-close"
)

const (
	EventClick  = "click"
	EventChange = "change"
	EventInput  = "input"
	EventSubmit = "submit"
)

// Event is a DOM event forwarded by the page.
type Event struct {
	Type   string            `json:"type"`
	Target string            `json:"target"`
	Value  string            `json:"value,omitempty"`
	Data   map[string]string `json:"data,omitempty"`
}

type PopupActionKind string

const (
	ActionReserve PopupActionKind = "reserve"
	ActionStart   PopupActionKind = "start"
	ActionEnd     PopupActionKind = "end"
)
