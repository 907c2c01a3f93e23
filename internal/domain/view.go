package domain

// HostConfig is the page configuration supplied by the host application.
type HostConfig struct {
	Lang    Lang `json:"lang"`
	IsGuest bool `json:"is_guest"`
}

type MarkerKind string

const (
	MarkerFacility        MarkerKind = "facility"
	MarkerCurrentLocation MarkerKind = "current-location"
)

type MarkerSpec struct {
	Kind       MarkerKind
	FacilityID int64 // zero for the current-location marker
	Position   LatLng
	Title      string
}

type MarkerID int64

type LineID int64

// Popup is pure content; clicks on its actions come back as delegated
// popup-action events, so nothing is bound to the popup itself.
type Popup struct {
	FacilityID int64         `json:"facility_id"`
	Title      string        `json:"title"`
	Body       string        `json:"body"`
	Actions    []PopupAction `json:"actions"`
}

type PopupAction struct {
	Kind  PopupActionKind `json:"kind"`
	Label string          `json:"label"`
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// ModalState is the reservation modal as the controller sees it.
type ModalState struct {
	Open       bool   `json:"open"`
	FacilityID int64  `json:"facility_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Desc       string `json:"desc,omitempty"`
	Hint       string `json:"hint,omitempty"`
}
