package domain

// ReservationRequest is the POST /api/reserve body. It is built fresh for
// every submission and never kept after the call returns.
type ReservationRequest struct {
	FacilityID int64  `json:"facility_id"`
	TimeSlot   string `json:"time_slot"`
	Memo       string `json:"memo"`
}

type ReservationAck struct {
	OK bool `json:"ok"`
}

// Reservation is a row of GET /api/my_reservations.
type Reservation struct {
	FacilityID int64  `json:"facility_id"`
	TimeSlot   string `json:"time_slot"`
	Duration   int    `json:"duration"` // minutes
	Memo       string `json:"memo"`
}
