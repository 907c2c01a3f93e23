package app

import "campus_map/internal/domain"

type msgKey int

const (
	msgLoadFailed msgKey = iota
	msgGuestOnly
	msgTimeRequired
	msgReserveFailed
	msgReserveOK
	msgSameEndpoints
	msgActionReserve
	msgActionStart
	msgActionEnd
	msgHere
)

var messages = map[msgKey][2]string{ // {ko, en}
	msgLoadFailed:    {"시설 정보를 불러오지 못했습니다.", "Failed to load facilities."},
	msgGuestOnly:     {"로그인한 사용자만 예약할 수 있습니다.", "Only signed-in users can make reservations."},
	msgTimeRequired:  {"예약 시간을 입력해주세요.", "Please enter a reservation time."},
	msgReserveFailed: {"예약 중 오류가 발생했습니다.", "An error occurred while making the reservation."},
	msgReserveOK:     {"예약이 완료되었습니다.", "Reservation confirmed."},
	msgSameEndpoints: {"출발지와 도착지가 같습니다.", "Start and end are the same place."},
	msgActionReserve: {"예약", "Reserve"},
	msgActionStart:   {"출발지", "Start"},
	msgActionEnd:     {"도착지", "End"},
	msgHere:          {"현재 위치", "You are here"},
}

func text(l domain.Lang, k msgKey) string {
	m := messages[k]
	if l == domain.LangEN {
		return m[1]
	}
	return m[0]
}
