package campusapi

import (
	"strconv"
	"strings"

	"campus_map/internal/domain"
)

/********** alias registries (single source of truth) **********/

var facilityAliases = map[string][]string{
	"id":       {"id", "facility_id", "facilityId"},
	"lat":      {"lat", "latitude", "location.lat", "position.lat"},
	"lng":      {"lng", "lon", "long", "longitude", "location.lng", "location.lon", "position.lng"},
	"name_ko":  {"name_ko", "nameKo", "name.ko", "name"},
	"name_en":  {"name_en", "nameEn", "name.en"},
	"desc_ko":  {"desc_ko", "descKo", "description_ko", "desc.ko", "description"},
	"desc_en":  {"desc_en", "descEn", "description_en", "desc.en"},
	"category": {"category", "type", "kind"},
}

var errorAliases = map[string][]string{
	"message": {"error", "message", "detail", "title", "error.message"},
}

var pointAliases = map[string][]string{
	"lat": {"lat", "y", "latitude"},
	"lng": {"lng", "x", "lon", "longitude"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// firstString: first non-empty string for a named alias set.
func firstString(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s, ok := lookupAny(m, p).(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// firstFloat: number from several paths (float64/int/string like "36,01").
func firstFloat(m map[string]any, aliases map[string][]string, key string) (float64, bool) {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstInt64: int64 from several paths (float64/int/string).
func firstInt64(m map[string]any, aliases map[string][]string, key string) (int64, bool) {
	for _, p := range aliases[key] {
		switch v := lookupAny(m, p).(type) {
		case float64:
			return int64(v), true
		case int:
			return int64(v), true
		case int64:
			return v, true
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

/********** mappers **********/

// mapFacility tolerates the key variants seen across backend versions.
// Records without an id or coordinates cannot be placed and are rejected.
func mapFacility(m map[string]any) (domain.Facility, bool) {
	id, okID := firstInt64(m, facilityAliases, "id")
	lat, okLat := firstFloat(m, facilityAliases, "lat")
	lng, okLng := firstFloat(m, facilityAliases, "lng")
	if !okID || !okLat || !okLng {
		return domain.Facility{}, false
	}
	return domain.Facility{
		ID:       id,
		Lat:      lat,
		Lng:      lng,
		NameKO:   firstString(m, facilityAliases, "name_ko"),
		NameEN:   firstString(m, facilityAliases, "name_en"),
		DescKO:   firstString(m, facilityAliases, "desc_ko"),
		DescEN:   firstString(m, facilityAliases, "desc_en"),
		Category: firstString(m, facilityAliases, "category"),
	}, true
}

func mapPath(in []map[string]any) []domain.LatLng {
	out := make([]domain.LatLng, 0, len(in))
	for _, p := range in {
		lat, okLat := firstFloat(p, pointAliases, "lat")
		lng, okLng := firstFloat(p, pointAliases, "lng")
		if okLat && okLng {
			out = append(out, domain.LatLng{Lat: lat, Lng: lng})
		}
	}
	return out
}

// errorMessage extracts the server's message from an error body, "" if none.
func errorMessage(body map[string]any) string {
	if body == nil {
		return ""
	}
	return strings.TrimSpace(firstString(body, errorAliases, "message"))
}
