package domain

import (
	"net/url"
	"strings"
)

type Lang string

const (
	LangKO Lang = "ko"
	LangEN Lang = "en"
)

// ParseLang maps anything other than "en" to the Korean default.
func ParseLang(s string) Lang {
	if strings.EqualFold(strings.TrimSpace(s), string(LangEN)) {
		return LangEN
	}
	return LangKO
}

// CategoryAll is the select option that disables category filtering.
const CategoryAll = "All"

type Facility struct {
	ID       int64   `json:"id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	NameKO   string  `json:"name_ko"`
	NameEN   string  `json:"name_en"`
	DescKO   string  `json:"desc_ko"`
	DescEN   string  `json:"desc_en"`
	Category string  `json:"category"`
}

func (f Facility) Position() LatLng { return LatLng{Lat: f.Lat, Lng: f.Lng} }

// Name returns the localized name, falling back to the other language when empty.
func (f Facility) Name(l Lang) string {
	return pick(l, f.NameKO, f.NameEN)
}

func (f Facility) Desc(l Lang) string {
	return pick(l, f.DescKO, f.DescEN)
}

func pick(l Lang, ko, en string) string {
	if l == LangEN {
		if en != "" {
			return en
		}
		return ko
	}
	if ko != "" {
		return ko
	}
	return en
}

type FacilityQuery struct {
	Category string
	Q        string
}

// Values encodes the query for GET /api/facilities. A parameter is omitted
// when empty; category is also omitted for CategoryAll.
func (q FacilityQuery) Values() url.Values {
	v := url.Values{}
	if c := strings.TrimSpace(q.Category); c != "" && c != CategoryAll {
		v.Set("category", c)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		v.Set("q", s)
	}
	return v
}

// Key is a stable identity for the filter pair, used for logging and metrics.
func (q FacilityQuery) Key() string {
	if enc := q.Values().Encode(); enc != "" {
		return enc
	}
	return "*"
}
