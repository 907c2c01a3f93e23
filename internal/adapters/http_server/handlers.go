// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"campus_map/internal/app"
	"campus_map/internal/domain"
)

const maxBody = 64 << 10

type Handlers struct {
	Sessions       *app.SessionService
	Cookie         *SessionCookie
	DefaultLang    domain.Lang
	UpstreamCookie string // backend session cookie forwarded to the campus API
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// viewResponse is everything the page needs to redraw itself.
type viewResponse struct {
	Session string               `json:"session"`
	Lang    domain.Lang          `json:"lang"`
	IsGuest bool                 `json:"is_guest"`
	Scene   any                  `json:"scene"`
	Route   *domain.RouteSummary `json:"route,omitempty"`
	Modal   domain.ModalState    `json:"modal"`
	Error   string               `json:"error,omitempty"`
}

type createSessionRequest struct {
	Lang    string   `json:"lang"`
	IsGuest *bool    `json:"is_guest"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

func (s *Server) MountHandlers(h *Handlers, uiRPS int) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/ui", func(r chi.Router) {
		r.Use(RateLimit(uiRPS))
		r.Post("/sessions", h.createSession)
		r.Delete("/sessions", h.dropSession)
		r.Get("/scene", h.scene)
		r.Post("/events", h.event)
		r.Get("/reservations", h.reservations)
	})
}

// selectLang picks the page language: explicit value, then Accept-Language,
// then the configured default.
func selectLang(explicit, acceptLanguage string, def domain.Lang) domain.Lang {
	if v := strings.TrimSpace(explicit); v != "" {
		return domain.ParseLang(v)
	}
	al := strings.ToLower(acceptLanguage)
	switch {
	case strings.HasPrefix(al, "en"):
		return domain.LangEN
	case strings.HasPrefix(al, "ko"):
		return domain.LangKO
	}
	return def
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func render(sess *app.Session, derr error) viewResponse {
	c := sess.Controller
	_, _, route := c.Route()
	out := viewResponse{
		Session: sess.ID,
		Lang:    c.Lang(),
		IsGuest: c.IsGuest(),
		Scene:   sess.View.Render(),
		Route:   route,
		Modal:   c.Modal(),
	}
	if derr != nil {
		out.Error = derr.Error()
	}
	return out
}

func (h *Handlers) upstream(r *http.Request) string {
	if h.UpstreamCookie == "" {
		return ""
	}
	if ck, err := r.Cookie(h.UpstreamCookie); err == nil && ck.Value != "" {
		return (&http.Cookie{Name: ck.Name, Value: ck.Value}).String()
	}
	return ""
}

// session resolves the caller's view session, writing the problem response
// itself when there is none.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := h.Cookie.SessionID(r)
	if err != nil {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "no view session; POST /ui/sessions first")
		return "", false
	}
	return id, true
}

func (h *Handlers) sessionError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "view session expired")
		return
	}
	log.Error().Err(err).Str("session", id).Msg("view session lookup failed")
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	// an empty body means "all defaults"
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {lang, is_guest, lat, lng}")
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		writeProblem(w, http.StatusBadRequest, "Invalid position", "lat and lng go together")
		return
	}

	ns := app.NewSession{Upstream: h.upstream(r)}
	ns.Host.Lang = selectLang(req.Lang, r.Header.Get("Accept-Language"), h.DefaultLang)
	// without a backend session the page is a guest whatever it claims
	ns.Host.IsGuest = ns.Upstream == "" || (req.IsGuest != nil && *req.IsGuest)
	if req.Lat != nil {
		ns.Geo = &domain.LatLng{Lat: *req.Lat, Lng: *req.Lng}
	}

	sess, err := h.Sessions.Create(r.Context(), ns)
	if err != nil {
		log.Error().Err(err).Msg("create view session failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "could not create view session")
		return
	}
	if err := h.Cookie.Issue(w, sess.ID); err != nil {
		log.Error().Err(err).Msg("issue session cookie failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeJSON(w, http.StatusCreated, render(sess, nil))
}

func (h *Handlers) dropSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Drop(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("drop view session failed")
	}
	h.Cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) scene(w http.ResponseWriter, r *http.Request) {
	id, ok := h.session(w, r)
	if !ok {
		return
	}
	sess, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, render(sess, nil))
}

// event dispatches one page event. Errors the page already shows (hints,
// alerts, notices) still answer 200 with the view; malformed events are 400.
func (h *Handlers) event(w http.ResponseWriter, r *http.Request) {
	id, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev domain.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&ev); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid event", "expected {type, target, value, data}")
		return
	}

	sess, err := h.Sessions.Dispatch(r.Context(), id, ev)
	if sess == nil {
		h.sessionError(w, id, err)
		return
	}
	switch {
	case errors.Is(err, domain.ErrUnknownTarget), errors.Is(err, domain.ErrBadEvent):
		writeProblem(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	case err != nil:
		log.Debug().Err(err).Str("session", id).Str("target", ev.Target).Msg("event handled with error")
	}
	writeJSON(w, http.StatusOK, render(sess, err))
}

func (h *Handlers) reservations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.session(w, r)
	if !ok {
		return
	}
	sess, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.sessionError(w, id, err)
		return
	}
	list, err := sess.Controller.MyReservations(r.Context())
	switch {
	case errors.Is(err, domain.ErrGuest):
		writeProblem(w, http.StatusForbidden, "Forbidden", "guests have no reservations")
		return
	case err != nil:
		var ae *domain.APIError
		if errors.As(err, &ae) && ae.Status == http.StatusUnauthorized {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", ae.Message)
			return
		}
		log.Warn().Err(err).Str("session", id).Msg("my reservations failed")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", domain.ServerMessage(err))
		return
	}
	if list == nil {
		list = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}
