// Package campusapi talks to the campus backend: facilities, reservations
// and walking routes. Calls are rate limited and never retried.
package campusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"campus_map/internal/adapters/observability"
	"campus_map/internal/domain"
)

const service = "campus"

var ErrBadPayload = errors.New("campusapi: unexpected payload")

type Client struct {
	r      *resty.Client
	rl     *rate.Limiter
	log    zerolog.Logger
	cookie string
}

func New(base string, rps int, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("campus API base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rl := rate.NewLimiter(rate.Limit(rps), rps)
	r := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "campus-map/1.0")
	// client-side rate limiting
	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rl.Wait(req.Context())
	})
	return &Client{r: r, rl: rl, log: log}, nil
}

// WithUpstream returns a client that forwards the user's backend session
// cookie. The copy shares the connection pool and the rate limiter.
func (c *Client) WithUpstream(cookie string) *Client {
	cp := *c
	cp.cookie = cookie
	return &cp
}

func (c *Client) req(ctx context.Context) *resty.Request {
	r := c.r.R().SetContext(ctx)
	if c.cookie != "" {
		r.SetHeader("Cookie", c.cookie)
	}
	return r
}

// ---- Public API ----

func (c *Client) ListFacilities(ctx context.Context, q domain.FacilityQuery) ([]domain.Facility, error) {
	var raw []map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/facilities", func(r *resty.Request) {
		r.SetQueryParamsFromValues(q.Values())
	}, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Facility, 0, len(raw))
	for _, m := range raw {
		f, ok := mapFacility(m)
		if !ok {
			c.log.Warn().Interface("record", m).Msg("skipping facility without id or coordinates")
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *Client) Reserve(ctx context.Context, req domain.ReservationRequest) (domain.ReservationAck, error) {
	var body map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/reserve", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(req)
	}, &body); err != nil {
		return domain.ReservationAck{}, err
	}
	// some backends answer 200 with ok=false
	if ok, present := body["ok"].(bool); present && !ok {
		return domain.ReservationAck{}, &domain.APIError{Status: http.StatusOK, Message: errorMessage(body)}
	}
	return domain.ReservationAck{OK: true}, nil
}

func (c *Client) MyReservations(ctx context.Context) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := c.do(ctx, http.MethodGet, "/api/my_reservations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WalkRoute(ctx context.Context, from, to domain.LatLng) (domain.WalkRoute, error) {
	var body struct {
		OK       *bool            `json:"ok"`
		Error    string           `json:"error"`
		Distance int              `json:"distance"`
		Duration int              `json:"duration"`
		Path     []map[string]any `json:"path"`
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	if err := c.do(ctx, http.MethodGet, "/api/route_walk", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"origin_lat": f(from.Lat),
			"origin_lng": f(from.Lng),
			"dest_lat":   f(to.Lat),
			"dest_lng":   f(to.Lng),
		})
	}, &body); err != nil {
		return domain.WalkRoute{}, err
	}
	if body.OK != nil && !*body.OK {
		return domain.WalkRoute{}, &domain.APIError{Status: http.StatusOK, Message: body.Error}
	}
	path := mapPath(body.Path)
	if len(path) < 2 {
		return domain.WalkRoute{}, fmt.Errorf("route_walk: %d path points: %w", len(path), ErrBadPayload)
	}
	return domain.WalkRoute{Distance: body.Distance, Duration: body.Duration, Path: path}, nil
}

// ---- Internals ----

// do runs one request, records metrics, and decodes a 2xx body into out.
// Non-2xx answers become *domain.APIError carrying the server's message.
func (c *Client) do(ctx context.Context, method, endpoint string, prep func(*resty.Request), out any) error {
	r := c.req(ctx)
	if prep != nil {
		prep(r)
	}
	start := time.Now()
	resp, err := r.Execute(method, endpoint)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		c.log.Warn().Err(err).Str("endpoint", endpoint).Str("err_type", observability.LabelErr(err)).Msg("campus api request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	observability.ObserveExternal(service, endpoint, resp.StatusCode(), time.Since(start))

	if !resp.IsSuccess() {
		var body map[string]any
		_ = json.Unmarshal(resp.Body(), &body)
		c.log.Debug().Int("status", resp.StatusCode()).Str("endpoint", endpoint).Msg("campus api error response")
		return &domain.APIError{Status: resp.StatusCode(), Message: errorMessage(body)}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, endpoint, errors.Join(ErrBadPayload, err))
	}
	return nil
}
