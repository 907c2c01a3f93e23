// mapctl drives map page controllers against a campus backend from the
// command line and prints the resulting scene as JSON. With -sessions > 1 it
// runs the same script on several pages at once as a smoke or load check.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"campus_map/internal/adapters/campusapi"
	"campus_map/internal/adapters/observability"
	"campus_map/internal/adapters/scene"
	"campus_map/internal/app"
	"campus_map/internal/domain"
	"campus_map/internal/shared"
)

type script struct {
	lang      string
	guest     bool
	category  string
	query     string
	start     int64
	end       int64
	reserveID int64
	timeSlot  string
	memo      string
}

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	var (
		s        script
		base     = flag.String("base", cfg.CampusBase, "campus backend base URL")
		cookie   = flag.String("cookie", "", "backend session cookie, e.g. session=...")
		sessions = flag.Int("sessions", 1, "number of pages to drive")
		workers  = flag.Int("workers", 4, "pages driven concurrently")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall deadline")
	)
	flag.StringVar(&s.lang, "lang", cfg.DefaultLang, "page language (ko|en)")
	flag.BoolVar(&s.guest, "guest", false, "run as a guest")
	flag.StringVar(&s.category, "category", domain.CategoryAll, "category filter")
	flag.StringVar(&s.query, "q", "", "search text")
	flag.Int64Var(&s.start, "start", 0, "route start facility id")
	flag.Int64Var(&s.end, "end", 0, "route end facility id")
	flag.Int64Var(&s.reserveID, "reserve", 0, "facility id to reserve")
	flag.StringVar(&s.timeSlot, "time", "", "reservation time slot")
	flag.StringVar(&s.memo, "memo", "", "reservation memo")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := campusapi.New(*base, cfg.CampusRPS, cfg.CampusTimeout, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize campus API client")
	}
	api := client.WithUpstream(*cookie)

	if *sessions <= 1 {
		snap, err := run(ctx, api, s, cfg.RouteWalk)
		if err != nil {
			log.Error().Err(err).Msg("script step failed")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatal().Err(err).Msg("encode snapshot failed")
		}
		return
	}

	sem := semaphore.NewWeighted(int64(max(*workers, 1)))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	started := time.Now()
	for i := 0; i < *sessions; i++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			break
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			defer sem.Release(1)
			if _, err := run(ctx, api, s, cfg.RouteWalk); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				log.Warn().Int("page", n).Err(err).Msg("page failed")
				return
			}
			log.Debug().Int("page", n).Msg("page ok")
		}(i)
	}
	wg.Wait()
	log.Info().
		Int("pages", *sessions).
		Int("failures", failures).
		Dur("elapsed", time.Since(started)).
		Msg("run completed")
	if failures > 0 {
		os.Exit(1)
	}
}

// run opens one page and plays the script through page events, the same way
// a browser would.
func run(ctx context.Context, api *campusapi.Client, s script, routeWalk bool) (scene.Snapshot, error) {
	sc := scene.New(nil)
	d := app.Deps{
		Map: sc, Page: sc, Notifier: sc, Geo: sc,
		Facilities:   api,
		Reservations: api,
		Log:          log.Logger,
	}
	if routeWalk {
		d.Routes = api
	}
	c := app.NewController(domain.HostConfig{Lang: domain.Lang(s.lang), IsGuest: s.guest}, d)
	if err := c.Bootstrap(ctx); err != nil {
		return sc.Snapshot(), err
	}

	events := []domain.Event{}
	if s.category != domain.CategoryAll || s.query != "" {
		events = append(events,
			domain.Event{Type: domain.EventChange, Target: domain.ElCategorySelect, Value: s.category},
			domain.Event{Type: domain.EventSubmit, Target: domain.ElSearchInput, Value: s.query},
		)
	}
	action := func(id int64, kind domain.PopupActionKind) domain.Event {
		return domain.Event{Type: domain.EventClick, Target: domain.TargetPopupAction,
			Data: map[string]string{"facility": fmt.Sprint(id), "action": string(kind)}}
	}
	if s.start != 0 {
		events = append(events, action(s.start, domain.ActionStart))
	}
	if s.end != 0 {
		events = append(events, action(s.end, domain.ActionEnd))
	}
	if s.reserveID != 0 {
		events = append(events,
			action(s.reserveID, domain.ActionReserve),
			domain.Event{Type: domain.EventInput, Target: domain.ElReserveTime, Value: s.timeSlot},
			domain.Event{Type: domain.EventInput, Target: domain.ElReserveMemo, Value: s.memo},
			domain.Event{Type: domain.EventClick, Target: domain.ElReserveConfirm},
		)
	}

	for _, ev := range events {
		if err := c.Dispatch(ctx, ev); err != nil {
			return sc.Snapshot(), fmt.Errorf("%s %s: %w", ev.Type, ev.Target, err)
		}
	}
	return sc.Snapshot(), nil
}
