package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/calendar"
	"github.com/simpletech310/CommonGround-sub005/pkg/compliance"
	"github.com/simpletech310/CommonGround-sub005/pkg/config"
	"github.com/simpletech310/CommonGround-sub005/pkg/database"
	"github.com/simpletech310/CommonGround-sub005/pkg/handlers"
	customMiddleware "github.com/simpletech310/CommonGround-sub005/pkg/middleware"
	"github.com/simpletech310/CommonGround-sub005/pkg/rsvp"
	"github.com/simpletech310/CommonGround-sub005/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.GetCached()
	if err := cfg.Validate(); err != nil {
		panic("Configuration error: " + err.Error())
	}

	store := database.NewStore(database.StoreConfig{
		PostgresDSN: cfg.PostgresDSN,
		Debug:       cfg.Debug,
	})
	defer store.Close()

	// Calendar cache is optional; without redis every read hits the store.
	var cache *calendar.Cache
	if cfg.RedisURL != "" {
		var err error
		cache, err = calendar.NewCache(cfg.RedisURL)
		if err != nil {
			panic("Redis error: " + err.Error())
		}
		defer cache.Close()
	}

	aggregator := calendar.NewAggregator(store, cache)
	engine := compliance.NewEngine(store, cfg.MissedCutoffMinutes)
	machine := rsvp.NewMachine(store)

	// The engines hold no timers; a cron schedule, when configured, plays
	// the external-scheduler role for the durable overdue sweep.
	if cfg.FinalizeSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.FinalizeSchedule, func() {
			n, err := engine.FinalizeOverdue("")
			if err != nil {
				fmt.Printf("finalize-overdue sweep failed: %v\n", err)
				return
			}
			if n > 0 {
				fmt.Printf("finalize-overdue sweep marked %d exchange(s) missed\n", n)
			}
		})
		if err != nil {
			panic("Invalid FINALIZE_SCHEDULE: " + err.Error())
		}
		c.Start()
		defer c.Stop()
	}

	router := chi.NewRouter()
	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, store, aggregator, engine, machine, cache)

	fmt.Printf("Listening on :%s (%s)\n", cfg.Port, cfg.Environment)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		panic(err)
	}
}

// setupMiddleware wires the global middleware chain
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))
	router.Use(customMiddleware.CORS(cfg))
	router.Use(middleware.Timeout(25 * time.Second))
	router.Use(middleware.Compress(5))

	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes wires all API routes
func setupRoutes(
	router *chi.Mux,
	cfg *config.Config,
	store database.Store,
	aggregator *calendar.Aggregator,
	engine *compliance.Engine,
	machine *rsvp.Machine,
	cache *calendar.Cache,
) {
	calendarHandler := handlers.NewCalendarHandler(cfg, aggregator)
	eventsHandler := handlers.NewEventsHandler(cfg, store, cache)
	exchangesHandler := handlers.NewExchangesHandler(cfg, engine, cache)
	courtEventsHandler := handlers.NewCourtEventsHandler(cfg, machine, cache)

	// Health check (public)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if err := store.HealthCheck(); err != nil {
			utils.WriteInternalServerErrorResponse(w, "store unavailable: "+err.Error())
			return
		}
		utils.WriteSuccessResponse(w, map[string]interface{}{
			"service": "calendar-compliance",
			"status":  "ok",
		})
	})

	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(cfg))

			r.Get("/calendar", calendarHandler.GetCalendar)
			r.Get("/calendar.ics", calendarHandler.GetCalendarICS)

			r.Post("/events", eventsHandler.CreateEvent)
			r.Get("/collections", eventsHandler.ListMyCollections)

			r.Route("/exchanges", func(r chi.Router) {
				r.Post("/{id}/check-in", exchangesHandler.CheckIn)
				r.Post("/finalize-overdue", exchangesHandler.FinalizeOverdue)
			})
			r.Get("/compliance", exchangesHandler.GetCompliance)

			r.Put("/court-events/{id}/rsvp", courtEventsHandler.SetRsvp)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
