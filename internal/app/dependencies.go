package app

import (
	"github.com/familyhub/familyhub/internal/config"
	"github.com/familyhub/familyhub/internal/event_bus"
	"github.com/familyhub/familyhub/pkg/calendar"
	"github.com/familyhub/familyhub/pkg/event"
	"github.com/familyhub/familyhub/pkg/family"
	"github.com/familyhub/familyhub/pkg/google"
	"github.com/familyhub/familyhub/pkg/ical"
	"github.com/familyhub/familyhub/pkg/layout"
	"github.com/familyhub/familyhub/pkg/overview"
	"github.com/familyhub/familyhub/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	FamilyService *family.ServiceImpl
	FamilyHandler *family.Handler

	EventService *event.ServiceImpl
	EventHandler *event.Handler

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler

	OverviewService     *overview.ServiceImpl
	CsvOverviewRenderer *overview.CsvOverviewRendererImpl
	OverviewHandler     *overview.Handler

	ICalService *ical.Service
	ICalHandler *ical.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService *google.ServiceImpl
	GoogleHandler *google.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.FamilyService = family.NewService(family.NewRepository(db), family.NewDiskAvatarStore(cfg.Storage.Avatars), deps.EventBus)
	deps.FamilyHandler = family.NewHandler(deps.FamilyService)

	deps.EventService = event.NewService(event.NewRepository(db), deps.EventBus)
	deps.EventHandler = event.NewHandler(deps.EventService)

	engine := layout.NewEngine(cfg.Layout.PixelsPerHour, cfg.Layout.MinEventHeight)
	deps.CalendarService = calendar.NewService(deps.EventService.List, deps.FamilyService.List, engine)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.OverviewService = overview.NewService(deps.CalendarService.Week)
	deps.CsvOverviewRenderer = overview.NewCsvOverviewRenderer()
	deps.OverviewHandler = overview.NewHandler(deps.OverviewService, deps.CsvOverviewRenderer)

	deps.ICalService = ical.NewService(deps.EventService)
	deps.ICalHandler = ical.NewHandler(deps.ICalService)

	deps.GoogleAuth = google.NewGoogleAuth(google.NewTokenRepository(db), cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.EventService.Import)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	return deps
}
