package app

import (
	"github.com/familyhub/familyhub/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user/name-availability", deps.UserHandler.IsUsernameAvailable).Methods("GET").Queries("username", "{username}")

	// Family members
	r.HandleFunc("/api/family/member", deps.FamilyHandler.ListMembers).Methods("GET")
	r.HandleFunc("/api/family/member", deps.FamilyHandler.CreateMember).Methods("POST")
	r.HandleFunc("/api/family/member/{memberUid}", deps.FamilyHandler.GetMember).Methods("GET")
	r.HandleFunc("/api/family/member/{memberUid}", deps.FamilyHandler.UpdateMember).Methods("PUT")
	r.HandleFunc("/api/family/member/{memberUid}", deps.FamilyHandler.DeleteMember).Methods("DELETE")
	r.HandleFunc("/api/family/member/{memberUid}/avatar", deps.FamilyHandler.UploadAvatar).Methods("PUT")
	r.HandleFunc("/api/family/member/{memberUid}/avatar", deps.FamilyHandler.GetAvatar).Methods("GET")
	r.HandleFunc("/api/family/member/{memberUid}/avatar", deps.FamilyHandler.DeleteAvatar).Methods("DELETE")

	// Events
	r.HandleFunc("/api/event", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/event", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/event/upcoming", deps.EventHandler.GetUpcoming).Methods("GET")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/event/{eventUid}", deps.EventHandler.DeleteEvent).Methods("DELETE")

	// Calendar views
	r.HandleFunc("/api/calendar/day", deps.CalendarHandler.GetDay).Methods("GET")
	r.HandleFunc("/api/calendar/week", deps.CalendarHandler.GetWeek).Methods("GET")
	r.HandleFunc("/api/calendar/month", deps.CalendarHandler.GetMonth).Methods("GET")

	// Overview
	r.HandleFunc("/api/overview/weekly", deps.OverviewHandler.GetWeeklyOverview).Methods("GET")

	// iCalendar
	r.HandleFunc("/api/ical/export", deps.ICalHandler.Export).Methods("GET")
	r.HandleFunc("/api/ical/import", deps.ICalHandler.Import).Methods("POST")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("POST")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	r.HandleFunc("/api/integrations/google/import", deps.GoogleHandler.ImportEvents).Methods("POST").Queries("calendarId", "{calendarId}")
}
