package user

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone     string
	WeekFirstDay time.Weekday
}

// Location returns the user's time zone, or UTC when it is not set or unknown.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, using UTC: %v", s.Timezone, err)
		return time.UTC
	}
	return loc
}

// WeekStart returns midnight of the first day of the week containing date, in the user's time zone.
func (s Settings) WeekStart(date time.Time) time.Time {
	date = date.In(s.Location())
	offset := (int(date.Weekday()) - int(s.WeekFirstDay) + 7) % 7
	day := date.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}
