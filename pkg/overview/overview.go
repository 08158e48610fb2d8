package overview

import "time"

// Unassigned is the key and name used for events without an assignee.
const Unassigned = "Unassigned"

type WeeklyOverview struct {
	StartDate time.Time
	EndDate   time.Time
	Days      []DailyOverview
	// Assignees holds the weekly total of every assignee with time scheduled in the week,
	// ordered by name with Unassigned last.
	Assignees []AssigneeTime
	TotalTime time.Duration
}

type DailyOverview struct {
	Date      time.Time
	IsToday   bool
	Events    []EventSummary
	Assignees []AssigneeTime
	TotalTime time.Duration
}

type EventSummary struct {
	Id           string
	EventUid     string
	Title        string
	Start        time.Time
	End          time.Time
	AssigneeName string
	Color        string
	TextColor    string
}

type AssigneeTime struct {
	Name     string
	Color    string
	Duration time.Duration
}
