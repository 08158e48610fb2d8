package event_bus

import "time"

const (
	FamilyMemberDeletedType  EventType = "family.member.deleted"
	CalendarEventChangedType EventType = "calendar.event.changed"
)

type FamilyMemberDeleted struct {
	Uid  string
	Name string
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

type CalendarEventChanged struct {
	Kind       ChangeKind
	UID        string
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	AssignedTo string
}
