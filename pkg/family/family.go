package family

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleParent         Role = "Parent"
	RoleChild          Role = "Child"
	RoleExtendedFamily Role = "Extended Family"
	RoleOther          Role = "Other"
)

var ErrInvalidMember = errors.New("invalid family member")

type FamilyMember struct {
	Id        int
	Uid       string
	Name      string
	Color     string
	Role      Role // optional
	AvatarUrl string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m FamilyMember) Validate() error {
	if n := utf8.RuneCountInString(m.Name); n < 1 || n > 100 {
		return fmt.Errorf("%w: name must be between 1 and 100 characters", ErrInvalidMember)
	}
	if n := utf8.RuneCountInString(m.Color); n < 3 || n > 20 {
		return fmt.Errorf("%w: color must be between 3 and 20 characters", ErrInvalidMember)
	}
	switch m.Role {
	case "", RoleParent, RoleChild, RoleExtendedFamily, RoleOther:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMember, m.Role)
	}
	return nil
}
