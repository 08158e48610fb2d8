// Package colors resolves display colors of calendar events.
package colors

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PrimaryLight = "#BFD7EA"
	PrimaryMain  = "#6C9EBF"
	PrimaryDark  = "#2C3E50"

	SecondaryLight = "#E0E8D5"
	SecondaryMain  = "#A3B18A"
	SecondaryDark  = "#588157"

	White = "#FFFFFF"
	Gray  = "#6C757D"
	Black = "#000000"

	Beige  = "#EDE0D4"
	Purple = "#E5DEFF"
	Coral  = "#FFA69E"
	Yellow = "#FFD670"
	Teal   = "#7DCFB6"
	Pink   = "#F78CAF"

	Info = "#4EA8DE"
)

type Category string

const (
	CategoryWork    Category = "work"
	CategorySchool  Category = "school"
	CategoryMedical Category = "medical"
	CategorySocial  Category = "social"
	CategorySports  Category = "sports"
	CategoryHoliday Category = "holiday"
	CategoryOther   Category = "other"
)

var categoryColors = map[Category]string{
	CategoryWork:    Purple,
	CategorySchool:  Teal,
	CategoryMedical: Info,
	CategorySocial:  Coral,
	CategorySports:  Yellow,
	CategoryHoliday: SecondaryMain,
	CategoryOther:   Gray,
}

// categoryKeywords is checked in order, the first category with a keyword in the title wins.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryWork, []string{"work", "office"}},
	{CategorySchool, []string{"school", "class", "homework"}},
	{CategoryMedical, []string{"doctor", "medical", "appointment"}},
	{CategorySocial, []string{"party", "dinner", "lunch"}},
	{CategorySports, []string{"game", "practice", "sport"}},
	{CategoryHoliday, []string{"holiday", "vacation"}},
}

// Option is a color offered when creating a family member.
type Option struct {
	Name  string
	Value string
}

var Options = []Option{
	{"Blue", PrimaryMain},
	{"Teal", Teal},
	{"Purple", Purple},
	{"Coral", Coral},
	{"Green", SecondaryMain},
	{"Yellow", Yellow},
	{"Pink", Pink},
}

// CategoryOf classifies an event by keywords in its title.
func CategoryOf(title string) Category {
	lower := strings.ToLower(title)
	for _, c := range categoryKeywords {
		for _, keyword := range c.keywords {
			if strings.Contains(lower, keyword) {
				return c.category
			}
		}
	}
	return CategoryOther
}

func CategoryColor(category Category) string {
	if color, ok := categoryColors[category]; ok {
		return color
	}
	return Gray
}

// EventColor returns the category color of the title, falling back to the color of the
// assigned family member and then to gray.
func EventColor(title string, memberColor string) string {
	if category := CategoryOf(title); category != CategoryOther {
		return CategoryColor(category)
	}
	if memberColor != "" {
		return memberColor
	}
	return Gray
}

// RGB parses a #RRGGBB or #RGB color.
func RGB(hex string) (r, g, b uint8, err error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q", hex)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return uint8(value >> 16), uint8(value >> 8), uint8(value), nil
}

// IsDark reports whether the YIQ brightness of the color is below 128.
// Colors that cannot be parsed are treated as light.
func IsDark(hex string) bool {
	r, g, b, err := RGB(hex)
	if err != nil {
		return false
	}
	brightness := (int(r)*299 + int(g)*587 + int(b)*114) / 1000
	return brightness < 128
}

// TextColorFor returns white for dark backgrounds and black otherwise.
func TextColorFor(background string) string {
	if IsDark(background) {
		return White
	}
	return Black
}

// WithOpacity returns the color as a CSS rgba() value.
func WithOpacity(hex string, opacity float64) (string, error) {
	r, g, b, err := RGB(hex)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(opacity, 'f', -1, 64)), nil
}
