package schedule

import (
	"fmt"

	"golang.org/x/text/language"
)

// Weekday is a canonical calendar slot. Monday is the first day of the
// training week.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of canonical slots.
const DaysInWeek = 7

// Unmatched is the sort key of a title that names no weekday.
const Unmatched = 999

var weekdayNames = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Locale lists the textual forms recognised for each weekday. Variants are
// tried in the order given and must already be lower case.
type Locale struct {
	Tag      language.Tag
	Names    [DaysInWeek]string
	Variants [DaysInWeek][]string
}

// BrazilianPortuguese is the locale plan titles are written in.
var BrazilianPortuguese = Locale{
	Tag: language.BrazilianPortuguese,
	Names: [DaysInWeek]string{
		"Segunda-Feira", "Terça-Feira", "Quarta-Feira", "Quinta-Feira", "Sexta-Feira", "Sábado", "Domingo",
	},
	Variants: [DaysInWeek][]string{
		{"segunda", "segunda-feira"},
		{"terça", "terça-feira"},
		{"quarta", "quarta-feira"},
		{"quinta", "quinta-feira"},
		{"sexta", "sexta-feira"},
		{"sábado"},
		{"domingo"},
	},
}

// English is mostly useful for tests and the CLI.
var English = Locale{
	Tag:   language.English,
	Names: weekdayNames,
	Variants: [DaysInWeek][]string{
		{"monday"}, {"tuesday"}, {"wednesday"}, {"thursday"}, {"friday"}, {"saturday"}, {"sunday"},
	},
}
