// Package schedule maps free-text workout titles onto the seven canonical
// weekday slots and orders plans for display.
//
// Matching is a case-insensitive substring test against each weekday's
// variants. Weekdays are tried in calendar order and the first hit wins, so a
// title naming both Friday and Saturday belongs to Friday.
package schedule

import (
	"sort"
	"strings"

	"alcyxob/fitness-coach/internal/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Resolver is safe for concurrent use.
type Resolver struct {
	locale Locale
}

// NewResolver returns a Resolver for the given locale.
func NewResolver(locale Locale) *Resolver {
	return &Resolver{locale: locale}
}

// Default resolves Brazilian Portuguese titles.
var Default = NewResolver(BrazilianPortuguese)

// Slot is one day of the resolved week. Plan is nil when no title matched.
type Slot struct {
	Weekday Weekday
	Name    string
	Plan    *domain.WorkoutPlan
}

// Empty reports whether no plan is bound to the slot.
func (s Slot) Empty() bool { return s.Plan == nil }

// Week is the resolved calendar, Monday first.
type Week [DaysInWeek]Slot

// WeekdayOf returns the first weekday, in calendar order, whose variants
// occur in title.
func (r *Resolver) WeekdayOf(title string) (Weekday, bool) {
	// cases.Caser is stateful; build one per call.
	folded := cases.Lower(r.locale.Tag).String(norm.NFC.String(title))
	for day := Monday; day <= Sunday; day++ {
		for _, v := range r.locale.Variants[day] {
			if strings.Contains(folded, v) {
				return day, true
			}
		}
	}
	return 0, false
}

// SortKey is the weekday ordinal of title, or Unmatched.
func (r *Resolver) SortKey(title string) int {
	if day, ok := r.WeekdayOf(title); ok {
		return int(day)
	}
	return Unmatched
}

// Name returns the display name of day in the resolver's locale.
func (r *Resolver) Name(day Weekday) string {
	if !day.Valid() {
		return ""
	}
	return r.locale.Names[day]
}

// Bind places plans on the week. Each plan can occupy only the slot of the
// weekday its title resolves to; when several plans resolve to the same
// weekday the earliest in input order is bound and the rest are ignored.
func (r *Resolver) Bind(plans []domain.WorkoutPlan) Week {
	var week Week
	for day := Monday; day <= Sunday; day++ {
		week[day] = Slot{Weekday: day, Name: r.locale.Names[day]}
	}
	for i := range plans {
		day, ok := r.WeekdayOf(plans[i].Title)
		if !ok || week[day].Plan != nil {
			continue
		}
		week[day].Plan = &plans[i]
	}
	return week
}

// Sort returns a copy of plans ordered by SortKey. Equal keys, including
// every unmatched title, keep their input order.
func (r *Resolver) Sort(plans []domain.WorkoutPlan) []domain.WorkoutPlan {
	keys := make([]int, len(plans))
	idx := make([]int, len(plans))
	for i := range plans {
		keys[i] = r.SortKey(plans[i].Title)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})
	out := make([]domain.WorkoutPlan, len(plans))
	for i, j := range idx {
		out[i] = plans[j]
	}
	return out
}
