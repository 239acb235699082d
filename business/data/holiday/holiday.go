// Package holiday provides the holiday rules used to build holiday distance features.
package holiday

import (
	"errors"
	"fmt"
	"github.com/rickar/cal/v2"
	"math"
	"time"
)

// MaxWindow is the number of days searched on either side of a date for a holiday occurrence.
// 183 covers half a year in both directions including leap years, 17 more covers the range
// Easter can move within (March 22 - April 25).
// Every rule in DefaultRegistry has an occurrence inside this window for any date.
const MaxWindow = 183 + 17

// ErrNoOccurrence is returned when a rule has no occurrence inside the search window around a date.
var ErrNoOccurrence = errors.New("no holiday occurrence in search window")

//Rule is a named holiday definition able to list the dates it falls on
type Rule struct {
	holiday *cal.Holiday
}

//NewRule adopts a rickar/cal holiday definition as a Rule
func NewRule(h *cal.Holiday) Rule {
	return Rule{holiday: h}
}

//NewFixedRule builds a Rule falling on the same month and day every year
func NewFixedRule(name string, month time.Month, day int) Rule {
	return NewRule(&cal.Holiday{
		Name:  name,
		Month: month,
		Day:   day,
		Func:  cal.CalcDayOfMonth,
	})
}

//NewEasterRule builds a Rule offset by offsetDays from Easter Sunday, then moved back to the
//closest preceding (or same) weekday.
func NewEasterRule(name string, offsetDays int, weekday time.Weekday) Rule {
	return NewRule(&cal.Holiday{
		Name:    name,
		Offset:  offsetDays,
		Weekday: weekday,
		Func:    calcEasterWeekday,
	})
}

// calcEasterWeekday is a cal.HolidayFn rolling the Easter offset date back onto h.Weekday
func calcEasterWeekday(h *cal.Holiday, year int) time.Time {
	d := cal.CalcEasterOffset(h, year)
	back := (int(d.Weekday()) - int(h.Weekday) + 7) % 7
	return d.AddDate(0, 0, -back)
}

// Name of the holiday
func (r Rule) Name() string {
	return r.holiday.Name
}

// Occurrences returns every date between windowStart and windowEnd (both inclusive, compared by
// calendar date) on which the holiday falls, in chronological order.
// Dates are returned as midnight UTC.
func (r Rule) Occurrences(windowStart time.Time, windowEnd time.Time) []time.Time {
	start := Date(windowStart)
	end := Date(windowEnd)
	var results []time.Time
	for year := start.Year(); year <= end.Year(); year++ {
		actual, _ := r.holiday.Calc(year)
		if actual.IsZero() {
			continue
		}
		occurrence := Date(actual)
		if occurrence.Before(start) || occurrence.After(end) {
			continue
		}
		results = append(results, occurrence)
	}
	return results
}

// Date truncates t to its calendar date in its own location, returned as midnight UTC
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from "from" to "to"
func DaysBetween(from time.Time, to time.Time) int {
	return int(math.Round(Date(to).Sub(Date(from)).Hours() / 24))
}

//Registry holds an ordered list of Rules. The order of the list is the order of holiday features.
type Registry struct {
	rules []Rule
}

//NewRegistry builds a Registry from rules, in the order given
func NewRegistry(rules ...Rule) *Registry {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Registry{rules: copied}
}

//DefaultRegistry builds the Registry of holidays used for holiday distance features
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewEasterRule("Easter Sunday", 0, time.Sunday),
		NewFixedRule("New Years Day", time.January, 1),
		NewFixedRule("Independence Day", time.April, 27),
		NewFixedRule("Christmas Eve", time.December, 24),
		NewFixedRule("Christmas Day", time.December, 25),
		NewFixedRule("New Years Eve", time.December, 31),
		NewFixedRule("Boxing Day", time.December, 26),
		NewFixedRule("Armed Forces Day", time.February, 18),
		NewFixedRule("Labour Day", time.May, 1),
	)
}

// Rules returns a copy of the registry's rules
func (r *Registry) Rules() []Rule {
	copied := make([]Rule, len(r.rules))
	copy(copied, r.rules)
	return copied
}

// Len is the number of rules in the registry
func (r *Registry) Len() int {
	return len(r.rules)
}

// Names returns the rule names in registry order
func (r *Registry) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}

// Nearest finds the occurrence of rule closest to the calendar date of "at" within MaxWindow days.
// When two occurrences are the same distance away the earlier one is returned.
// This is not always the first occurrence in the window: 165 to 200 days after a yearly holiday
// the following occurrence is closer and is the one returned.
func Nearest(rule Rule, at time.Time) (time.Time, error) {
	day := Date(at)
	occurrences := rule.Occurrences(day.AddDate(0, 0, -MaxWindow), day.AddDate(0, 0, MaxWindow))
	if len(occurrences) == 0 {
		return time.Time{}, fmt.Errorf("%w: holiday %q around %s", ErrNoOccurrence,
			rule.Name(), day.Format("2006-01-02"))
	}
	nearest := occurrences[0]
	nearestDays := absInt(DaysBetween(nearest, day))
	for _, occurrence := range occurrences[1:] {
		days := absInt(DaysBetween(occurrence, day))
		//strictly less, earlier occurrence wins ties
		if days < nearestDays {
			nearest = occurrence
			nearestDays = days
		}
	}
	return nearest, nil
}

// Distance returns the signed number of days from the nearest occurrence of rule to "at".
// Positive values are after the holiday, negative before it.
func Distance(rule Rule, at time.Time) (int, error) {
	nearest, err := Nearest(rule, at)
	if err != nil {
		return 0, err
	}
	return DaysBetween(nearest, at), nil
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
