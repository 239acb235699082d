// Package covariates extracts calendar and holiday features ("time covariates") for a series of
// timestamps, for use as auxiliary model inputs.
package covariates

import (
	"errors"
	"fmt"
	"github.com/OpenTransitTools/timecovariates/business/data/holiday"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"sync"
	"time"
)

// ErrMalformedTimestamp is returned when a timestamp cannot be resolved to a calendar date.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

//calendarField describes one calendar position feature.
//maxValue is the fixed bound used for normalization. doy (364) and dom (30) are lower than the
//true maximum of those fields so normalized values can slightly exceed 0.5; models trained on
//these features depend on the fixed bounds.
type calendarField struct {
	name     string
	maxValue float64
	value    func(t time.Time) int
}

var calendarFields = []calendarField{
	{name: "dom", maxValue: 30, value: func(t time.Time) int { return t.Day() }},
	{name: "dow", maxValue: 6, value: dayOfWeek},
	{name: "doy", maxValue: 364, value: func(t time.Time) int { return t.YearDay() }},
	{name: "moy", maxValue: 11, value: func(t time.Time) int { return int(t.Month()) }},
	{name: "woy", maxValue: 51, value: weekOfYear},
}

//dayOfWeek returns the weekday with Monday as 0 and Sunday as 6
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

//weekOfYear returns the week number of the year with weeks starting on Sunday.
//Days before the first Sunday of the year are in week 0.
func weekOfYear(t time.Time) int {
	return (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
}

// HolidayColumnName is the name of the feature column for the holiday at position i of the registry
func HolidayColumnName(i int) string {
	return fmt.Sprintf("hol_%d", i)
}

// CalendarColumnNames returns the calendar feature column names in output order
func CalendarColumnNames() []string {
	names := make([]string, len(calendarFields))
	for i, f := range calendarFields {
		names[i] = f.name
	}
	return names
}

// TimeCovariates extracts time covariates for a fixed series of timestamps.
// It is not modified after construction and is safe to use from multiple goroutines.
type TimeCovariates struct {
	timestamps []time.Time
	normalized bool
	holiday    bool
	registry   *holiday.Registry
}

// New builds TimeCovariates for timestamps using the default holiday registry.
// normalized rescales calendar features around zero, includeHolidays adds standardized holiday
// distance features.
func New(timestamps []time.Time, normalized bool, includeHolidays bool) (*TimeCovariates, error) {
	return NewWithRegistry(timestamps, normalized, includeHolidays, nil)
}

// NewWithRegistry builds TimeCovariates using registry for holiday features. A nil registry
// uses holiday.DefaultRegistry.
func NewWithRegistry(timestamps []time.Time,
	normalized bool,
	includeHolidays bool,
	registry *holiday.Registry) (*TimeCovariates, error) {

	for i, ts := range timestamps {
		if ts.IsZero() {
			return nil, fmt.Errorf("%w: zero value at position %d", ErrMalformedTimestamp, i)
		}
	}
	if registry == nil {
		registry = holiday.DefaultRegistry()
	}
	copied := make([]time.Time, len(timestamps))
	copy(copied, timestamps)
	return &TimeCovariates{
		timestamps: copied,
		normalized: normalized,
		holiday:    includeHolidays,
		registry:   registry,
	}, nil
}

// GetCovariates computes all features, returning them as a Table indexed by the timestamps.
// Calling it repeatedly returns equal tables.
func (c *TimeCovariates) GetCovariates() (*Table, error) {
	columns := CalendarColumnNames()
	values := make([][]float64, 0, len(calendarFields)+c.registry.Len())
	for _, f := range calendarFields {
		values = append(values, c.calendarColumn(f))
	}

	if c.holiday {
		holidayRows, err := c.holidayDistances()
		if err != nil {
			return nil, err
		}
		for i, row := range holidayRows {
			standardize(row)
			values = append(values, row)
			columns = append(columns, HolidayColumnName(i))
		}
	}

	return makeTable(c.timestamps, columns, values), nil
}

//calendarColumn computes calendarField f for every timestamp
func (c *TimeCovariates) calendarColumn(f calendarField) []float64 {
	column := make([]float64, len(c.timestamps))
	for i, ts := range c.timestamps {
		v := float64(f.value(ts))
		if c.normalized {
			v = v/f.maxValue - 0.5
		}
		column[i] = v
	}
	return column
}

//holidayDistances computes one row of raw day distances per holiday rule.
//Each rule is computed in its own goroutine, rows are returned in registry order.
func (c *TimeCovariates) holidayDistances() ([][]float64, error) {
	rules := c.registry.Rules()
	rows := make([][]float64, len(rules))
	errs := make([]error, len(rules))

	wg := sync.WaitGroup{}
	for i, rule := range rules {
		wg.Add(1)
		go func(i int, rule holiday.Rule) {
			defer wg.Done()
			rows[i], errs[i] = c.distanceRow(rule)
		}(i, rule)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

//distanceRow returns distances from rule's nearest occurrence for every timestamp
func (c *TimeCovariates) distanceRow(rule holiday.Rule) ([]float64, error) {
	row := make([]float64, len(c.timestamps))
	for i, ts := range c.timestamps {
		days, err := holiday.Distance(rule, ts)
		if err != nil {
			return nil, fmt.Errorf("computing holiday distance for timestamp %s: %w",
				ts.Format(time.RFC3339), err)
		}
		row[i] = float64(days)
	}
	return row, nil
}

// standardize rescales row in place to zero mean and unit (population) variance.
// A row without variance becomes all zeros.
func standardize(row []float64) {
	if len(row) == 0 {
		return
	}
	mean, stdDev := stat.PopMeanStdDev(row, nil)
	floats.AddConst(-mean, row)
	if stdDev == 0 {
		return
	}
	floats.Scale(1/stdDev, row)
}
