package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/OpenTransitTools/timecovariates/business/data/holiday"
	"github.com/matryer/is"
)

func Test_timestampRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		stepHours int
		wantLen   int
		wantErr   bool
	}{
		{name: "daily", start: "2023-01-01", end: "2023-01-31", stepHours: 24, wantLen: 31},
		{name: "hourly single day", start: "2023-01-01", end: "2023-01-02", stepHours: 1, wantLen: 25},
		{name: "same day", start: "2023-01-01", end: "2023-01-01", stepHours: 24, wantLen: 1},
		{name: "reversed", start: "2023-01-02", end: "2023-01-01", stepHours: 24, wantErr: true},
		{name: "zero step", start: "2023-01-01", end: "2023-01-02", stepHours: 0, wantErr: true},
		{name: "bad start", start: "01/01/2023", end: "2023-01-02", stepHours: 24, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timestampRange(tt.start, tt.end, tt.stepHours)
			if (err != nil) != tt.wantErr {
				t.Errorf("timestampRange() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if len(got) != tt.wantLen {
				t.Errorf("timestampRange() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func Test_printCovariates(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	timestamps := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	is.NoErr(printCovariates(&out, timestamps, false, false))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	is.Equal(len(lines), 3)
	is.Equal(strings.Fields(lines[0]), []string{"timestamp", "dom", "dow", "doy", "moy", "woy"})
	is.Equal(strings.Fields(lines[1]),
		[]string{"2023-01-01T00:00:00Z", "1.0000", "6.0000", "1.0000", "1.0000", "1.0000"})
}

func Test_printHolidays(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	is.NoErr(printHolidays(&out, holiday.DefaultRegistry(), 2024))
	text := out.String()
	is.Equal(strings.Count(text, "\n"), 9)
	is.True(strings.Contains(text, "2024-03-31 Sun"))
	is.True(strings.Contains(text, "2024-12-25 Wed"))
}
