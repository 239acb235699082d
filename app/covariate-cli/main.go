package main

import (
	"fmt"
	"github.com/OpenTransitTools/timecovariates/business/data/covariates"
	"github.com/OpenTransitTools/timecovariates/business/data/holiday"
	"github.com/ardanlabs/conf"
	"io"
	logger "log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"
)

var build = "develop"

func main() {
	log := logger.New(os.Stderr, "COVARIATE_CLI : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log, os.Stdout); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger, out io.Writer) error {
	var cfg struct {
		conf.Version
		Args       conf.Args
		Normalized bool `conf:"default:false"`
		Holiday    bool `conf:"default:true"`
		StepHours  int  `conf:"default:24"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Inspect time covariates for a range of timestamps"

	const prefix = "COVARIATE_CLI"

	usage, err := conf.Usage(prefix, &cfg)
	if err != nil {
		return fmt.Errorf("generating config usage: %w", err)
	}

	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			printUsage(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Args.Num(0) {
	case "covariates":
		timestamps, err := timestampRange(cfg.Args.Num(1), cfg.Args.Num(2), cfg.StepHours)
		if err != nil {
			return err
		}
		log.Printf("Computing covariates for %d timestamps", len(timestamps))
		return printCovariates(out, timestamps, cfg.Normalized, cfg.Holiday)
	case "holidays":
		year, err := strconv.Atoi(cfg.Args.Num(1))
		if err != nil {
			return fmt.Errorf("expected year with command holidays, error: %w", err)
		}
		return printHolidays(out, holiday.DefaultRegistry(), year)
	default:
		printUsage(usage)
		return nil
	}
}

//timestampRange builds timestamps from start to end inclusive, every stepHours
func timestampRange(startValue string, endValue string, stepHours int) ([]time.Time, error) {
	const layout = "2006-01-02"
	start, err := time.Parse(layout, startValue)
	if err != nil {
		return nil, fmt.Errorf("unable to parse start date %q, error: %w", startValue, err)
	}
	end, err := time.Parse(layout, endValue)
	if err != nil {
		return nil, fmt.Errorf("unable to parse end date %q, error: %w", endValue, err)
	}
	if stepHours < 1 {
		return nil, fmt.Errorf("step hours must be positive, got %d", stepHours)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", endValue, startValue)
	}
	var results []time.Time
	step := time.Duration(stepHours) * time.Hour
	for at := start; !at.After(end); at = at.Add(step) {
		results = append(results, at)
	}
	return results, nil
}

//printCovariates writes a table of covariates to out
func printCovariates(out io.Writer, timestamps []time.Time, normalized bool, includeHolidays bool) error {
	timeCovariates, err := covariates.New(timestamps, normalized, includeHolidays)
	if err != nil {
		return err
	}
	table, err := timeCovariates.GetCovariates()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprint(w, "timestamp\t")
	for _, column := range table.Columns() {
		fmt.Fprintf(w, "%s\t", column)
	}
	fmt.Fprintln(w)
	for i, at := range table.Index() {
		fmt.Fprintf(w, "%s\t", at.Format(time.RFC3339))
		for _, v := range table.Row(i) {
			fmt.Fprintf(w, "%.4f\t", v)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

//printHolidays writes the occurrences of each holiday in registry during year
func printHolidays(out io.Writer, registry *holiday.Registry, year int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	for i, rule := range registry.Rules() {
		for _, occurrence := range rule.Occurrences(yearStart, yearEnd) {
			fmt.Fprintf(w, "%s\t%s\t%s\n", covariates.HolidayColumnName(i), rule.Name(),
				occurrence.Format("2006-01-02 Mon"))
		}
	}
	return w.Flush()
}

func printUsage(confUsage string) {
	fmt.Println(confUsage)
	fmt.Println("commands:")
	fmt.Println("covariates <start yyyy-mm-dd> <end yyyy-mm-dd>: print covariates for the date range")
	fmt.Println("holidays <year>: print holiday occurrences for year")
}
