// Package services provides business logic services
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/stats"
)

// RecordSource is what the stats service needs from the violation store.
// The gorm store satisfies it in production; tests plug in an in-memory one.
type RecordSource interface {
	FindInRange(ctx context.Context, w stats.Window) ([]models.Violation, error)
	CountInRange(ctx context.Context, w stats.Window) (int64, error)
	CountPair(ctx context.Context, current, previous stats.Window) (cur, prev int64, err error)
}

// StatsService composes the window resolver, the grouped-max aggregator and
// the histogram builder into the operations the API and the chat tools call.
// It is stateless; every result is recomputed per request.
type StatsService struct {
	source     RecordSource
	production bool
	now        func() time.Time
}

// NewStatsService wires a stats service. production controls whether the
// client-date skew correction applies to browser-originated ranges.
func NewStatsService(source RecordSource, production bool) *StatsService {
	return &StatsService{source: source, production: production, now: time.Now}
}

// WithClock overrides the reference clock. Tests only.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// ViolationsStats holds the three independent grouped maxima for a window.
type ViolationsStats struct {
	StreetName    stats.GroupedMax `json:"streetName"`
	VehicleType   stats.GroupedMax `json:"vehicleType"`
	ViolationType stats.GroupedMax `json:"violationType"`
}

// Summary is the dashboard's headline aggregate for a window.
type Summary struct {
	TotalViolations    int64           `json:"totalViolations"`
	HighestViolatedDay stats.DayCount  `json:"highestViolatedDay"`
	ViolationsStats    ViolationsStats `json:"violationsStats"`
}

// Comparison pairs the violation counts of a current window and the block
// immediately before it.
type Comparison struct {
	Current  int64 `json:"current"`
	Previous int64 `json:"previous"`
}

// Diff is the percentage change the comparison cards render. The contract:
// nil when both counts are zero, 100 when only the previous is zero,
// otherwise (current-previous)/previous*100.
func (c Comparison) Diff() *float64 {
	if c.Previous == 0 {
		if c.Current == 0 {
			return nil
		}
		d := 100.0
		return &d
	}
	d := float64(c.Current-c.Previous) / float64(c.Previous) * 100
	return &d
}

// SummaryQuery selects the summary window. Explicit date parts win over the
// symbolic period; see resolveSummaryWindow for the precedence order.
type SummaryQuery struct {
	Year   *int
	Month  *int
	Day    *int
	Period *stats.Period

	// ClientDates marks Year/Month/Day as browser-originated, which makes
	// them subject to the one-day skew correction on production.
	ClientDates bool
}

func (q SummaryQuery) validate() error {
	if q.Year != nil && (*q.Year < 1000 || *q.Year > 9999) {
		return stats.ValidationError{Field: "year", Message: fmt.Sprintf("%d is not a 4-digit year", *q.Year)}
	}
	if q.Month != nil && (*q.Month < 1 || *q.Month > 12) {
		return stats.ValidationError{Field: "month", Message: fmt.Sprintf("%d is out of range [1,12]", *q.Month)}
	}
	if q.Day != nil && (*q.Day < 1 || *q.Day > 31) {
		return stats.ValidationError{Field: "day", Message: fmt.Sprintf("%d is out of range [1,31]", *q.Day)}
	}
	return nil
}

// resolveSummaryWindow picks the effective window. The precedence cases are
// checked in this fixed order, first match wins:
//
//	year+month+day > year+day > year+month > month+day > day > month > year
//	> symbolic period > default (current year to date)
func (s *StatsService) resolveSummaryWindow(q SummaryQuery) stats.Window {
	now := s.now()
	day := func(y int, m time.Month, d int) stats.Window {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return stats.Window{From: t, To: t}
	}
	month := func(y int, m time.Month) stats.Window {
		from := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return stats.Window{From: from, To: from.AddDate(0, 1, -1)}
	}

	var w stats.Window
	switch {
	case q.Year != nil && q.Month != nil && q.Day != nil:
		w = day(*q.Year, time.Month(*q.Month), *q.Day)
	case q.Year != nil && q.Day != nil:
		// Day of the current month in the given year.
		w = day(*q.Year, now.Month(), *q.Day)
	case q.Year != nil && q.Month != nil:
		w = month(*q.Year, time.Month(*q.Month))
	case q.Month != nil && q.Day != nil:
		w = day(now.Year(), time.Month(*q.Month), *q.Day)
	case q.Day != nil:
		w = day(now.Year(), now.Month(), *q.Day)
	case q.Month != nil:
		w = month(now.Year(), time.Month(*q.Month))
	case q.Year != nil:
		w = stats.BoundedWindow(stats.PeriodYear, time.Date(*q.Year, time.June, 15, 0, 0, 0, 0, time.UTC))
	case q.Period != nil:
		return stats.CurrentWindow(*q.Period, now)
	default:
		return stats.CurrentWindow(stats.PeriodYear, now)
	}

	return stats.CorrectClientDates(w, q.ClientDates, s.production)
}

// GetSummary resolves the window for the query and computes the headline
// aggregate: total count, busiest single day and the three grouped maxima.
// The three groupings run concurrently over one immutable snapshot slice; an
// empty window short-circuits to an all-zero summary.
func (s *StatsService) GetSummary(ctx context.Context, q SummaryQuery) (Summary, error) {
	if err := q.validate(); err != nil {
		return Summary{}, err
	}

	w := s.resolveSummaryWindow(q)
	records, err := s.source.FindInRange(ctx, w)
	if err != nil {
		return Summary{}, err
	}

	if len(records) == 0 {
		return Summary{
			TotalViolations:    0,
			HighestViolatedDay: stats.DayCount{Day: stats.NoDataDay, Count: 0},
			ViolationsStats: ViolationsStats{
				StreetName:    stats.GroupedMax{Winners: []string{}},
				VehicleType:   stats.GroupedMax{Winners: []string{}},
				ViolationType: stats.GroupedMax{Winners: []string{}},
			},
		}, nil
	}

	var result ViolationsStats
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.StreetName = stats.MaxGroup(records, stats.ByStreetName)
		return nil
	})
	g.Go(func() error {
		result.VehicleType = stats.MaxGroup(records, stats.ByVehicleType)
		return nil
	})
	g.Go(func() error {
		result.ViolationType = stats.MaxGroup(records, stats.ByViolationType)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalViolations:    int64(len(records)),
		HighestViolatedDay: stats.BusiestDay(records),
		ViolationsStats:    result,
	}, nil
}

// GetStatsForPeriod computes the three grouped maxima for the rolling window
// of a symbolic period.
func (s *StatsService) GetStatsForPeriod(ctx context.Context, p stats.Period) (ViolationsStats, error) {
	w := stats.CurrentWindow(p, s.now())
	records, err := s.source.FindInRange(ctx, w)
	if err != nil {
		return ViolationsStats{}, err
	}

	var result ViolationsStats
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.StreetName = stats.MaxGroup(records, stats.ByStreetName)
		return nil
	})
	g.Go(func() error {
		result.VehicleType = stats.MaxGroup(records, stats.ByVehicleType)
		return nil
	})
	g.Go(func() error {
		result.ViolationType = stats.MaxGroup(records, stats.ByViolationType)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ViolationsStats{}, err
	}
	return result, nil
}

// GetComparison counts violations in the current rolling window of a period
// and in the bounded block before it. Both counts come from one store
// snapshot.
func (s *StatsService) GetComparison(ctx context.Context, p stats.Period) (Comparison, error) {
	now := s.now()
	current := stats.CurrentWindow(p, now)
	previous := stats.PreviousWindow(p, now)

	cur, prev, err := s.source.CountPair(ctx, current, previous)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Current: cur, Previous: prev}, nil
}

// GetHistogram buckets violations in [from, to] by the given granularity.
func (s *StatsService) GetHistogram(ctx context.Context, w stats.Window, g stats.Granularity) ([]stats.Bucket, error) {
	records, err := s.source.FindInRange(ctx, w)
	if err != nil {
		return nil, err
	}
	return stats.Histogram(records, w, g), nil
}

// RangeResult is what GetAllInRange returns: the full record list, or just a
// count, or a summary, depending on the requested action.
type RangeResult struct {
	Violations []models.Violation `json:"violations,omitempty"`
	Count      *int64             `json:"count,omitempty"`
	Summary    *Summary           `json:"summary,omitempty"`
}

// RangeAction selects the shape of a range query result.
type RangeAction struct {
	CountOnly bool
	Summary   bool
}

// GetAllInRange fetches violations in a window, optionally collapsing the
// result to a count or a summary. clientDates marks the window as
// browser-originated for the skew correction; the correction is applied here,
// once, before any filtering.
func (s *StatsService) GetAllInRange(ctx context.Context, w stats.Window, clientDates bool, action RangeAction) (RangeResult, error) {
	w = stats.CorrectClientDates(w, clientDates, s.production)

	if action.CountOnly {
		n, err := s.source.CountInRange(ctx, w)
		if err != nil {
			return RangeResult{}, err
		}
		return RangeResult{Count: &n}, nil
	}

	records, err := s.source.FindInRange(ctx, w)
	if err != nil {
		return RangeResult{}, err
	}

	if action.Summary {
		sum := s.summarize(records)
		return RangeResult{Summary: &sum}, nil
	}

	return RangeResult{Violations: records}, nil
}

// summarize builds a Summary over an already-fetched record slice.
func (s *StatsService) summarize(records []models.Violation) Summary {
	if len(records) == 0 {
		return Summary{
			HighestViolatedDay: stats.DayCount{Day: stats.NoDataDay, Count: 0},
			ViolationsStats: ViolationsStats{
				StreetName:    stats.GroupedMax{Winners: []string{}},
				VehicleType:   stats.GroupedMax{Winners: []string{}},
				ViolationType: stats.GroupedMax{Winners: []string{}},
			},
		}
	}
	return Summary{
		TotalViolations:    int64(len(records)),
		HighestViolatedDay: stats.BusiestDay(records),
		ViolationsStats: ViolationsStats{
			StreetName:    stats.MaxGroup(records, stats.ByStreetName),
			VehicleType:   stats.MaxGroup(records, stats.ByVehicleType),
			ViolationType: stats.MaxGroup(records, stats.ByViolationType),
		},
	}
}
