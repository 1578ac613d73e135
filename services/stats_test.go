package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/stats"
)

// fakeSource is an in-memory RecordSource.
type fakeSource struct {
	records []models.Violation
	err     error
}

func (f *fakeSource) FindInRange(_ context.Context, w stats.Window) ([]models.Violation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Violation
	for _, r := range f.records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) CountInRange(ctx context.Context, w stats.Window) (int64, error) {
	records, err := f.FindInRange(ctx, w)
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

func (f *fakeSource) CountPair(ctx context.Context, current, previous stats.Window) (int64, int64, error) {
	cur, err := f.CountInRange(ctx, current)
	if err != nil {
		return 0, 0, err
	}
	prev, err := f.CountInRange(ctx, previous)
	if err != nil {
		return 0, 0, err
	}
	return cur, prev, nil
}

func record(date, street string, vehicle models.VehicleType) models.Violation {
	return models.Violation{
		Date:          date,
		Time:          "10:30",
		StreetName:    street,
		VehicleType:   vehicle,
		ViolationType: models.OvertakingFromRight,
	}
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(stats.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newService(source RecordSource, production bool, today string) *StatsService {
	return NewStatsService(source, production).WithClock(fixedClock(today))
}

func intp(n int) *int { return &n }

func TestGetSummary_EmptyYearShortCircuits(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
	}}
	svc := newService(source, false, "2024-09-15")

	summary, err := svc.GetSummary(context.Background(), SummaryQuery{Year: intp(2023)})
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.TotalViolations)
	assert.Equal(t, stats.NoDataDay, summary.HighestViolatedDay.Day)
	assert.Equal(t, 0, summary.HighestViolatedDay.Count)
	assert.Equal(t, 0, summary.ViolationsStats.StreetName.MaxCount)
	assert.Empty(t, summary.ViolationsStats.StreetName.Winners)
	assert.Empty(t, summary.ViolationsStats.VehicleType.Winners)
	assert.Empty(t, summary.ViolationsStats.ViolationType.Winners)
}

func TestGetSummary_Validation(t *testing.T) {
	svc := newService(&fakeSource{}, false, "2024-09-15")

	tests := []struct {
		query SummaryQuery
		field string
	}{
		{SummaryQuery{Year: intp(99)}, "year"},
		{SummaryQuery{Year: intp(12345)}, "year"},
		{SummaryQuery{Month: intp(0)}, "month"},
		{SummaryQuery{Month: intp(13)}, "month"},
		{SummaryQuery{Day: intp(0)}, "day"},
		{SummaryQuery{Day: intp(32)}, "day"},
	}

	for _, test := range tests {
		_, err := svc.GetSummary(context.Background(), test.query)
		var ve stats.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, test.field, ve.Field)
	}
}

func TestGetSummary_WindowPrecedence(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
		record("2024-08-20", "Olaya Street", models.VehicleTruck),
		record("2023-05-01", "Olaya Street", models.VehicleBus),
	}}
	svc := newService(source, false, "2024-09-15")

	tests := []struct {
		name     string
		query    SummaryQuery
		expected int64
	}{
		{"year+month+day", SummaryQuery{Year: intp(2024), Month: intp(9), Day: intp(12)}, 2},
		{"year+day uses current month", SummaryQuery{Year: intp(2024), Day: intp(12)}, 2},
		{"year+month", SummaryQuery{Year: intp(2024), Month: intp(8)}, 1},
		{"month+day uses current year", SummaryQuery{Month: intp(9), Day: intp(12)}, 2},
		{"day only uses current month and year", SummaryQuery{Day: intp(12)}, 2},
		{"month only uses current year", SummaryQuery{Month: intp(8)}, 1},
		{"year only covers the whole year", SummaryQuery{Year: intp(2023)}, 1},
		{"default is current year to date", SummaryQuery{}, 3},
	}

	for _, test := range tests {
		summary, err := svc.GetSummary(context.Background(), test.query)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expected, summary.TotalViolations, test.name)
	}
}

func TestGetSummary_PeriodWindow(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-15", "King Fahd Road", models.VehicleCar),
		record("2024-09-14", "King Fahd Road", models.VehicleCar), // Saturday, same week
		record("2024-09-13", "Olaya Street", models.VehicleTruck), // Friday, previous week
	}}
	svc := newService(source, false, "2024-09-15")

	period := stats.PeriodWeek
	summary, err := svc.GetSummary(context.Background(), SummaryQuery{Period: &period})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalViolations)
}

func TestGetSummary_GroupedStats(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
		record("2024-09-12", "Olaya Street", models.VehicleTruck),
	}}
	svc := newService(source, false, "2024-09-15")

	summary, err := svc.GetSummary(context.Background(), SummaryQuery{Year: intp(2024), Month: intp(9), Day: intp(12)})
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.TotalViolations)
	assert.Equal(t, "2024-09-12", summary.HighestViolatedDay.Day)
	assert.Equal(t, 2, summary.HighestViolatedDay.Count)
	assert.Equal(t, 1, summary.ViolationsStats.VehicleType.MaxCount)
	assert.ElementsMatch(t, []string{"car", "truck"}, summary.ViolationsStats.VehicleType.Winners)
	assert.Equal(t, 2, summary.ViolationsStats.ViolationType.MaxCount)
	assert.Equal(t, []string{string(models.OvertakingFromRight)}, summary.ViolationsStats.ViolationType.Winners)
}

func TestGetSummary_ClientDateSkew(t *testing.T) {
	// A browser asking for 2024-09-11 really means the stored 2024-09-12:
	// on production the window shifts one day forward, exactly once.
	source := &fakeSource{records: []models.Violation{
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
	}}
	query := SummaryQuery{Year: intp(2024), Month: intp(9), Day: intp(11), ClientDates: true}

	production := newService(source, true, "2024-09-15")
	summary, err := production.GetSummary(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalViolations)

	// Local development shares the server clock: no shift.
	local := newService(source, false, "2024-09-15")
	summary, err = local.GetSummary(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalViolations)

	// Server-normalized dates are never shifted, even on production.
	query.ClientDates = false
	query.Day = intp(12)
	summary, err = production.GetSummary(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalViolations)
}

func TestGetSummary_StoreErrorFailsWhole(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	svc := newService(source, false, "2024-09-15")

	_, err := svc.GetSummary(context.Background(), SummaryQuery{})
	assert.Error(t, err)
}

func TestGetComparison(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-15", "King Fahd Road", models.VehicleCar),
		record("2024-09-15", "King Fahd Road", models.VehicleCar),
		record("2024-09-14", "King Fahd Road", models.VehicleCar), // previous day
	}}
	svc := newService(source, false, "2024-09-15")

	comparison, err := svc.GetComparison(context.Background(), stats.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, int64(2), comparison.Current)
	assert.Equal(t, int64(1), comparison.Previous)
}

func TestComparison_DiffContract(t *testing.T) {
	tests := []struct {
		current, previous int64
		expected          *float64
	}{
		{0, 0, nil},
		{4, 0, floatp(100)},
		{3, 2, floatp(50)},
		{1, 2, floatp(-50)},
		{2, 2, floatp(0)},
	}

	for _, test := range tests {
		c := Comparison{Current: test.current, Previous: test.previous}
		diff := c.Diff()
		if test.expected == nil {
			assert.Nil(t, diff, "%d/%d", test.current, test.previous)
		} else {
			require.NotNil(t, diff, "%d/%d", test.current, test.previous)
			assert.InDelta(t, *test.expected, *diff, 1e-9)
		}
	}
}

func floatp(f float64) *float64 { return &f }

func TestGetStatsForPeriod(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-15", "King Fahd Road", models.VehicleCar),
		record("2024-09-15", "King Fahd Road", models.VehicleTruck),
		record("2024-09-01", "Olaya Street", models.VehicleCar), // outside current day
	}}
	svc := newService(source, false, "2024-09-15")

	result, err := svc.GetStatsForPeriod(context.Background(), stats.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, 2, result.StreetName.MaxCount)
	assert.Equal(t, []string{"King Fahd Road"}, result.StreetName.Winners)
	assert.Equal(t, 1, result.VehicleType.MaxCount)
	assert.ElementsMatch(t, []string{"car", "truck"}, result.VehicleType.Winners)
}

func TestGetHistogram(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		{Date: "2024-09-12", Time: "08:45", StreetName: "A", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromRight},
		{Date: "2024-09-15", Time: "08:05", StreetName: "A", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromRight},
	}}
	svc := newService(source, false, "2024-09-30")

	w, err := stats.NewWindow("2024-09-01", "2024-09-30")
	require.NoError(t, err)

	buckets, err := svc.GetHistogram(context.Background(), w, stats.Hourly)
	require.NoError(t, err)
	assert.Equal(t, []stats.Bucket{{Key: "8", Count: 2}}, buckets)
}

func TestGetAllInRange(t *testing.T) {
	source := &fakeSource{records: []models.Violation{
		record("2024-09-12", "King Fahd Road", models.VehicleCar),
		record("2024-09-13", "Olaya Street", models.VehicleTruck),
		record("2024-10-01", "Olaya Street", models.VehicleTruck),
	}}
	svc := newService(source, false, "2024-10-15")

	w, err := stats.NewWindow("2024-09-01", "2024-09-30")
	require.NoError(t, err)

	// Full list
	result, err := svc.GetAllInRange(context.Background(), w, false, RangeAction{})
	require.NoError(t, err)
	assert.Len(t, result.Violations, 2)

	// Count only
	result, err = svc.GetAllInRange(context.Background(), w, false, RangeAction{CountOnly: true})
	require.NoError(t, err)
	require.NotNil(t, result.Count)
	assert.Equal(t, int64(2), *result.Count)

	// Summary
	result, err = svc.GetAllInRange(context.Background(), w, false, RangeAction{Summary: true})
	require.NoError(t, err)
	require.NotNil(t, result.Summary)
	assert.Equal(t, int64(2), result.Summary.TotalViolations)
}

func TestGetAllInRange_SkewAppliedOnce(t *testing.T) {
	// Applying the correction once is equivalent to pre-shifting the window
	// by a day; a second application would land on 2024-09-14 and find
	// nothing.
	source := &fakeSource{records: []models.Violation{
		record("2024-09-13", "King Fahd Road", models.VehicleCar),
	}}
	svc := newService(source, true, "2024-09-15")

	w, err := stats.NewWindow("2024-09-12", "2024-09-12")
	require.NoError(t, err)

	result, err := svc.GetAllInRange(context.Background(), w, true, RangeAction{CountOnly: true})
	require.NoError(t, err)
	require.NotNil(t, result.Count)
	assert.Equal(t, int64(1), *result.Count)

	preShifted := stats.CorrectClientDates(w, true, true)
	direct, err := svc.GetAllInRange(context.Background(), preShifted, false, RangeAction{CountOnly: true})
	require.NoError(t, err)
	assert.Equal(t, *result.Count, *direct.Count)
}
