package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muraqib/backend/models"
	"github.com/muraqib/backend/services"
	"github.com/muraqib/backend/stats"
)

type sliceSource struct {
	records []models.Violation
}

func (s *sliceSource) FindInRange(_ context.Context, w stats.Window) ([]models.Violation, error) {
	var out []models.Violation
	for _, r := range s.records {
		if w.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *sliceSource) CountInRange(ctx context.Context, w stats.Window) (int64, error) {
	records, _ := s.FindInRange(ctx, w)
	return int64(len(records)), nil
}

func (s *sliceSource) CountPair(ctx context.Context, current, previous stats.Window) (int64, int64, error) {
	cur, _ := s.CountInRange(ctx, current)
	prev, _ := s.CountInRange(ctx, previous)
	return cur, prev, nil
}

// The store-backed tools need a database; these tests cover the tools that
// only touch the stats service, plus dispatch and argument decoding.
func testRegistry(records ...models.Violation) *Registry {
	svc := services.NewStatsService(&sliceSource{records: records}, false)
	return NewRegistry(svc, nil)
}

func TestRegistry_ToolSet(t *testing.T) {
	r := testRegistry()

	names := make([]string, 0, len(r.Tools()))
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.Execute, tool.Name)
		assert.Equal(t, "object", tool.Parameters["type"], tool.Name)
	}

	assert.ElementsMatch(t, []string{
		"getViolationsSummary",
		"getViolationsInRange",
		"getViolationsComparison",
		"getViolationsHistogram",
		"getViolationsByStreetName",
		"getViolationsByViolationType",
		"getViolationsByLocation",
		"getAllViolations",
	}, names)
}

func TestRegistry_Get(t *testing.T) {
	r := testRegistry()

	tool, ok := r.Get("getViolationsSummary")
	assert.True(t, ok)
	assert.Equal(t, "getViolationsSummary", tool.Name)

	_, ok = r.Get("deleteEverything")
	assert.False(t, ok)
}

func TestInvoke_UnknownTool(t *testing.T) {
	r := testRegistry()

	_, err := r.Invoke(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown tool "nope"`)
}

func TestInvoke_Summary(t *testing.T) {
	r := testRegistry(
		models.Violation{Date: "2024-09-12", Time: "10:00", StreetName: "King Fahd Road", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromLeft},
		models.Violation{Date: "2024-09-12", Time: "11:00", StreetName: "King Fahd Road", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromLeft},
	)

	out, err := r.Invoke(context.Background(), "getViolationsSummary",
		json.RawMessage(`{"year":2024,"month":9,"day":12}`))
	require.NoError(t, err)

	summary, ok := out.(services.Summary)
	require.True(t, ok)
	assert.Equal(t, int64(2), summary.TotalViolations)
	assert.Equal(t, "2024-09-12", summary.HighestViolatedDay.Day)
}

func TestInvoke_SummaryBadPeriod(t *testing.T) {
	r := testRegistry()

	_, err := r.Invoke(context.Background(), "getViolationsSummary",
		json.RawMessage(`{"period":"fortnightly"}`))
	assert.Error(t, err)
}

func TestInvoke_InRange(t *testing.T) {
	r := testRegistry(
		models.Violation{Date: "2024-09-12", Time: "10:00", StreetName: "Olaya Street", VehicleType: models.VehicleTruck, ViolationType: models.OvertakingFromRight},
	)

	out, err := r.Invoke(context.Background(), "getViolationsInRange",
		json.RawMessage(`{"from":"2024-09-01","to":"2024-09-30","countOnly":true}`))
	require.NoError(t, err)

	result, ok := out.(services.RangeResult)
	require.True(t, ok)
	require.NotNil(t, result.Count)
	assert.Equal(t, int64(1), *result.Count)

	_, err = r.Invoke(context.Background(), "getViolationsInRange",
		json.RawMessage(`{"from":"2024-09-30","to":"2024-09-01"}`))
	assert.Error(t, err, "inverted range must be rejected")
}

func TestInvoke_Histogram(t *testing.T) {
	r := testRegistry(
		models.Violation{Date: "2024-09-12", Time: "08:45", StreetName: "A", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromLeft},
		models.Violation{Date: "2024-09-13", Time: "08:05", StreetName: "A", VehicleType: models.VehicleCar, ViolationType: models.OvertakingFromLeft},
	)

	out, err := r.Invoke(context.Background(), "getViolationsHistogram",
		json.RawMessage(`{"from":"2024-09-01","to":"2024-09-30","granularity":"hourly"}`))
	require.NoError(t, err)

	buckets, ok := out.([]stats.Bucket)
	require.True(t, ok)
	assert.Equal(t, []stats.Bucket{{Key: "8", Count: 2}}, buckets)

	_, err = r.Invoke(context.Background(), "getViolationsHistogram",
		json.RawMessage(`{"from":"2024-09-01","to":"2024-09-30","granularity":"weekly"}`))
	assert.Error(t, err)
}

func TestInvoke_ByViolationTypeRejectsUnknown(t *testing.T) {
	r := testRegistry()

	_, err := r.Invoke(context.Background(), "getViolationsByViolationType",
		json.RawMessage(`{"violationType":"speeding"}`))
	var ve stats.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "violationType", ve.Field)
}

func TestInvoke_MalformedArgs(t *testing.T) {
	r := testRegistry()

	_, err := r.Invoke(context.Background(), "getViolationsSummary",
		json.RawMessage(`{"year":"twenty"}`))
	assert.Error(t, err)
}
