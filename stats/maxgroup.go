package stats

import (
	"sort"
	"strings"

	"github.com/muraqib/backend/models"
)

// GroupedMax is the result of a grouped-maximum aggregation: the highest
// per-key count in a window and every key tied at that count. The dashboard
// rotates through tied leaders, so ties are never broken arbitrarily.
// MaxCount 0 always comes with an empty winner list.
type GroupedMax struct {
	MaxCount int      `json:"maxCount"`
	Winners  []string `json:"winners"`
}

// KeyFunc extracts the grouping key from a violation.
type KeyFunc func(models.Violation) string

// Grouping key extractors. Each grouping runs independently over the same
// immutable record slice, so they are safe to evaluate concurrently.
var (
	ByStreetName    KeyFunc = func(v models.Violation) string { return v.StreetName }
	ByVehicleType   KeyFunc = func(v models.Violation) string { return string(v.VehicleType) }
	ByViolationType KeyFunc = func(v models.Violation) string { return string(v.ViolationType) }
	ByDate          KeyFunc = func(v models.Violation) string { return v.Date }
)

// MaxGroup counts records per key and returns the maximum count with all keys
// achieving it. Keys compare case-insensitively ("Olaya street" and "Olaya
// Street" are one group) but the first-seen spelling is what gets reported.
func MaxGroup(records []models.Violation, key KeyFunc) GroupedMax {
	counts := make(map[string]int)
	display := make(map[string]string)

	for _, r := range records {
		k := key(r)
		folded := strings.ToLower(k)
		if _, seen := display[folded]; !seen {
			display[folded] = k
		}
		counts[folded]++
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		return GroupedMax{MaxCount: 0, Winners: []string{}}
	}

	winners := make([]string, 0, 1)
	for folded, c := range counts {
		if c == max {
			winners = append(winners, display[folded])
		}
	}
	sort.Strings(winners)

	return GroupedMax{MaxCount: max, Winners: winners}
}

// DayCount is a single calendar date with its violation count.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// NoDataDay is the sentinel busiest day for an empty window.
const NoDataDay = "No data"

// BusiestDay finds the single date with the most violations. Unlike MaxGroup
// this reports exactly one winner: on a tie the first date encountered in
// record order stays. That asymmetry matches what the dashboard shows and is
// intentional.
func BusiestDay(records []models.Violation) DayCount {
	if len(records) == 0 {
		return DayCount{Day: NoDataDay, Count: 0}
	}

	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.Date]++
	}

	best := DayCount{Day: NoDataDay, Count: 0}
	for _, r := range records {
		if c := counts[r.Date]; c > best.Count {
			best = DayCount{Day: r.Date, Count: c}
		}
	}
	return best
}
