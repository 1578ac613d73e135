package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/muraqib/backend/models"
)

// Granularity selects the bucket unit for interval histograms. It is a closed
// variant: each value dispatches to one pure bucket-key function instead of a
// runtime-assembled query fragment.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity validates a client-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Hourly, Daily, Monthly, Yearly:
		return Granularity(s), nil
	}
	return "", ValidationError{Field: "granularity", Message: fmt.Sprintf("unknown granularity %q, expected one of hourly, daily, monthly, yearly", s)}
}

// Bucket is one non-empty histogram bucket.
type Bucket struct {
	Key   string `json:"bucketKey"`
	Count int    `json:"count"`
}

// bucketKey assigns a record to its bucket. The bool result is false for
// records whose time field cannot yield an hour.
func (g Granularity) bucketKey(v models.Violation) (string, bool) {
	switch g {
	case Hourly:
		// "08:45" and "8:45" both land in bucket "8".
		h, _, found := strings.Cut(v.Time, ":")
		if !found {
			return "", false
		}
		hour, err := strconv.Atoi(h)
		if err != nil || hour < 0 || hour > 23 {
			return "", false
		}
		return strconv.Itoa(hour), true
	case Daily:
		if len(v.Date) < 10 {
			return "", false
		}
		return v.Date[8:10], true
	case Monthly:
		if len(v.Date) < 7 {
			return "", false
		}
		return v.Date[5:7], true
	case Yearly:
		if len(v.Date) < 4 {
			return "", false
		}
		return v.Date[0:4], true
	}
	return "", false
}

// Histogram filters records to the closed [from, to] window, buckets them by
// granularity and returns the non-empty buckets sorted ascending by their
// numeric key. An empty range yields an empty slice, not an error.
func Histogram(records []models.Violation, w Window, g Granularity) []Bucket {
	counts := make(map[string]int)
	for _, r := range records {
		if !w.Contains(r.Date) {
			continue
		}
		key, ok := g.bucketKey(r)
		if !ok {
			continue
		}
		counts[key]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for key, c := range counts {
		buckets = append(buckets, Bucket{Key: key, Count: c})
	}

	// All keys are numerals; hourly keys are not zero-padded so sorting has
	// to be numeric rather than lexicographic.
	sort.Slice(buckets, func(i, j int) bool {
		a, _ := strconv.Atoi(buckets[i].Key)
		b, _ := strconv.Atoi(buckets[j].Key)
		return a < b
	})

	return buckets
}
