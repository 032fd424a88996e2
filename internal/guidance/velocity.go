package guidance

import (
	"math"
	"sort"
	"time"
)

// MinItemsPerWeek floors a measured velocity so forecasts stay finite.
const MinItemsPerWeek = 0.1

// Velocity is a project's historical completion throughput.
type Velocity struct {
	ItemsPerWeek    float64
	LastCompletedAt *time.Time
	Count           int // timestamps the figure was computed from
}

// Projection is a forecast of remaining duration. Both fields are nil when
// no forecast can be made.
type Projection struct {
	Days *int
	Date *time.Time
}

// ComputeVelocity derives items per week from completion timestamps. Zero
// timestamps are ignored. When all completions share one instant (including
// a single completion) they count as one burst: ItemsPerWeek equals the
// number of completions.
func ComputeVelocity(timestamps []time.Time) Velocity {
	ts := make([]time.Time, 0, len(timestamps))
	for _, t := range timestamps {
		if !t.IsZero() {
			ts = append(ts, t)
		}
	}
	if len(ts) == 0 {
		return Velocity{}
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	count := float64(len(ts))
	last := ts[len(ts)-1]
	v := Velocity{LastCompletedAt: &last, Count: len(ts)}

	span := last.Sub(ts[0])
	if span <= 0 {
		v.ItemsPerWeek = count
		return v
	}
	weeks := span.Hours() / 24 / 7
	v.ItemsPerWeek = math.Max(count/weeks, MinItemsPerWeek)
	return v
}

// Forecast projects how long the remaining required items will take at
// velocity v. Nothing remaining forecasts zero days from now; a zero
// velocity with work remaining cannot be forecast.
func Forecast(completed, total int, v Velocity, now time.Time) Projection {
	remaining := total - completed
	if remaining <= 0 {
		days := 0
		return Projection{Days: &days, Date: &now}
	}
	if v.ItemsPerWeek <= 0 {
		return Projection{}
	}
	days := int(math.Ceil(float64(remaining) / v.ItemsPerWeek * 7))
	date := now.AddDate(0, 0, days)
	return Projection{Days: &days, Date: &date}
}
