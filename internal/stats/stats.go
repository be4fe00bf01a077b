// Package stats holds pure computations over activity lists. Nothing here
// touches the store or the cache; callers pass the list, the reference time
// and the local timezone.
package stats

import (
	"time"

	"github.com/limbo/journal/pkg/entity"
)

// GroupByDay partitions activities into lists keyed by their ISO day string.
// Per the one-entry-per-day invariant each list should hold one element, but
// the grouping tolerates violations.
func GroupByDay(activities []entity.Activity, loc *time.Location) map[string][]entity.Activity {
	grouped := make(map[string][]entity.Activity, len(activities))
	for _, activity := range activities {
		key := entity.DayKey(activity.Date, loc)
		grouped[key] = append(grouped[key], activity)
	}
	return grouped
}

// DistinctDays counts the calendar days represented in activities.
func DistinctDays(activities []entity.Activity, loc *time.Location) int {
	return len(daySet(activities, loc))
}

// StreakLength walks backward one day at a time from now and counts
// consecutive days having at least one activity. A day with none, including
// today itself, stops the walk.
func StreakLength(activities []entity.Activity, now time.Time, loc *time.Location) int {
	if len(activities) == 0 {
		return 0
	}
	days := daySet(activities, loc)
	streak := 0
	current := entity.Midnight(now, loc)
	for {
		if _, ok := days[current.Format(entity.DayKeyFormat)]; !ok {
			break
		}
		streak++
		current = current.AddDate(0, 0, -1)
	}
	return streak
}

// AverageWordsPerDay divides the total word count by the number of distinct
// days, not the record count, so a duplicate-day violation cannot deflate
// the average. Returns 0 when there are no activities.
func AverageWordsPerDay(activities []entity.Activity, loc *time.Location) int {
	distinct := DistinctDays(activities, loc)
	if distinct == 0 {
		return 0
	}
	total := 0
	for _, activity := range activities {
		total += activity.WordCount()
	}
	return total / distinct
}

// ActiveDaysSince counts distinct days with an activity dated on or after
// the cutoff, the "active days last week" dashboard card.
func ActiveDaysSince(activities []entity.Activity, cutoff time.Time, loc *time.Location) int {
	recent := make([]entity.Activity, 0, len(activities))
	for _, activity := range activities {
		if !activity.Date.Before(cutoff) {
			recent = append(recent, activity)
		}
	}
	return DistinctDays(recent, loc)
}

// PresenceSeries produces one point per calendar day over the trailing days
// window, oldest first, value 1 when the day has an activity and 0 when not.
// Missing days are emitted, never omitted, so the series length is fixed.
func PresenceSeries(activities []entity.Activity, days int, now time.Time, loc *time.Location) []entity.SeriesPoint {
	daysWithActivity := daySet(activities, loc)
	series := make([]entity.SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := entity.Midnight(now, loc).AddDate(0, 0, -i).Format(entity.DayKeyFormat)
		value := 0
		if _, ok := daysWithActivity[day]; ok {
			value = 1
		}
		series = append(series, entity.SeriesPoint{Day: day, Value: value})
	}
	return series
}

// WordCountSeries is PresenceSeries with per-day word counts instead of
// presence flags, used for the 30-day trend chart.
func WordCountSeries(activities []entity.Activity, days int, now time.Time, loc *time.Location) []entity.SeriesPoint {
	words := make(map[string]int, len(activities))
	for _, activity := range activities {
		words[entity.DayKey(activity.Date, loc)] += activity.WordCount()
	}
	series := make([]entity.SeriesPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := entity.Midnight(now, loc).AddDate(0, 0, -i).Format(entity.DayKeyFormat)
		series = append(series, entity.SeriesPoint{Day: day, Value: words[day]})
	}
	return series
}

// Summary bundles the dashboard numbers in one pass.
func Summary(activities []entity.Activity, now time.Time, loc *time.Location) entity.ActivityStats {
	weekAgo := entity.Midnight(now, loc).AddDate(0, 0, -7)
	return entity.ActivityStats{
		TotalDays:          DistinctDays(activities, loc),
		LastWeekDays:       ActiveDaysSince(activities, weekAgo, loc),
		AverageWordsPerDay: AverageWordsPerDay(activities, loc),
		StreakDays:         StreakLength(activities, now, loc),
	}
}

func daySet(activities []entity.Activity, loc *time.Location) map[string]struct{} {
	days := make(map[string]struct{}, len(activities))
	for _, activity := range activities {
		days[entity.DayKey(activity.Date, loc)] = struct{}{}
	}
	return days
}
