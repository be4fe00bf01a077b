package stats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/limbo/journal/internal/stats"
	"github.com/limbo/journal/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	uid = uuid.New()
	// fixed "now" so the notion of today is pinned
	now = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	loc = time.UTC
)

func activityOn(day time.Time, content string) entity.Activity {
	return entity.Activity{
		ID:      uuid.New(),
		UserID:  uid,
		Date:    day,
		Content: content,
	}
}

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestGroupByDay(t *testing.T) {
	activities := []entity.Activity{
		activityOn(time.Date(2024, 3, 8, 9, 0, 0, 0, loc), "morning"),
		activityOn(time.Date(2024, 3, 8, 21, 0, 0, 0, loc), "evening duplicate"),
		activityOn(time.Date(2024, 3, 9, 12, 0, 0, 0, loc), "next day"),
	}
	grouped := stats.GroupByDay(activities, loc)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["2024-03-08"], 2)
	assert.Len(t, grouped["2024-03-09"], 1)
	assert.Equal(t, "next day", grouped["2024-03-09"][0].Content)
}

func TestStreakLength(t *testing.T) {
	t.Run("gap stops the walk", func(t *testing.T) {
		// activities on today, -1, -2 and -4: the gap at -3 caps the streak at 3
		activities := []entity.Activity{
			activityOn(daysAgo(0), "a"),
			activityOn(daysAgo(1), "b"),
			activityOn(daysAgo(2), "c"),
			activityOn(daysAgo(4), "d"),
		}
		assert.Equal(t, 3, stats.StreakLength(activities, now, loc))
	})
	t.Run("no activity today means no streak", func(t *testing.T) {
		activities := []entity.Activity{
			activityOn(daysAgo(1), "yesterday"),
			activityOn(daysAgo(2), "before"),
		}
		assert.Equal(t, 0, stats.StreakLength(activities, now, loc))
	})
	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, 0, stats.StreakLength(nil, now, loc))
	})
	t.Run("time of day is ignored", func(t *testing.T) {
		activities := []entity.Activity{
			activityOn(entity.Midnight(now, loc).Add(23*time.Hour+59*time.Minute), "late today"),
			activityOn(entity.Midnight(daysAgo(1), loc), "midnight yesterday"),
		}
		assert.Equal(t, 2, stats.StreakLength(activities, now, loc))
	})
}

func TestAverageWordsPerDay(t *testing.T) {
	t.Run("denominator counts distinct days", func(t *testing.T) {
		// duplicate-day violation: 10 and 20 words on one calendar day
		day := time.Date(2024, 3, 8, 10, 0, 0, 0, loc)
		activities := []entity.Activity{
			activityOn(day, "w1 w2 w3 w4 w5 w6 w7 w8 w9 w10"),
			activityOn(day.Add(5*time.Hour), "x1 x2 x3 x4 x5 x6 x7 x8 x9 x10 x11 x12 x13 x14 x15 x16 x17 x18 x19 x20"),
		}
		assert.Equal(t, 30, stats.AverageWordsPerDay(activities, loc))
	})
	t.Run("two days", func(t *testing.T) {
		activities := []entity.Activity{
			activityOn(daysAgo(0), "one two three four"),
			activityOn(daysAgo(1), "five six"),
		}
		assert.Equal(t, 3, stats.AverageWordsPerDay(activities, loc))
	})
	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, 0, stats.AverageWordsPerDay(nil, loc))
	})
}

func TestPresenceSeries(t *testing.T) {
	activities := []entity.Activity{
		activityOn(daysAgo(0), "today"),
		activityOn(daysAgo(2), "two days ago"),
	}
	series := stats.PresenceSeries(activities, 7, now, loc)
	require.Len(t, series, 7)
	// oldest first, fixed length, missing days are zeros
	assert.Equal(t, "2024-03-04", series[0].Day)
	assert.Equal(t, "2024-03-10", series[6].Day)
	assert.Equal(t, 0, series[0].Value)
	assert.Equal(t, 1, series[4].Value)
	assert.Equal(t, 0, series[5].Value)
	assert.Equal(t, 1, series[6].Value)
}

func TestWordCountSeries(t *testing.T) {
	activities := []entity.Activity{
		activityOn(daysAgo(0), "one two three"),
		activityOn(daysAgo(1), "four"),
	}
	series := stats.WordCountSeries(activities, 3, now, loc)
	require.Len(t, series, 3)
	assert.Equal(t, 0, series[0].Value)
	assert.Equal(t, 1, series[1].Value)
	assert.Equal(t, 3, series[2].Value)
}

func TestSummary(t *testing.T) {
	activities := []entity.Activity{
		activityOn(daysAgo(0), "one two"),
		activityOn(daysAgo(1), "three four five six"),
		activityOn(daysAgo(20), "old entry"),
	}
	summary := stats.Summary(activities, now, loc)
	assert.Equal(t, 3, summary.TotalDays)
	assert.Equal(t, 2, summary.LastWeekDays)
	assert.Equal(t, 2, summary.AverageWordsPerDay)
	assert.Equal(t, 2, summary.StreakDays)
}
