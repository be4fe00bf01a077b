package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
}

// Activity is one markdown journal entry. At most one exists per user per
// calendar day; Date keeps whatever time-of-day it was stamped with, only
// the local calendar day matters.
type Activity struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"uid"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

func (a *Activity) Empty() bool {
	return strings.TrimSpace(a.Content) == ""
}

// WordCount counts whitespace-delimited words in the markdown source.
func (a *Activity) WordCount() int {
	return len(strings.Fields(a.Content))
}

type ActivityStats struct {
	TotalDays          int `json:"total_days"`
	LastWeekDays       int `json:"last_week_days"`
	AverageWordsPerDay int `json:"avg_words_per_day"`
	StreakDays         int `json:"streak_days"`
}

type SeriesPoint struct {
	Day   string `json:"date"`
	Value int    `json:"value"`
}
