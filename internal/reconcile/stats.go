package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

// Aggregation windows.
const (
	weeklyBucketKeep = 4
	dailyFocusKeep   = 7
)

// WeekBucket is one trailing-week bucket of task activity. Week 1 is the
// current week.
type WeekBucket struct {
	Week        string  `json:"week"`
	Performance float64 `json:"performance"` // completion rate, percent
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
}

// DayFocus is the summed focus minutes of one calendar day.
type DayFocus struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

// CategoryCount is the number of tasks carrying one subject label.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// WeeklyPerformance groups completions into trailing weekly buckets by
// elapsed-week-count from now back to the completion timestamp. A
// bucket's performance is completed / (completed + tasks created that
// week), as a percentage, 0 when the denominator is 0. Only the most
// recent four buckets are kept, most recent first.
func WeeklyPerformance(tasks []models.Task, completed []models.CompletedTaskRecord, now time.Time) []WeekBucket {
	type counts struct{ completed, created int }
	weeks := make(map[int]*counts)

	bucket := func(week int) *counts {
		if weeks[week] == nil {
			weeks[week] = &counts{}
		}
		return weeks[week]
	}

	for _, rec := range completed {
		at, err := time.Parse(models.TimeLayout, rec.CompletedAt)
		if err != nil {
			continue
		}
		bucket(weeksAgo(now, at)).completed++
	}
	for _, t := range tasks {
		at, err := time.Parse(models.TimeLayout, t.CreatedAt)
		if err != nil {
			continue
		}
		bucket(weeksAgo(now, at)).created++
	}

	indices := make([]int, 0, len(weeks))
	for w := range weeks {
		indices = append(indices, w)
	}
	sort.Ints(indices)
	if len(indices) > weeklyBucketKeep {
		indices = indices[:weeklyBucketKeep]
	}

	out := make([]WeekBucket, 0, len(indices))
	for _, w := range indices {
		c := weeks[w]
		total := c.completed + c.created
		perf := 0.0
		if total > 0 {
			perf = float64(c.completed) / float64(total) * 100
		}
		out = append(out, WeekBucket{
			Week:        fmt.Sprintf("Week %d", w+1),
			Performance: perf,
			Completed:   c.completed,
			Total:       total,
		})
	}
	return out
}

// DailyFocus sums focus-session minutes per calendar day and keeps the
// most recent seven days, oldest first.
func DailyFocus(sessions []models.FocusSession) []DayFocus {
	perDay := make(map[string]int)
	for _, s := range sessions {
		perDay[s.Date] += s.Duration
	}

	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	sort.Strings(dates) // dates use a sortable layout
	if len(dates) > dailyFocusKeep {
		dates = dates[len(dates)-dailyFocusKeep:]
	}

	out := make([]DayFocus, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayFocus{Date: d, Minutes: perDay[d]})
	}
	return out
}

// CategoryCounts counts tasks per subject label. Tasks without a subject
// fall into the "Uncategorized" bucket. Output is sorted by name for a
// stable order.
func CategoryCounts(tasks []models.Task) []CategoryCount {
	counts := make(map[string]int)
	for _, t := range tasks {
		name := t.Subject
		if name == "" {
			name = "Uncategorized"
		}
		counts[name]++
	}

	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]CategoryCount, 0, len(names))
	for _, n := range names {
		out = append(out, CategoryCount{Name: n, Value: counts[n]})
	}
	return out
}

// weeksAgo is the number of whole 7-day periods between now and then.
func weeksAgo(now, then time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / (7 * 24 * time.Hour))
}
