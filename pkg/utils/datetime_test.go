package utils

import (
	"testing"
	"time"
)

func TestShouldSignInToday(t *testing.T) {
	now := ChinaNow()
	todayEarly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 1, 0, chinaZone)
	yesterdayLate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, chinaZone).Add(-time.Second)
	lastWeek := now.AddDate(0, 0, -7)

	cases := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"never checked in", nil, true},
		{"today at 00:00:01", &todayEarly, false},
		{"just now", &now, false},
		{"yesterday at 23:59:59", &yesterdayLate, true},
		{"a week ago", &lastWeek, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldSignInToday(tc.last); got != tc.want {
				t.Errorf("ShouldSignInToday(%v) = %v, want %v", tc.last, got, tc.want)
			}
		})
	}
}

func TestShouldSignInTodayNormalizesZones(t *testing.T) {
	// The same instant expressed in UTC must classify identically.
	now := ChinaNow()
	early := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 1, 0, chinaZone).UTC()
	if ShouldSignInToday(&early) {
		t.Error("today's check-in expressed in UTC must still count as done")
	}
}

func TestCurrentMonthFormat(t *testing.T) {
	got := CurrentMonth()
	if _, err := time.Parse("2006-01", got); err != nil {
		t.Errorf("CurrentMonth() = %q, not in YYYY-MM form: %v", got, err)
	}
}
