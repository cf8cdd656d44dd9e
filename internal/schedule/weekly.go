package schedule

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// WeeklyTime is a recurring weekly instant: a weekday and hour anchored to
// an IANA timezone. Validation happens once, at construction; a scheduler
// built from valid WeeklyTimes cannot misfire on zone or hour errors.
type WeeklyTime struct {
	Weekday  time.Weekday
	Hour     int
	Location *time.Location
}

func NewWeeklyTime(weekday time.Weekday, hour int, tz string) (WeeklyTime, error) {
	if weekday < time.Sunday || weekday > time.Saturday {
		return WeeklyTime{}, fmt.Errorf("invalid weekday %d", weekday)
	}
	if hour < 0 || hour > 23 {
		return WeeklyTime{}, fmt.Errorf("invalid hour %d", hour)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return WeeklyTime{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return WeeklyTime{Weekday: weekday, Hour: hour, Location: loc}, nil
}

// Next returns the next occurrence strictly after now, computed in the
// WeeklyTime's zone. Same day before the hour keeps today; at or after the
// hour rolls exactly one week.
func (w WeeklyTime) Next(now time.Time) time.Time {
	local := now.In(w.Location)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), w.Hour, 0, 0, 0, w.Location)
	daysAhead := (int(w.Weekday) - int(local.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

func (w WeeklyTime) String() string {
	return fmt.Sprintf("%s %02d:00 %s", w.Weekday, w.Hour, w.Location)
}

// WeekStart returns the ISO week anchor (Monday) of t's week as
// 2006-01-02. Sunday counts as the last day of the preceding Monday week.
func WeekStart(t time.Time) string {
	daysBack := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysBack)
	return monday.Format("2006-01-02")
}

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCycleID mints a unique id for one sync cycle. The millisecond clock
// plus a random suffix keeps rapid successive calls for the same week
// distinct.
func NewCycleID(weekStart string, now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = base36Chars[rand.Intn(len(base36Chars))]
	}
	return "sync-" + weekStart + "-" + strconv.FormatInt(now.UnixMilli(), 36) + string(suffix)
}
