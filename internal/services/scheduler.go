package services

import (
	"context"
	"fmt"
	"time"
)

// DailySchedule fires once a day at Hour:Minute in Location (local time when nil).
type DailySchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func NewDailySchedule(hour, minute int) (DailySchedule, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return DailySchedule{}, fmt.Errorf("daily schedule: invalid time %02d:%02d", hour, minute)
	}
	return DailySchedule{Hour: hour, Minute: minute}, nil
}

func (d DailySchedule) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Next returns the first occurrence strictly after now.
func (d DailySchedule) Next(now time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

// Run calls fire at every occurrence until ctx is done.
func (d DailySchedule) Run(ctx context.Context, fire func()) error {
	for {
		wait := time.Until(d.Next(time.Now()))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			fire()
		}
	}
}
