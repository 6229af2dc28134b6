package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule fires at a fixed period, anchored to the previous firing
// time. The deadline sweep uses this; calendar-based jobs use CronExpression.
type IntervalSchedule struct {
	every time.Duration
}

// NewIntervalSchedule returns a schedule that fires every `every`.
func NewIntervalSchedule(every time.Duration) IntervalSchedule {
	return IntervalSchedule{every: every}
}

// Next returns the firing time one period after t.
func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.every)
}

func (s IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.every)
}
