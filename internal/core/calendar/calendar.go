// Package calendar models the factory work calendar and computes how much
// scheduled working time falls inside an interval.
//
// All instants are wall-clock values. No timezone conversion happens here:
// callers normalise with Wall before handing instants in.
package calendar

import (
	"fmt"
	"time"
)

// Layouts used when calendar values cross a text boundary.
const (
	DateLayout    = "2006-01-02"
	InstantLayout = "2006-01-02 15:04:05"
)

// Clock is a time of day, precise to the second.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time of day %q (want HH:MM or HH:MM:SS)", s)
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as HH:MM:SS.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// On anchors the clock to the calendar date of d.
func (c Clock) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, d.Location())
}

// Day is one row of the work calendar. Bounds are optional; a segment only
// counts when both of its bounds are set.
type Day struct {
	Date          time.Time
	IsOpen        bool
	IsHoliday     bool
	ShiftStart    *Clock
	ShiftEnd      *Clock
	OvertimeStart *Clock
	OvertimeEnd   *Clock
	BreakStart    *Clock
	BreakEnd      *Clock
}

// Worked reports whether the day contributes working time at all.
func (d Day) Worked() bool {
	return d.IsOpen && !d.IsHoliday
}

// Segment is a half-open interval [Start, End).
type Segment struct {
	Start time.Time
	End   time.Time
}

// Overlap returns the length of the intersection of a and b, never negative.
func Overlap(a, b Segment) time.Duration {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// WorkSegments returns the regular and overtime shifts that are fully bounded.
func (d Day) WorkSegments() []Segment {
	var segs []Segment
	if seg, ok := d.segment(d.ShiftStart, d.ShiftEnd); ok {
		segs = append(segs, seg)
	}
	if seg, ok := d.segment(d.OvertimeStart, d.OvertimeEnd); ok {
		segs = append(segs, seg)
	}
	return segs
}

// BreakSegment returns the unpaid break, if bounded.
func (d Day) BreakSegment() (Segment, bool) {
	return d.segment(d.BreakStart, d.BreakEnd)
}

func (d Day) segment(start, end *Clock) (Segment, bool) {
	if start == nil || end == nil {
		return Segment{}, false
	}
	return Segment{Start: start.On(d.Date), End: end.On(d.Date)}, true
}

// WorkedWithin returns the working time of this day that falls inside span,
// with the break subtracted. The break is only subtracted for the part of
// it that overlaps the span; the result is floored at zero.
func (d Day) WorkedWithin(span Segment) time.Duration {
	if !d.Worked() {
		return 0
	}
	var worked time.Duration
	for _, seg := range d.WorkSegments() {
		worked += Overlap(seg, span)
	}
	if brk, ok := d.BreakSegment(); ok {
		worked -= Overlap(brk, span)
	}
	if worked < 0 {
		return 0
	}
	return worked
}

// ComputeDuration sums the scheduled working time between start and end over
// the given calendar rows, in whole seconds (fractions are truncated).
// Days outside [start, end] contribute nothing because their segments do not
// overlap the interval.
func ComputeDuration(days []Day, start, end time.Time) int64 {
	start, end = Wall(start), Wall(end)
	if !end.After(start) {
		return 0
	}
	span := Segment{Start: start, End: end}

	var total time.Duration
	for _, d := range days {
		d.Date = Wall(d.Date)
		total += d.WorkedWithin(span)
	}
	return int64(total / time.Second)
}

// Naive is the fallback duration: plain elapsed seconds, never negative.
func Naive(start, end time.Time) int64 {
	start, end = Wall(start), Wall(end)
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// LastWorkingInstant returns the close instant used when an operator is
// reported absent on date: the end of the last shift of the day before.
// Overtime end wins over the regular shift end. When prior is nil or carries
// no end bound, dayEnd on the prior date is used.
func LastWorkingInstant(prior *Day, date time.Time, dayEnd Clock) time.Time {
	previous := DateOf(date).AddDate(0, 0, -1)
	if prior != nil {
		if prior.OvertimeStart != nil && prior.OvertimeEnd != nil {
			return prior.OvertimeEnd.On(previous)
		}
		if prior.ShiftEnd != nil {
			return prior.ShiftEnd.On(previous)
		}
	}
	return dayEnd.On(previous)
}

// Wall drops the location of t while keeping its wall-clock fields.
func Wall(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// DateOf truncates t to midnight of its wall-clock date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}
