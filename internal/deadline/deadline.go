// Package deadline classifies study deadlines by how soon they fall due and
// enforces the bounds a new deadline must satisfy.
//
// Deadlines are calendar dates with no time component, so all arithmetic is
// done in whole days on civil.Date values.
package deadline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Urgency is the display classification of a deadline.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyOverdue  Urgency = "overdue"
	UrgencyToday    Urgency = "today"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyNormal   Urgency = "normal"
)

// Classification thresholds, in days remaining (inclusive).
const (
	UrgentWithinDays   = 7
	UpcomingWithinDays = 30
)

// MaxAheadDays is the furthest a deadline may be set, counted in calendar
// days from today. 366 keeps "one year" valid across leap years without
// depending on month/day rollover rules.
const MaxAheadDays = 366

// DateLayout is the textual form of a deadline.
const DateLayout = "2006-01-02"

var (
	// ErrInPast is returned when a deadline is earlier than today.
	ErrInPast = errors.New("deadline cannot be in the past")

	// ErrTooFar is returned when a deadline is more than MaxAheadDays ahead.
	ErrTooFar = errors.New("deadline cannot be more than one year ahead")

	// ErrInvalidDate is returned for unparseable or impossible dates.
	ErrInvalidDate = errors.New("invalid date")
)

// Today returns the calendar date of now in now's location.
func Today(now time.Time) civil.Date {
	return civil.DateOf(now)
}

// DaysRemaining returns the whole calendar days from today until d.
// It is negative when d has passed.
func DaysRemaining(d, today civil.Date) int {
	return d.DaysSince(today)
}

// Classify maps a deadline to its urgency relative to today.
func Classify(d *civil.Date, today civil.Date) Urgency {
	if d == nil {
		return UrgencyNone
	}
	return ClassifyDays(DaysRemaining(*d, today))
}

// ClassifyDays maps a day count to its urgency.
func ClassifyDays(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyToday
	case days <= UrgentWithinDays:
		return UrgencyUrgent
	case days <= UpcomingWithinDays:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}

// NeedsAttention reports whether u warrants a reminder.
func (u Urgency) NeedsAttention() bool {
	return u == UrgencyOverdue || u == UrgencyToday || u == UrgencyUrgent
}

// Describe renders a short phrase for a deadline with the given days remaining.
func Describe(days int) string {
	switch u := ClassifyDays(days); u {
	case UrgencyOverdue:
		return fmt.Sprintf("overdue by %s", plural(-days))
	case UrgencyToday:
		return "due today"
	default:
		return fmt.Sprintf("%s left", plural(days))
	}
}

func plural(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// Latest returns the last date Validate accepts for the given today.
func Latest(today civil.Date) civil.Date {
	return today.AddDays(MaxAheadDays)
}

// Validate checks that d lies within [today, today+MaxAheadDays].
// The returned error names the violated bound.
func Validate(d, today civil.Date) error {
	if !d.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidDate, d)
	}
	if d.Before(today) {
		return fmt.Errorf("%w: %s is before %s", ErrInPast, d, today)
	}
	if latest := Latest(today); d.After(latest) {
		return fmt.Errorf("%w: %s is after %s", ErrTooFar, d, latest)
	}
	return nil
}

// Parse reads a YYYY-MM-DD date. Empty input and "none" return nil, which
// means "no deadline".
func Parse(s string) (*civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q, use YYYY-MM-DD", ErrInvalidDate, s)
	}
	return &d, nil
}
