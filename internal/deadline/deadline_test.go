package deadline

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

var today = civil.Date{Year: 2026, Month: time.March, Day: 10}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want Urgency
	}{
		{-30, UrgencyOverdue},
		{-1, UrgencyOverdue},
		{0, UrgencyToday},
		{1, UrgencyUrgent},
		{7, UrgencyUrgent},
		{8, UrgencyUpcoming},
		{30, UrgencyUpcoming},
		{31, UrgencyNormal},
		{365, UrgencyNormal},
	}

	for _, tc := range cases {
		d := today.AddDays(tc.days)
		if got := Classify(&d, today); got != tc.want {
			t.Errorf("Classify(today%+d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestClassifyNone(t *testing.T) {
	if got := Classify(nil, today); got != UrgencyNone {
		t.Fatalf("Classify(nil) = %q, want %q", got, UrgencyNone)
	}
}

func TestDaysRemainingAcrossMonthAndLeapDay(t *testing.T) {
	from := civil.Date{Year: 2028, Month: time.February, Day: 28}
	to := civil.Date{Year: 2028, Month: time.March, Day: 1}
	if got := DaysRemaining(to, from); got != 2 {
		t.Fatalf("DaysRemaining across leap day = %d, want 2", got)
	}
	if got := DaysRemaining(from, to); got != -2 {
		t.Fatalf("DaysRemaining backwards = %d, want -2", got)
	}
}

func TestTodayIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)
	early := time.Date(2026, time.March, 10, 0, 0, 1, 0, time.UTC)
	if Today(late) != Today(early) {
		t.Fatalf("Today differs within one calendar day: %s vs %s", Today(late), Today(early))
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		date    civil.Date
		wantErr error
	}{
		{"today", today, nil},
		{"tomorrow", today.AddDays(1), nil},
		{"last allowed day", today.AddDays(MaxAheadDays), nil},
		{"yesterday", today.AddDays(-1), ErrInPast},
		{"one day too far", today.AddDays(MaxAheadDays + 1), ErrTooFar},
		{"impossible date", civil.Date{Year: 2026, Month: time.February, Day: 30}, ErrInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.date, today)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate(%s) returned %v", tc.date, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate(%s) = %v, want %v", tc.date, err, tc.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse(" 2026-04-01 ")
	if err != nil {
		t.Fatalf("Parse returned %v", err)
	}
	if d == nil || *d != (civil.Date{Year: 2026, Month: time.April, Day: 1}) {
		t.Fatalf("Parse = %v", d)
	}

	for _, empty := range []string{"", "  ", "none", "NONE"} {
		d, err := Parse(empty)
		if err != nil || d != nil {
			t.Fatalf("Parse(%q) = %v, %v; want nil, nil", empty, d, err)
		}
	}

	if _, err := Parse("01/04/2026"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("Parse(bad) = %v, want ErrInvalidDate", err)
	}
}

func TestDescribe(t *testing.T) {
	cases := map[int]string{
		-3: "overdue by 3 days",
		-1: "overdue by 1 day",
		0:  "due today",
		1:  "1 day left",
		12: "12 days left",
	}
	for days, want := range cases {
		if got := Describe(days); got != want {
			t.Errorf("Describe(%d) = %q, want %q", days, got, want)
		}
	}
}
