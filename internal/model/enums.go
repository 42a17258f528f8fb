package model

import "strings"

// Status is the learning state of a technology.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// statusCycle is the advance order. It wraps from completed back to
// not-started, so no status is terminal.
var statusCycle = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

// ValidStatuses returns all valid status values in cycle order.
func ValidStatuses() []Status {
	return append([]Status(nil), statusCycle...)
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	for _, valid := range statusCycle {
		if s == valid {
			return true
		}
	}
	return false
}

// Next returns the status that follows s in the cycle.
func (s Status) Next() Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusNotStarted
}

// Label returns a human-readable name for the status.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ParseStatus converts user input into a Status. Underscores and spaces are
// accepted in place of dashes.
func ParseStatus(s string) (Status, bool) {
	st := Status(normalizeEnum(s))
	return st, st.IsValid()
}

// Category groups technologies for the statistics breakdown.
type Category string

const (
	CategoryFrontend Category = "frontend"
	CategoryBackend  Category = "backend"
	CategoryDatabase Category = "database"
	CategoryDevOps   Category = "devops"
	CategoryMobile   Category = "mobile"
	CategoryAIML     Category = "ai-ml"
	CategoryTools    Category = "tools"
	CategoryOther    Category = "other"
)

// ValidCategories returns all recognized categories.
func ValidCategories() []Category {
	return []Category{
		CategoryFrontend, CategoryBackend, CategoryDatabase, CategoryDevOps,
		CategoryMobile, CategoryAIML, CategoryTools, CategoryOther,
	}
}

// IsValid returns true for a recognized category. The empty category is
// valid and means "not set".
func (c Category) IsValid() bool {
	if c == "" {
		return true
	}
	for _, valid := range ValidCategories() {
		if c == valid {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(normalizeEnum(s))
	return c, c.IsValid()
}

// Difficulty is the self-assessed difficulty of a technology.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// ValidDifficulties returns all valid difficulty values, easiest first.
func ValidDifficulties() []Difficulty {
	return []Difficulty{
		DifficultyBeginner, DifficultyIntermediate,
		DifficultyAdvanced, DifficultyExpert,
	}
}

// IsValid returns true for a known difficulty or the empty value.
func (d Difficulty) IsValid() bool {
	if d == "" {
		return true
	}
	for _, valid := range ValidDifficulties() {
		if d == valid {
			return true
		}
	}
	return false
}

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(normalizeEnum(s))
	return d, d.IsValid()
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "-", " ", "-").Replace(s)
}
