package model

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Technology is a single item the user intends to study.
type Technology struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	Notes       string      `json:"notes"`
	Deadline    *civil.Date `json:"deadline,omitempty"`
	Category    Category    `json:"category,omitempty"`
	Difficulty  Difficulty  `json:"difficulty,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Resources   []string    `json:"resources,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// IsCompleted reports whether the technology has been fully studied.
func (t Technology) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// CategoryOrOther returns the category, folding an unset one into "other".
func (t Technology) CategoryOrOther() Category {
	if t.Category == "" {
		return CategoryOther
	}
	return t.Category
}

// HasTag reports whether the technology carries tag, ignoring case.
func (t Technology) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate shared slices or the
// deadline pointer.
func (t Technology) Clone() Technology {
	c := t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Resources != nil {
		c.Resources = append([]string(nil), t.Resources...)
	}
	return c
}

// NormalizeTags trims tags, drops empty ones and removes case-insensitive
// duplicates while keeping the first spelling and input order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		k := strings.ToLower(tag)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, tag)
	}
	return out
}

// NormalizeResources trims resource entries and drops empty ones.
// Order and duplicates are kept.
func NormalizeResources(resources []string) []string {
	var out []string
	for _, r := range resources {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}
