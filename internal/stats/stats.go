// Package stats aggregates a technology collection into counts and
// progress percentages. Every report is recomputed from the snapshot it is
// given; nothing is cached between calls.
package stats

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
)

// Counts holds per-status totals and the derived completion percentage.
type Counts struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	NotStarted int `json:"notStarted"`
	Percent    int `json:"percent"`
}

func (c *Counts) add(s model.Status) {
	c.Total++
	switch s {
	case model.StatusCompleted:
		c.Completed++
	case model.StatusInProgress:
		c.InProgress++
	case model.StatusNotStarted:
		c.NotStarted++
	}
}

func (c *Counts) finish() {
	c.Percent = Percent(c.Completed, c.Total)
}

// CategoryBreakdown is the Counts for one category.
type CategoryBreakdown struct {
	Category model.Category `json:"category"`
	Counts
}

// TagCount is the number of technologies carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Report is the full statistics view of a collection.
type Report struct {
	Counts
	Categories []CategoryBreakdown `json:"categories"`
	Tags       []TagCount          `json:"tags,omitempty"`
}

// Percent returns round(100*part/total) with halves rounded up, and 0 when
// total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// Compute builds a Report from items.
//
// Technologies without a category are counted under "other". Categories are
// ordered by descending total and then by name; tags the same way by count.
func Compute(items []model.Technology) Report {
	var r Report
	byCategory := make(map[model.Category]*CategoryBreakdown)
	tagCounts := make(map[string]*TagCount)

	for _, t := range items {
		r.add(t.Status)

		cat := t.CategoryOrOther()
		b, ok := byCategory[cat]
		if !ok {
			b = &CategoryBreakdown{Category: cat}
			byCategory[cat] = b
		}
		b.add(t.Status)

		for _, tag := range model.NormalizeTags(t.Tags) {
			k := strings.ToLower(tag)
			tc, ok := tagCounts[k]
			if !ok {
				tc = &TagCount{Tag: tag}
				tagCounts[k] = tc
			}
			tc.Count++
		}
	}
	r.finish()

	r.Categories = make([]CategoryBreakdown, 0, len(byCategory))
	for _, b := range byCategory {
		b.finish()
		r.Categories = append(r.Categories, *b)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		a, b := r.Categories[i], r.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})

	for _, tc := range tagCounts {
		r.Tags = append(r.Tags, *tc)
	}
	sort.Slice(r.Tags, func(i, j int) bool {
		a, b := r.Tags[i], r.Tags[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return strings.ToLower(a.Tag) < strings.ToLower(b.Tag)
	})

	return r
}

// Deadlines counts unfinished technologies per urgency class as of today.
// Completed technologies are left out since their deadlines no longer matter.
func Deadlines(items []model.Technology, today civil.Date) map[deadline.Urgency]int {
	out := make(map[deadline.Urgency]int)
	for _, t := range items {
		if t.IsCompleted() {
			continue
		}
		out[deadline.Classify(t.Deadline, today)]++
	}
	return out
}
