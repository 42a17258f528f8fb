// Package reminder turns approaching and missed deadlines into
// notifications.
package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
)

// Due returns a notification for every unfinished technology whose deadline
// is overdue, due today or urgent as of now. The most pressing come first.
func Due(items []model.Technology, now time.Time) []model.Notification {
	today := deadline.Today(now)

	var out []model.Notification
	for _, t := range items {
		if t.IsCompleted() || t.Deadline == nil {
			continue
		}
		u := deadline.Classify(t.Deadline, today)
		if !u.NeedsAttention() {
			continue
		}
		days := deadline.DaysRemaining(*t.Deadline, today)
		out = append(out, model.Notification{
			ID:            uuid.New().String(),
			TechnologyID:  t.ID,
			Urgency:       string(u),
			DaysRemaining: days,
			Message:       fmt.Sprintf("%s: %s", t.Title, deadline.Describe(days)),
			CreatedAt:     now,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysRemaining < out[j].DaysRemaining
	})
	return out
}
