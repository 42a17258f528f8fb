// Package tracker owns the technology collection and every operation that
// mutates it. Each mutation writes the full collection back to a BlobStore as
// one JSON snapshot.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/stats"
)

// DefaultKey is the blob key the collection is stored under.
const DefaultKey = "techTrackerData"

// QuarantineSuffix is appended to the collection key to form the key that
// receives records rejected while loading.
const QuarantineSuffix = ".quarantine"

// BlobStore persists opaque snapshots by key.
type BlobStore interface {
	// Load returns the blob stored under key. found is false when the key
	// has never been written.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// NewTechnology is the input to Add. Only Title and Description are
// required; Status defaults to not-started.
type NewTechnology struct {
	Title       string
	Description string
	Status      model.Status
	Notes       string
	Deadline    *civil.Date
	Category    model.Category
	Difficulty  model.Difficulty
	Tags        []string
	Resources   []string
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Status   model.Status
	Category model.Category
	Tag      string

	// Query matches title, description and tags, ignoring case.
	Query string
}

func (f Filter) matches(t model.Technology) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.CategoryOrOther() != f.Category {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// LoadReport describes what New found in storage.
type LoadReport struct {
	Loaded      int
	Quarantined int
	Seeded      bool
}

// Tracker is the technology store. It is safe for concurrent use; mutations
// are serialized together with their snapshot write.
type Tracker struct {
	mu sync.Mutex

	blobs    BlobStore
	key      string
	items    []model.Technology
	lastID   int64
	autoSave bool
	dirty    bool
	seed     bool
	report   LoadReport

	now    func() time.Time
	rng    *rand.Rand
	logger *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithRand sets the random source used by PickRandomUnstarted.
func WithRand(r *rand.Rand) Option {
	return func(t *Tracker) { t.rng = r }
}

// WithAutoSave controls whether every mutation writes a snapshot. When off,
// mutations only mark the tracker dirty and Flush writes.
func WithAutoSave(on bool) Option {
	return func(t *Tracker) { t.autoSave = on }
}

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(t *Tracker) { t.key = key }
}

// WithSeed adds the starter technologies when storage holds no collection yet.
func WithSeed() Option {
	return func(t *Tracker) { t.seed = true }
}

// New creates a Tracker and loads the collection from blobs.
//
// Stored records that fail validation are skipped and copied to the
// quarantine key instead of failing the load.
func New(ctx context.Context, blobs BlobStore, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		blobs:    blobs,
		key:      DefaultKey,
		autoSave: true,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		seed := uint64(t.now().UnixNano())
		t.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	if err := t.load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) load(ctx context.Context) error {
	data, found, err := t.blobs.Load(ctx, t.key)
	if err != nil {
		return &StorageError{Op: "loading technologies", Err: err}
	}

	if !found {
		if t.seed {
			t.items = seedTechnologies(t.now())
			t.lastID = maxID(t.items)
			t.report.Seeded = true
			t.logger.Info("seeded starter technologies", zap.Int("count", len(t.items)))
			if err := t.persist(ctx); err != nil {
				t.logger.Warn("saving seeded technologies", zap.Error(err))
			}
		}
		t.report.Loaded = len(t.items)
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.logger.Error("stored collection is not a JSON array, quarantining it",
			zap.String("key", t.key), zap.Error(err))
		t.quarantine(ctx, data)
		t.report.Quarantined = 1
		return nil
	}

	seen := make(map[int64]bool, len(raw))
	var rejected []json.RawMessage
	for i, rec := range raw {
		var tech model.Technology
		if err := json.Unmarshal(rec, &tech); err != nil {
			t.logger.Warn("skipping unreadable record", zap.Int("index", i), zap.Error(err))
			rejected = append(rejected, rec)
			continue
		}
		if err := checkStored(tech, seen); err != nil {
			t.logger.Warn("skipping invalid record",
				zap.Int("index", i), zap.Int64("id", tech.ID), zap.Error(err))
			rejected = append(rejected, rec)
			continue
		}
		seen[tech.ID] = true
		tech.Tags = model.NormalizeTags(tech.Tags)
		tech.Resources = model.NormalizeResources(tech.Resources)
		t.items = append(t.items, tech)
	}

	if len(rejected) > 0 {
		blob, err := json.Marshal(rejected)
		if err == nil {
			t.quarantine(ctx, blob)
		}
	}

	t.lastID = maxID(t.items)
	t.report.Loaded = len(t.items)
	t.report.Quarantined = len(rejected)
	t.logger.Debug("loaded technologies",
		zap.Int("loaded", t.report.Loaded), zap.Int("quarantined", t.report.Quarantined))
	return nil
}

func (t *Tracker) quarantine(ctx context.Context, blob []byte) {
	key := t.key + QuarantineSuffix
	if err := t.blobs.Save(ctx, key, blob); err != nil {
		t.logger.Warn("saving quarantined records", zap.String("key", key), zap.Error(err))
	}
}

// checkStored validates a record read from storage or handed to Replace.
func checkStored(tech model.Technology, seen map[int64]bool) error {
	switch {
	case tech.ID == 0:
		return invalid("id", "must be set")
	case seen[tech.ID]:
		return invalid("id", fmt.Sprintf("duplicate id %d", tech.ID))
	case strings.TrimSpace(tech.Title) == "":
		return invalid("title", "must not be empty")
	case strings.TrimSpace(tech.Description) == "":
		return invalid("description", "must not be empty")
	case !tech.Status.IsValid():
		return invalid("status", fmt.Sprintf("unknown status %q", tech.Status))
	case !tech.Category.IsValid():
		return invalid("category", fmt.Sprintf("unknown category %q", tech.Category))
	case !tech.Difficulty.IsValid():
		return invalid("difficulty", fmt.Sprintf("unknown difficulty %q", tech.Difficulty))
	case tech.Deadline != nil && !tech.Deadline.IsValid():
		return invalid("deadline", fmt.Sprintf("impossible date %s", tech.Deadline))
	}
	return nil
}

func maxID(items []model.Technology) int64 {
	var m int64
	for _, it := range items {
		if it.ID > m {
			m = it.ID
		}
	}
	return m
}

// LoadReport returns what the initial load found.
func (t *Tracker) LoadReport() LoadReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}

// persist writes the snapshot, or marks the tracker dirty when autosave is
// off. Callers hold t.mu.
func (t *Tracker) persist(ctx context.Context) error {
	if !t.autoSave {
		t.dirty = true
		return nil
	}
	return t.write(ctx)
}

func (t *Tracker) write(ctx context.Context) error {
	items := t.items
	if items == nil {
		items = []model.Technology{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return &StorageError{Op: "encoding technologies", Err: err}
	}
	if err := t.blobs.Save(ctx, t.key, data); err != nil {
		t.dirty = true
		t.logger.Warn("technologies not persisted",
			zap.String("key", t.key), zap.Int("count", len(t.items)), zap.Error(err))
		return &StorageError{Op: "saving technologies", Err: err}
	}
	t.dirty = false
	return nil
}

// Flush writes the snapshot if there are unsaved changes.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	return t.write(ctx)
}

// Dirty reports whether there are changes not yet written.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// SetAutoSave toggles autosave at runtime. Turning it on flushes pending
// changes.
func (t *Tracker) SetAutoSave(ctx context.Context, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.autoSave = on
	if on && t.dirty {
		return t.write(ctx)
	}
	return nil
}

func (t *Tracker) today() civil.Date {
	return deadline.Today(t.now())
}

func (t *Tracker) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id
	return id
}

func (t *Tracker) indexOf(id int64) int {
	for i := range t.items {
		if t.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add validates in and appends a new technology to the collection.
func (t *Tracker) Add(ctx context.Context, in NewTechnology) (model.Technology, error) {
	title := strings.TrimSpace(in.Title)
	desc := strings.TrimSpace(in.Description)
	if title == "" {
		return model.Technology{}, invalid("title", "must not be empty")
	}
	if desc == "" {
		return model.Technology{}, invalid("description", "must not be empty")
	}

	status := in.Status
	if status == "" {
		status = model.StatusNotStarted
	}
	if !status.IsValid() {
		return model.Technology{}, invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	if !in.Category.IsValid() {
		return model.Technology{}, invalid("category", fmt.Sprintf("unknown category %q", in.Category))
	}
	if !in.Difficulty.IsValid() {
		return model.Technology{}, invalid("difficulty", fmt.Sprintf("unknown difficulty %q", in.Difficulty))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if in.Deadline != nil {
		if err := deadline.Validate(*in.Deadline, deadline.Today(now)); err != nil {
			return model.Technology{}, &ValidationError{Field: "deadline", Err: err}
		}
	}

	tech := model.Technology{
		ID:          t.nextID(now),
		Title:       title,
		Description: desc,
		Status:      status,
		Notes:       in.Notes,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Tags:        model.NormalizeTags(in.Tags),
		Resources:   model.NormalizeResources(in.Resources),
		CreatedAt:   now,
	}
	if in.Deadline != nil {
		d := *in.Deadline
		tech.Deadline = &d
	}

	t.items = append(t.items, tech)
	t.logger.Debug("added technology", zap.Int64("id", tech.ID), zap.String("title", tech.Title))
	return tech.Clone(), t.persist(ctx)
}

// update applies fn to the technology with id and persists. fn may return
// an error to abort without changes.
func (t *Tracker) update(ctx context.Context, id int64, fn func(*model.Technology) error) (model.Technology, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return model.Technology{}, fmt.Errorf("technology %d: %w", id, ErrNotFound)
	}

	next := t.items[i].Clone()
	if err := fn(&next); err != nil {
		return model.Technology{}, err
	}
	t.items[i] = next
	return next.Clone(), t.persist(ctx)
}

// AdvanceStatus moves a technology to the next status in the cycle
// not-started, in-progress, completed, not-started.
func (t *Tracker) AdvanceStatus(ctx context.Context, id int64) (model.Technology, error) {
	return t.update(ctx, id, func(tech *model.Technology) error {
		tech.Status = tech.Status.Next()
		return nil
	})
}

// SetStatus assigns status to one technology.
func (t *Tracker) SetStatus(ctx context.Context, id int64, status model.Status) (model.Technology, error) {
	if !status.IsValid() {
		return model.Technology{}, invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	return t.update(ctx, id, func(tech *model.Technology) error {
		tech.Status = status
		return nil
	})
}

// SetNotes overwrites the notes of a technology. Empty text clears them.
func (t *Tracker) SetNotes(ctx context.Context, id int64, text string) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		tech.Notes = text
		return nil
	})
	return err
}

// SetDeadline sets the deadline of a technology. d must fall between today
// and deadline.MaxAheadDays days ahead, inclusive.
func (t *Tracker) SetDeadline(ctx context.Context, id int64, d civil.Date) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		if err := deadline.Validate(d, t.today()); err != nil {
			return &ValidationError{Field: "deadline", Err: err}
		}
		tech.Deadline = &d
		return nil
	})
	return err
}

// ClearDeadline removes the deadline of a technology.
func (t *Tracker) ClearDeadline(ctx context.Context, id int64) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		tech.Deadline = nil
		return nil
	})
	return err
}

// SetTags replaces the tags of a technology.
func (t *Tracker) SetTags(ctx context.Context, id int64, tags []string) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		tech.Tags = model.NormalizeTags(tags)
		return nil
	})
	return err
}

// SetResources replaces the study resources of a technology.
func (t *Tracker) SetResources(ctx context.Context, id int64, resources []string) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		tech.Resources = model.NormalizeResources(resources)
		return nil
	})
	return err
}

// SetTagsAndResources replaces both lists in one write.
func (t *Tracker) SetTagsAndResources(ctx context.Context, id int64, tags, resources []string) error {
	_, err := t.update(ctx, id, func(tech *model.Technology) error {
		tech.Tags = model.NormalizeTags(tags)
		tech.Resources = model.NormalizeResources(resources)
		return nil
	})
	return err
}

// BulkSetStatus assigns status to every technology whose id is in ids.
// Unknown ids are ignored. It returns the number of technologies matched.
func (t *Tracker) BulkSetStatus(ctx context.Context, ids []int64, status model.Status) (int, error) {
	if !status.IsValid() {
		return 0, invalid("status", fmt.Sprintf("unknown status %q", status))
	}

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.items {
		if want[t.items[i].ID] {
			t.items[i].Status = status
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	t.logger.Debug("bulk status update", zap.Int("count", n), zap.String("status", string(status)))
	return n, t.persist(ctx)
}

// MarkAllCompleted sets every technology to completed.
func (t *Tracker) MarkAllCompleted(ctx context.Context) error {
	return t.setAll(ctx, model.StatusCompleted)
}

// ResetAll sets every technology to not-started.
func (t *Tracker) ResetAll(ctx context.Context) error {
	return t.setAll(ctx, model.StatusNotStarted)
}

func (t *Tracker) setAll(ctx context.Context, status model.Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.items {
		t.items[i].Status = status
	}
	return t.persist(ctx)
}

// Remove deletes a technology.
func (t *Tracker) Remove(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return fmt.Errorf("technology %d: %w", id, ErrNotFound)
	}
	t.items = append(t.items[:i], t.items[i+1:]...)
	t.logger.Debug("removed technology", zap.Int64("id", id))
	return t.persist(ctx)
}

// Replace swaps the whole collection for items, keeping their order and
// ids. Nothing changes if any record is invalid or ids repeat.
func (t *Tracker) Replace(ctx context.Context, items []model.Technology) error {
	next := make([]model.Technology, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for i, tech := range items {
		if err := checkStored(tech, seen); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		seen[tech.ID] = true
		c := tech.Clone()
		c.Tags = model.NormalizeTags(c.Tags)
		c.Resources = model.NormalizeResources(c.Resources)
		next = append(next, c)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = next
	if m := maxID(next); m > t.lastID {
		t.lastID = m
	}
	t.logger.Info("replaced collection", zap.Int("count", len(next)))
	return t.persist(ctx)
}

// Clear removes every technology.
func (t *Tracker) Clear(ctx context.Context) error {
	return t.Replace(ctx, nil)
}

// PickRandomUnstarted returns a uniformly chosen not-started technology.
// ok is false when there is none.
func (t *Tracker) PickRandomUnstarted() (tech model.Technology, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pool []int
	for i := range t.items {
		if t.items[i].Status == model.StatusNotStarted {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		return model.Technology{}, false
	}
	return t.items[pool[t.rng.IntN(len(pool))]].Clone(), true
}

// Get returns the technology with id.
func (t *Tracker) Get(id int64) (model.Technology, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return model.Technology{}, fmt.Errorf("technology %d: %w", id, ErrNotFound)
	}
	return t.items[i].Clone(), nil
}

// Snapshot returns a deep copy of the collection in insertion order.
func (t *Tracker) Snapshot() []model.Technology {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneAll(t.items)
}

// List returns the technologies matching f in insertion order.
func (t *Tracker) List(f Filter) []model.Technology {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Technology
	for _, tech := range t.items {
		if f.matches(tech) {
			out = append(out, tech.Clone())
		}
	}
	return out
}

// Len returns the collection size.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Progress returns the completion percent of the whole collection.
func (t *Tracker) Progress() int {
	return ProgressPercent(t.Snapshot())
}

// ProgressPercent returns round(100*completed/total), halves rounding up,
// and 0 for an empty collection.
func ProgressPercent(items []model.Technology) int {
	completed := 0
	for _, it := range items {
		if it.IsCompleted() {
			completed++
		}
	}
	return stats.Percent(completed, len(items))
}

// ExportSnapshot is the backup envelope written by export.
type ExportSnapshot struct {
	ExportedAt        time.Time          `json:"exportedAt"`
	TotalTechnologies int                `json:"totalTechnologies"`
	Completed         int                `json:"completed"`
	InProgress        int                `json:"inProgress"`
	NotStarted        int                `json:"notStarted"`
	Technologies      []model.Technology `json:"technologies"`
}

// Export captures the collection together with its status counts.
func (t *Tracker) Export() ExportSnapshot {
	items := t.Snapshot()
	if items == nil {
		items = []model.Technology{}
	}
	r := stats.Compute(items)
	return ExportSnapshot{
		ExportedAt:        t.now(),
		TotalTechnologies: r.Total,
		Completed:         r.Completed,
		InProgress:        r.InProgress,
		NotStarted:        r.NotStarted,
		Technologies:      items,
	}
}

func cloneAll(items []model.Technology) []model.Technology {
	if items == nil {
		return nil
	}
	out := make([]model.Technology, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func seedTechnologies(now time.Time) []model.Technology {
	starters := []struct {
		title, desc string
		status      model.Status
	}{
		{"React Components", "Learn the basic building blocks and their lifecycle", model.StatusNotStarted},
		{"JSX Syntax", "Get comfortable with JSX and embedding expressions", model.StatusNotStarted},
		{"State Management", "Work with component state and the useState hook", model.StatusInProgress},
	}
	base := now.UnixMilli()
	out := make([]model.Technology, 0, len(starters))
	for i, s := range starters {
		out = append(out, model.Technology{
			ID:          base + int64(i),
			Title:       s.title,
			Description: s.desc,
			Status:      s.status,
			Category:    model.CategoryFrontend,
			CreatedAt:   now,
		})
	}
	return out
}
