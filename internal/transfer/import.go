package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"github.com/nhle/techtracker/internal/model"
)

var (
	// ErrFormat is returned when the input is neither a backup envelope nor
	// a JSON array of technologies.
	ErrFormat = errors.New("unrecognized backup format")

	// ErrNothingImported is returned when every record was rejected.
	ErrNothingImported = errors.New("no valid technologies in backup")
)

// record is the on-disk shape of one technology. Validation happens here so
// that nothing malformed reaches the tracker.
type record struct {
	ID          int64      `json:"id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"notblank"`
	Description string     `json:"description" validate:"notblank"`
	Status      string     `json:"status" validate:"required,oneof=not-started in-progress completed"`
	Notes       string     `json:"notes"`
	Deadline    string     `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Category    string     `json:"category" validate:"omitempty,oneof=frontend backend database devops mobile ai-ml tools other"`
	Difficulty  string     `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Tags        []string   `json:"tags"`
	Resources   []string   `json:"resources"`
	CreatedAt   *time.Time `json:"createdAt"`
}

type envelope struct {
	Technologies *[]json.RawMessage `json:"technologies"`
}

// Rejection describes one record left out of an import.
type Rejection struct {
	Index  int
	ID     int64
	Reason string
}

// ImportResult is the outcome of decoding a backup.
type ImportResult struct {
	Technologies []model.Technology
	Rejected     []Rejection
}

// Importer decodes and validates backup files.
type Importer struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewImporter creates an Importer. Records without createdAt get now().
func NewImporter(now func() time.Time) *Importer {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Importer{validate: v, now: now}
}

// Decode reads either the export envelope or a bare array of technologies.
// Invalid records and repeated ids are rejected individually; the rest are
// returned in input order.
func (im *Importer) Decode(r io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	data = bytes.TrimSpace(data)

	var raw []json.RawMessage
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	case data[0] == '[':
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
	case data[0] == '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if env.Technologies == nil {
			return nil, fmt.Errorf("%w: missing technologies array", ErrFormat)
		}
		raw = *env.Technologies
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrFormat)
	}

	res := &ImportResult{Technologies: make([]model.Technology, 0, len(raw))}
	seen := make(map[int64]bool, len(raw))
	now := im.now()

	for i, msg := range raw {
		var rec record
		if err := json.Unmarshal(msg, &rec); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		if err := im.validate.Struct(rec); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, ID: rec.ID, Reason: describe(err)})
			continue
		}
		if seen[rec.ID] {
			res.Rejected = append(res.Rejected, Rejection{
				Index: i, ID: rec.ID, Reason: fmt.Sprintf("duplicate id %d", rec.ID),
			})
			continue
		}
		seen[rec.ID] = true

		tech, err := rec.technology(now)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: i, ID: rec.ID, Reason: err.Error()})
			continue
		}
		res.Technologies = append(res.Technologies, tech)
	}

	return res, nil
}

func (rec record) technology(now time.Time) (model.Technology, error) {
	t := model.Technology{
		ID:          rec.ID,
		Title:       strings.TrimSpace(rec.Title),
		Description: strings.TrimSpace(rec.Description),
		Status:      model.Status(rec.Status),
		Notes:       rec.Notes,
		Category:    model.Category(rec.Category),
		Difficulty:  model.Difficulty(rec.Difficulty),
		Tags:        model.NormalizeTags(rec.Tags),
		Resources:   model.NormalizeResources(rec.Resources),
		CreatedAt:   now,
	}
	if rec.CreatedAt != nil {
		t.CreatedAt = *rec.CreatedAt
	}
	if rec.Deadline != "" {
		d, err := civil.ParseDate(rec.Deadline)
		if err != nil {
			return model.Technology{}, fmt.Errorf("deadline: %w", err)
		}
		t.Deadline = &d
	}
	return t, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a YYYY-MM-DD date", e.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be positive", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Replacer swaps a whole collection.
type Replacer interface {
	Replace(ctx context.Context, items []model.Technology) error
}

// Import decodes r and replaces dst's collection with the valid records.
// dst is left untouched when the input cannot be read or every record was
// rejected. A storage warning from dst is returned together with the result.
func (im *Importer) Import(ctx context.Context, dst Replacer, r io.Reader) (*ImportResult, error) {
	res, err := im.Decode(r)
	if err != nil {
		return nil, err
	}
	if len(res.Technologies) == 0 && len(res.Rejected) > 0 {
		return res, fmt.Errorf("%w: %d rejected", ErrNothingImported, len(res.Rejected))
	}
	if err := dst.Replace(ctx, res.Technologies); err != nil {
		return res, fmt.Errorf("replacing collection: %w", err)
	}
	return res, nil
}

// ImportFile is Import reading from the file at path.
func (im *Importer) ImportFile(ctx context.Context, dst Replacer, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, dst, f)
}
