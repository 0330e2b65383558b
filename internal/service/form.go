package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/visorhr/visorhr-ui/internal/domain/employee"
	"github.com/visorhr/visorhr-ui/internal/ports"
)

// Upload is a file chosen for a file field.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the file input was cleared.
func (u Upload) Empty() bool { return u.Filename == "" && len(u.Data) == 0 }

// OptionView is one entry of a select control.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FieldControl is the render model of one field, dispatched on its kind.
type FieldControl struct {
	Name      string
	Label     string
	Kind      employee.Kind
	Section   string
	Required  bool
	Missing   bool
	MaxLength int
	InputType string
	Value     string

	// Date fields.
	DisplayValue string
	Min          string
	Max          string

	// Select fields.
	Options []OptionView

	// File fields.
	FileName   string
	PreviewURL string
	Accept     string
}

// SectionView groups controls for rendering.
type SectionView struct {
	Name     string
	Controls []FieldControl
}

// FormOptions groups dependencies for NewFormEngine.
type FormOptions struct {
	// Owner identifies the view holding the previews.
	Owner    string
	Previews ports.PreviewStore
	Status   *StatusChannel
	Clock    ports.Clock
	Logger   *slog.Logger
}

// FormEngine edits the employee draft one field at a time. Every live preview handle
// it acquires is released on replacement, Clear or Close.
type FormEngine struct {
	owner    string
	previews ports.PreviewStore
	status   *StatusChannel
	clock    ports.Clock
	store    *Store[employee.Draft]
	logger   *slog.Logger

	// mu orders preview swaps with the draft transitions that publish them.
	mu sync.Mutex
}

// NewFormEngine creates an engine over an empty draft.
func NewFormEngine(opts FormOptions) *FormEngine {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FormEngine{
		owner:    opts.Owner,
		previews: opts.Previews,
		status:   opts.Status,
		clock:    clock,
		store:    NewStore(employee.NewDraft()),
		logger:   logger,
	}
}

// Draft returns the current draft.
func (f *FormEngine) Draft() employee.Draft {
	return f.store.Get()
}

// Subscribe registers fn for every draft change.
func (f *FormEngine) Subscribe(fn func(employee.Draft)) func() {
	return f.store.Subscribe(fn)
}

// Controls renders every field in registry order.
func (f *FormEngine) Controls() []FieldControl {
	draft := f.store.Get()
	latest := employee.LatestBirthDate(f.clock.Now())
	fields := employee.Fields()
	out := make([]FieldControl, 0, len(fields))
	for _, field := range fields {
		out = append(out, buildControl(field, draft.Get(field.Name), latest))
	}
	return out
}

// Control renders a single field.
func (f *FormEngine) Control(name string) (FieldControl, error) {
	field, ok := employee.Lookup(name)
	if !ok {
		return FieldControl{}, fmt.Errorf("%w: %q", employee.ErrUnknownField, name)
	}
	return buildControl(field, f.store.Get().Get(name), employee.LatestBirthDate(f.clock.Now())), nil
}

// Sections renders the controls grouped by section.
func (f *FormEngine) Sections() []SectionView {
	var out []SectionView
	pos := map[string]int{}
	for _, c := range f.Controls() {
		i, ok := pos[c.Section]
		if !ok {
			i = len(out)
			pos[c.Section] = i
			out = append(out, SectionView{Name: c.Section})
		}
		out[i].Controls = append(out[i].Controls, c)
	}
	return out
}

func buildControl(field employee.Field, v employee.Value, latestBirth string) FieldControl {
	c := FieldControl{
		Name:      field.Name,
		Label:     field.Label,
		Kind:      field.Kind,
		Section:   field.Section,
		Required:  field.Required,
		Missing:   field.Required && v.Blank(),
		MaxLength: field.MaxLength,
		Value:     v.Text,
	}
	switch field.Kind {
	case employee.KindText:
		c.InputType = "text"
		if field.Numeric {
			c.InputType = "number"
		}
		if field.Name == "e_mail" {
			c.InputType = "email"
		}
	case employee.KindDate:
		c.InputType = "date"
		c.DisplayValue = employee.FormatDisplayDate(v.Text)
		if field.Name == employee.FieldDateOfBirth {
			c.Min = employee.EarliestBirthDate
			c.Max = latestBirth
		}
	case employee.KindSelect:
		c.Options = make([]OptionView, 0, len(field.Options))
		for _, o := range field.Options {
			c.Options = append(c.Options, OptionView{Value: o, Label: employee.OptionLabel(o), Selected: o == v.Text})
		}
	case employee.KindFile:
		c.InputType = "file"
		c.Accept = "image/*"
		if v.File != nil {
			c.FileName = v.File.DisplayName
			c.PreviewURL = v.File.PreviewURL
		}
	}
	return c
}

// Change sets one text, date or select field from raw input. A rejected edit leaves
// the draft unchanged and reports through the status slot.
func (f *FormEngine) Change(ctx context.Context, name, raw string) error {
	field, ok := employee.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", employee.ErrUnknownField, name)
	}

	var value string
	switch field.Kind {
	case employee.KindText:
		value = truncate(raw, field.MaxLength)
	case employee.KindDate:
		v, err := f.normalizeDate(field, raw)
		if err != nil {
			f.logger.DebugContext(ctx, "date rejected", "field", name, "error", err)
			return err
		}
		value = v
	case employee.KindSelect:
		if !field.HasOption(raw) {
			f.status.Error(fmt.Sprintf("%q is not a valid %s.", raw, field.Label))
			return fmt.Errorf("%s: %w: %q", name, ErrInvalidOption, raw)
		}
		value = raw
	default:
		return fmt.Errorf("%s: %w: file fields take uploads", name, ErrWrongKind)
	}

	_, err := f.store.Apply(func(cur employee.Draft) (employee.Draft, error) {
		return cur.With(name, employee.Value{Text: value})
	})
	return err
}

// normalizeDate resolves raw to ISO and applies the birth-date range against the
// clock at the moment of the edit. An empty value clears the field.
func (f *FormEngine) normalizeDate(field employee.Field, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	iso, err := employee.ParseDate(raw)
	if err != nil {
		f.status.Error(MsgInvalidDate)
		return "", fmt.Errorf("%s: %w", field.Name, err)
	}
	if field.Name == employee.FieldDateOfBirth {
		if err := employee.CheckBirthDate(iso, f.clock.Now()); err != nil {
			f.status.Error(err.Error())
			return "", fmt.Errorf("%s: %w", field.Name, err)
		}
	}
	return iso, nil
}

// ChangeFile puts an upload into a file field. The display name is synthesized from the
// employee code; image uploads get a preview handle and the field's previous handle is
// released. An empty upload clears the field.
func (f *FormEngine) ChangeFile(ctx context.Context, name string, up Upload) error {
	field, ok := employee.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", employee.ErrUnknownField, name)
	}
	if field.Kind != employee.KindFile {
		return fmt.Errorf("%s: %w: not a file field", name, ErrWrongKind)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var next employee.Value
	if !up.Empty() {
		handle := &employee.FileHandle{
			DisplayName:  employee.FileDisplayName(field.Role, f.store.Get().Text(employee.FieldEmpCode), up.Filename),
			OriginalName: up.Filename,
			ContentType:  contentType(up),
			Size:         int64(len(up.Data)),
		}
		if strings.HasPrefix(handle.ContentType, "image/") && f.previews != nil {
			ref, err := f.previews.Acquire(ctx, f.owner, ports.PreviewContent{
				Name:        handle.DisplayName,
				ContentType: handle.ContentType,
				Data:        up.Data,
			})
			if err != nil {
				f.logger.WarnContext(ctx, "preview unavailable", "field", name, "error", err)
			} else {
				handle.PreviewID, handle.PreviewURL = ref.ID, ref.URL
			}
		}
		next = employee.Value{Text: handle.DisplayName, File: handle}
	}

	var previous *employee.FileHandle
	_, err := f.store.Apply(func(cur employee.Draft) (employee.Draft, error) {
		previous = cur.Get(name).File
		return cur.With(name, next)
	})
	if err != nil {
		f.release(next.File)
		return err
	}
	f.release(previous)
	return nil
}

func (f *FormEngine) release(h *employee.FileHandle) {
	if h == nil || h.PreviewID == "" || f.previews == nil {
		return
	}
	f.previews.Release(h.PreviewID)
}

// Submit checks the draft without sending it anywhere. Missing required fields are
// reported through the status slot; the draft is never modified.
func (f *FormEngine) Submit(ctx context.Context) []employee.Field {
	missing := f.store.Get().Missing()
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, m := range missing {
			labels[i] = m.Label
		}
		f.status.Error("Please fill in: " + strings.Join(labels, ", ") + ".")
		return missing
	}
	f.logger.DebugContext(ctx, "employee draft complete", "owner", f.owner)
	f.status.Success(MsgDraftSaved)
	return nil
}

// Clear resets every field to "" and releases every live preview.
func (f *FormEngine) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := f.store.Dispatch(employee.Draft.Cleared)
	f.releaseAll()
	return err
}

// Close stops accepting edits and releases every live preview.
func (f *FormEngine) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store.Close()
	f.releaseAll()
}

func (f *FormEngine) releaseAll() {
	if f.previews != nil {
		f.previews.ReleaseOwner(f.owner)
	}
}

func contentType(up Upload) string {
	if ct := strings.TrimSpace(up.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if len(up.Data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(up.Data)
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
