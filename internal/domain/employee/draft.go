package employee

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownField = errors.New("unknown employee field")

// FileHandle is a file selected into the draft. Only the metadata lives here;
// the bytes are held by the preview store under PreviewID.
type FileHandle struct {
	DisplayName  string
	OriginalName string
	ContentType  string
	Size         int64
	PreviewID    string
	PreviewURL   string
}

// Value is the current value of one field. File fields carry the synthesized
// display name in Text alongside the handle.
type Value struct {
	Text string
	File *FileHandle
}

// Blank reports whether the value is empty after trimming.
func (v Value) Blank() bool {
	return strings.TrimSpace(v.Text) == "" && v.File == nil
}

// Draft is the unpersisted employee record. It is a value: every mutation
// returns a new Draft and leaves the receiver untouched.
type Draft struct {
	values map[string]Value
}

// NewDraft returns a draft with every registered field empty.
func NewDraft() Draft {
	values := make(map[string]Value, len(registry))
	for _, f := range registry {
		values[f.Name] = Value{}
	}
	return Draft{values: values}
}

// Get returns the value of name; unknown names read as empty.
func (d Draft) Get(name string) Value {
	return d.values[name]
}

// Text is shorthand for Get(name).Text.
func (d Draft) Text(name string) string {
	return d.values[name].Text
}

// With returns a copy of d with exactly one key replaced.
func (d Draft) With(name string, v Value) (Draft, error) {
	if _, ok := registryIndex[name]; !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	next := make(map[string]Value, len(d.values)+1)
	for k, old := range d.values {
		next[k] = old
	}
	next[name] = v
	return Draft{values: next}, nil
}

// Cleared returns a draft with every key reset to "", file handles included.
func (d Draft) Cleared() Draft {
	return NewDraft()
}

// Files returns the live file handles keyed by field name.
func (d Draft) Files() map[string]FileHandle {
	out := map[string]FileHandle{}
	for k, v := range d.values {
		if v.File != nil {
			out[k] = *v.File
		}
	}
	return out
}

// Missing returns the required fields that are blank, in registry order.
func (d Draft) Missing() []Field {
	var out []Field
	for _, f := range registry {
		if f.Required && d.values[f.Name].Blank() {
			out = append(out, f.clone())
		}
	}
	return out
}

// Snapshot returns the text value of every field.
func (d Draft) Snapshot() map[string]string {
	out := make(map[string]string, len(d.values))
	for k, v := range d.values {
		out[k] = v.Text
	}
	return out
}
