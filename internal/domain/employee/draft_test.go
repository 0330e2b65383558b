package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft_AllEmpty(t *testing.T) {
	d := NewDraft()
	for _, f := range Fields() {
		assert.Equal(t, "", d.Text(f.Name), f.Name)
	}
	assert.Len(t, d.Missing(), 7)
}

func TestDraft_WithMutatesOneKey(t *testing.T) {
	d := NewDraft()
	next, err := d.With(FieldEmpCode, Value{Text: "A123"})
	require.NoError(t, err)

	assert.Equal(t, "", d.Text(FieldEmpCode), "original draft is untouched")
	assert.Equal(t, "A123", next.Text(FieldEmpCode))

	before := d.Snapshot()
	after := next.Snapshot()
	delete(before, FieldEmpCode)
	delete(after, FieldEmpCode)
	assert.Equal(t, before, after)
}

func TestDraft_WithUnknownField(t *testing.T) {
	_, err := NewDraft().With("salary", Value{Text: "1"})
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestDraft_ClearedResetsFiles(t *testing.T) {
	d, err := NewDraft().With(FieldPhoto, Value{Text: "A1.png", File: &FileHandle{DisplayName: "A1.png", PreviewID: "p1"}})
	require.NoError(t, err)
	d, err = d.With("remarks", Value{Text: "hello"})
	require.NoError(t, err)
	require.Len(t, d.Files(), 1)

	c := d.Cleared()
	for _, f := range Fields() {
		assert.Equal(t, "", c.Text(f.Name))
		assert.Nil(t, c.Get(f.Name).File)
	}
	assert.Empty(t, c.Files())
}

func TestDraft_MissingTrimsWhitespace(t *testing.T) {
	d, err := NewDraft().With(FieldEmpCode, Value{Text: "   "})
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range d.Missing() {
		names[f.Name] = true
	}
	assert.True(t, names[FieldEmpCode])
}
