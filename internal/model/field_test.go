package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldsValid(t *testing.T) {
	fields := DefaultFields()
	require.NotEmpty(t, fields)

	seen := make(map[string]bool)
	for _, f := range fields {
		assert.NotEmpty(t, f.Name)
		assert.True(t, f.Type.Valid(), "field %s", f.Name)
		assert.False(t, seen[f.Name], "duplicate field %s", f.Name)
		seen[f.Name] = true
	}
}

func TestFieldTypeValid(t *testing.T) {
	assert.True(t, TypeString.Valid())
	assert.True(t, TypeNumber.Valid())
	assert.True(t, TypeBoolean.Valid())
	assert.True(t, TypeArray.Valid())
	assert.False(t, FieldType("object").Valid())
	assert.False(t, FieldType("").Valid())
}

func TestLoadFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fields:
  - name: companyName
    display_name: Company Name
    type: string
    required: true
  - name: investors
    display_name: Investors
    type: array
`), 0o644))

	fields, err := LoadFields(path)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "companyName", fields[0].Name)
	assert.True(t, fields[0].Required)
	assert.Equal(t, TypeArray, fields[1].Type)
}

func TestLoadFieldsRejectsBadType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fields:
  - name: companyName
    type: object
`), 0o644))

	_, err := LoadFields(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestLoadFieldsRejectsEmptyName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fields:
  - display_name: Nameless
    type: string
`), 0o644))

	_, err := LoadFields(path)
	require.Error(t, err)
}

func TestLoadFieldsMissingFile(t *testing.T) {
	_, err := LoadFields("/nonexistent/fields.yaml")
	require.Error(t, err)
}

func TestFieldIndexByName(t *testing.T) {
	idx := NewFieldIndex(DefaultFields())

	f := idx.ByName("companyName")
	require.NotNil(t, f)
	assert.Equal(t, "Company Name", f.DisplayName)

	assert.Nil(t, idx.ByName("noSuchField"))
}
