package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/contact-enrichment/internal/model"
)

func TestBuildFallsBackToString(t *testing.T) {
	s := Build([]model.EnrichmentField{
		{Name: "companyName", Type: model.TypeString},
		{Name: "weird", Type: model.FieldType("object")},
	})
	assert.Equal(t, model.TypeString, s.Fields["weird"])
	assert.False(t, s.Empty())
}

func TestDescribe(t *testing.T) {
	s := Build([]model.EnrichmentField{
		{Name: "yearFounded", Type: model.TypeNumber},
		{Name: "companyName", Type: model.TypeString},
	})
	// Names are sorted for a stable prompt.
	assert.Equal(t, `{"companyName": <string or null>, "yearFounded": <number or null>}`, s.Describe())
}

func TestApplyDropsUndeclaredAndNull(t *testing.T) {
	s := Build([]model.EnrichmentField{
		{Name: "companyName", Type: model.TypeString},
		{Name: "yearFounded", Type: model.TypeNumber},
	})

	out := s.Apply(map[string]any{
		"companyName": "Acme",
		"yearFounded": nil,
		"sneaky":      "value",
	})

	assert.Equal(t, map[string]any{"companyName": "Acme"}, out)
}

func TestCoerceString(t *testing.T) {
	v, ok := Coerce("Acme", model.TypeString)
	assert.True(t, ok)
	assert.Equal(t, "Acme", v)

	v, ok = Coerce(float64(2015), model.TypeString)
	assert.True(t, ok)
	assert.Equal(t, "2015", v)

	v, ok = Coerce(true, model.TypeString)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = Coerce("   ", model.TypeString)
	assert.False(t, ok)

	_, ok = Coerce([]any{"a"}, model.TypeString)
	assert.False(t, ok)
}

func TestCoerceNumber(t *testing.T) {
	v, ok := Coerce(float64(12.5), model.TypeNumber)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = Coerce("2,015", model.TypeNumber)
	assert.True(t, ok)
	assert.Equal(t, float64(2015), v)

	_, ok = Coerce("about two thousand", model.TypeNumber)
	assert.False(t, ok)

	_, ok = Coerce(true, model.TypeNumber)
	assert.False(t, ok)
}

func TestCoerceBool(t *testing.T) {
	v, ok := Coerce(true, model.TypeBoolean)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = Coerce("True", model.TypeBoolean)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = Coerce("definitely", model.TypeBoolean)
	assert.False(t, ok)
}

func TestCoerceArray(t *testing.T) {
	v, ok := Coerce([]any{"Go", "Python"}, model.TypeArray)
	assert.True(t, ok)
	assert.Equal(t, []any{"Go", "Python"}, v)

	v, ok = Coerce("Go", model.TypeArray)
	assert.True(t, ok)
	assert.Equal(t, []any{"Go"}, v)

	_, ok = Coerce([]any{}, model.TypeArray)
	assert.False(t, ok)

	_, ok = Coerce(float64(3), model.TypeArray)
	assert.False(t, ok)
}
