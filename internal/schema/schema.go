// Package schema defines the typed output schema the extraction chokepoint
// enforces on language-model responses: declared fields only, values coerced
// to their declared type, everything else dropped.
package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/contact-enrichment/internal/model"
)

// Schema declares the expected shape of one extraction call's output.
type Schema struct {
	Fields map[string]model.FieldType
}

// Build constructs a Schema from field declarations. Unsupported types fall
// back to string.
func Build(fields []model.EnrichmentField) Schema {
	s := Schema{Fields: make(map[string]model.FieldType, len(fields))}
	for _, f := range fields {
		t := f.Type
		if !t.Valid() {
			t = model.TypeString
		}
		s.Fields[f.Name] = t
	}
	return s
}

// Empty reports whether the schema declares no fields.
func (s Schema) Empty() bool { return len(s.Fields) == 0 }

// Names returns the declared field names, sorted.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders the schema as a JSON sketch for prompt injection, e.g.
// {"companyName": <string>, "yearFounded": <number>}.
func (s Schema) Describe() string {
	var b strings.Builder
	b.WriteString("{")
	for i, name := range s.Names() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: <%s or null>", name, s.Fields[name])
	}
	b.WriteString("}")
	return b.String()
}

// Apply filters a raw decoded JSON object against the schema: undeclared
// keys are dropped, declared values are coerced to their declared type, and
// nulls or uncoercible values are omitted rather than passed through.
func (s Schema) Apply(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for name, t := range s.Fields {
		v, ok := raw[name]
		if !ok || v == nil {
			continue
		}
		coerced, ok := Coerce(v, t)
		if !ok {
			continue
		}
		out[name] = coerced
	}
	return out
}

// Coerce converts a decoded JSON value to the target field type. The bool
// result reports whether a faithful conversion exists.
func Coerce(v any, t model.FieldType) (any, bool) {
	switch t {
	case model.TypeString:
		return coerceString(v)
	case model.TypeNumber:
		return coerceNumber(v)
	case model.TypeBoolean:
		return coerceBool(v)
	case model.TypeArray:
		return coerceArray(v)
	}
	return nil, false
}

func coerceString(v any) (any, bool) {
	switch n := v.(type) {
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, false
		}
		return n, true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(n), true
	}
	return nil, false
}

func coerceNumber(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		// Models sometimes return "2015" or "1,200" for numeric fields.
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

func coerceBool(v any) (any, bool) {
	switch n := v.(type) {
	case bool:
		return n, true
	case string:
		if b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(n))); err == nil {
			return b, true
		}
	}
	return nil, false
}

func coerceArray(v any) (any, bool) {
	switch n := v.(type) {
	case []any:
		if len(n) == 0 {
			return nil, false
		}
		return n, true
	case string:
		if strings.TrimSpace(n) == "" {
			return nil, false
		}
		// A bare scalar for an array field becomes a single-element array.
		return []any{n}, true
	}
	return nil, false
}
