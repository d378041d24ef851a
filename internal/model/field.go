package model

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldType is the declared output type of an enrichment field.
type FieldType string

// Supported field types.
const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
)

// Valid reports whether t is one of the four supported types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeArray:
		return true
	}
	return false
}

// EnrichmentField declares a single attribute the caller wants extracted.
type EnrichmentField struct {
	Name        string    `json:"name" yaml:"name"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	Description string    `json:"description" yaml:"description"`
	Type        FieldType `json:"type" yaml:"type"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// DefaultFields returns the built-in field set used when a caller supplies
// none: the standard company and person attributes.
func DefaultFields() []EnrichmentField {
	return []EnrichmentField{
		{Name: "companyName", DisplayName: "Company Name", Description: "Official company name", Type: TypeString, Required: true},
		{Name: "website", DisplayName: "Website", Description: "Company website URL", Type: TypeString},
		{Name: "industry", DisplayName: "Industry", Description: "Primary industry or sector", Type: TypeString},
		{Name: "companyType", DisplayName: "Company Type", Description: "Company type (startup, enterprise, agency, nonprofit)", Type: TypeString},
		{Name: "description", DisplayName: "Description", Description: "One-paragraph company description", Type: TypeString},
		{Name: "headquarters", DisplayName: "Headquarters", Description: "Headquarters city and state/country", Type: TypeString},
		{Name: "yearFounded", DisplayName: "Year Founded", Description: "Year the company was founded", Type: TypeNumber},
		{Name: "employeeCount", DisplayName: "Employee Count", Description: "Approximate number of employees", Type: TypeNumber},
		{Name: "fundingStage", DisplayName: "Funding Stage", Description: "Latest funding stage (seed, series A, public, bootstrapped)", Type: TypeString},
		{Name: "totalRaised", DisplayName: "Total Raised", Description: "Total funding raised, e.g. \"$12M\"", Type: TypeString},
		{Name: "lastRoundAmount", DisplayName: "Last Round Amount", Description: "Size of the most recent funding round", Type: TypeString},
		{Name: "investors", DisplayName: "Investors", Description: "Known investors", Type: TypeArray},
		{Name: "techStack", DisplayName: "Tech Stack", Description: "Technologies the company builds with", Type: TypeArray},
		{Name: "titleNormalized", DisplayName: "Title", Description: "Person's normalized job title", Type: TypeString},
		{Name: "seniority", DisplayName: "Seniority", Description: "Seniority level (c-level, vp, director, manager, ic)", Type: TypeString},
		{Name: "department", DisplayName: "Department", Description: "Department (engineering, sales, marketing, ...)", Type: TypeString},
		{Name: "linkedinUrl", DisplayName: "LinkedIn URL", Description: "Person's LinkedIn profile URL", Type: TypeString},
		{Name: "location", DisplayName: "Location", Description: "Person's location", Type: TypeString},
	}
}

// LoadFields reads a custom field set from a YAML file. The file has a
// top-level "fields" key listing EnrichmentField entries.
func LoadFields(path string) ([]EnrichmentField, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "model: read fields %s", path)
	}

	var wrapper struct {
		Fields []EnrichmentField `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "model: parse fields")
	}

	for _, f := range wrapper.Fields {
		if f.Name == "" {
			return nil, eris.New("model: field with empty name")
		}
		if !f.Type.Valid() {
			return nil, eris.Errorf("model: field %s has unsupported type %q", f.Name, f.Type)
		}
	}
	return wrapper.Fields, nil
}

// FieldIndex is an indexed view over a field set.
type FieldIndex struct {
	Fields []EnrichmentField
	byName map[string]*EnrichmentField
}

// NewFieldIndex builds a FieldIndex with by-name lookup.
func NewFieldIndex(fields []EnrichmentField) *FieldIndex {
	idx := &FieldIndex{
		Fields: fields,
		byName: make(map[string]*EnrichmentField, len(fields)),
	}
	for i := range idx.Fields {
		idx.byName[idx.Fields[i].Name] = &idx.Fields[i]
	}
	return idx
}

// ByName returns the field with the given name, or nil.
func (idx *FieldIndex) ByName(name string) *EnrichmentField {
	return idx.byName[name]
}
