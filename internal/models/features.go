// internal/models/features.go
package models

import "fmt"

type FeatureType string

const (
	FeatureTypeInteger FeatureType = "integer"
	FeatureTypeReal    FeatureType = "real"
	FeatureTypeBinary  FeatureType = "binary"
)

type FeatureGroup string

const (
	GroupAccount FeatureGroup = "account"
	GroupUsage   FeatureGroup = "usage"
)

// FeatureDescriptor describes one positional input of the classifier.
type FeatureDescriptor struct {
	Name    string       `json:"name"`
	Label   string       `json:"label"`
	Type    FeatureType  `json:"type"`
	Min     float64      `json:"min"`
	Max     float64      `json:"max"`
	Allowed []float64    `json:"allowed,omitempty"`
	Default float64      `json:"default"`
	Group   FeatureGroup `json:"group"`
}

// Contains reports whether v lies inside the descriptor's domain.
func (d FeatureDescriptor) Contains(v float64) bool {
	switch d.Type {
	case FeatureTypeBinary:
		for _, a := range d.Allowed {
			if v == a {
				return true
			}
		}
		return false
	case FeatureTypeInteger:
		if v != float64(int64(v)) {
			return false
		}
	}
	return v >= d.Min && v <= d.Max
}

// FeatureSchema is the fixed, ordered list of classifier inputs.
type FeatureSchema struct {
	fields []FeatureDescriptor
	index  map[string]int
}

const FeatureCount = 18

var churnSchema = newFeatureSchema([]FeatureDescriptor{
	intField("account_length", "Account Length", 1, 500, 100, GroupAccount),
	binaryField("voice_mail_plan", "Voice Mail Plan", 0, GroupAccount),
	intField("voice_mail_messages", "Voice Mail Messages", 0, 100, 5, GroupAccount),
	realField("day_mins", "Day Minutes", 0, 500, 100, GroupUsage),
	realField("evening_mins", "Evening Minutes", 0, 500, 50, GroupUsage),
	realField("night_mins", "Night Minutes", 0, 500, 20, GroupUsage),
	realField("international_mins", "International Minutes", 0, 100, 5, GroupAccount),
	intField("customer_service_calls", "Customer Service Calls", 0, 10, 2, GroupAccount),
	binaryField("international_plan", "International Plan", 0, GroupAccount),
	intField("day_calls", "Day Calls", 0, 200, 50, GroupUsage),
	realField("day_charge", "Day Charge", 0, 100, 25, GroupUsage),
	intField("evening_calls", "Evening Calls", 0, 200, 30, GroupUsage),
	realField("evening_charge", "Evening Charge", 0, 100, 15, GroupUsage),
	intField("night_calls", "Night Calls", 0, 200, 10, GroupUsage),
	realField("night_charge", "Night Charge", 0, 50, 5, GroupUsage),
	intField("international_calls", "International Calls", 0, 20, 3, GroupAccount),
	realField("international_charge", "International Charge", 0, 50, 5, GroupAccount),
	realField("total_charge", "Total Charge", 0, 500, 100, GroupUsage),
})

// ChurnSchema returns the schema the churn classifier was trained on.
func ChurnSchema() *FeatureSchema {
	return churnSchema
}

func newFeatureSchema(fields []FeatureDescriptor) *FeatureSchema {
	if len(fields) != FeatureCount {
		panic(fmt.Sprintf("models: churn schema must have %d fields, got %d", FeatureCount, len(fields)))
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			panic("models: duplicate feature " + f.Name)
		}
		index[f.Name] = i
	}
	return &FeatureSchema{fields: fields, index: index}
}

func (s *FeatureSchema) Len() int { return len(s.fields) }

// Fields returns a copy of the descriptors in positional order.
func (s *FeatureSchema) Fields() []FeatureDescriptor {
	out := make([]FeatureDescriptor, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *FeatureSchema) Field(i int) FeatureDescriptor { return s.fields[i] }

// Lookup returns the descriptor and position for a field name.
func (s *FeatureSchema) Lookup(name string) (FeatureDescriptor, int, bool) {
	i, ok := s.index[name]
	if !ok {
		return FeatureDescriptor{}, -1, false
	}
	return s.fields[i], i, true
}

func (s *FeatureSchema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

func (s *FeatureSchema) Labels() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Label
	}
	return out
}

// Defaults returns the prefilled value of every field keyed by name.
func (s *FeatureSchema) Defaults() map[string]float64 {
	out := make(map[string]float64, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Default
	}
	return out
}

// InGroup returns the descriptors of one input group, keeping schema order.
func (s *FeatureSchema) InGroup(g FeatureGroup) []FeatureDescriptor {
	var out []FeatureDescriptor
	for _, f := range s.fields {
		if f.Group == g {
			out = append(out, f)
		}
	}
	return out
}

// JSONSchema renders the schema as a draft-07 object schema. Profiles and
// tooling validate against it.
func (s *FeatureSchema) JSONSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(s.fields))
	required := make([]interface{}, 0, len(s.fields))
	for _, f := range s.fields {
		p := map[string]interface{}{
			"description": f.Label,
			"default":     f.Default,
		}
		switch f.Type {
		case FeatureTypeBinary:
			enum := make([]interface{}, len(f.Allowed))
			for i, a := range f.Allowed {
				enum[i] = a
			}
			p["type"] = "integer"
			p["enum"] = enum
		case FeatureTypeInteger:
			p["type"] = "integer"
			p["minimum"] = f.Min
			p["maximum"] = f.Max
		default:
			p["type"] = "number"
			p["minimum"] = f.Min
			p["maximum"] = f.Max
		}
		props[f.Name] = p
		required = append(required, f.Name)
	}
	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Customer churn features",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func intField(name, label string, min, max, def float64, g FeatureGroup) FeatureDescriptor {
	return FeatureDescriptor{Name: name, Label: label, Type: FeatureTypeInteger, Min: min, Max: max, Default: def, Group: g}
}

func realField(name, label string, min, max, def float64, g FeatureGroup) FeatureDescriptor {
	return FeatureDescriptor{Name: name, Label: label, Type: FeatureTypeReal, Min: min, Max: max, Default: def, Group: g}
}

func binaryField(name, label string, def float64, g FeatureGroup) FeatureDescriptor {
	return FeatureDescriptor{Name: name, Label: label, Type: FeatureTypeBinary, Min: 0, Max: 1, Allowed: []float64{0, 1}, Default: def, Group: g}
}
