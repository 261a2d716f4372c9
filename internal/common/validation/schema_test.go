package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"day_calls":       map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 200},
		"voice_mail_plan": map[string]interface{}{"type": "integer", "enum": []interface{}{0, 1}},
	},
	"required":             []interface{}{"day_calls", "voice_mail_plan"},
	"additionalProperties": false,
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name      string
		doc       map[string]interface{}
		valid     bool
		wantCodes map[string]string
	}{
		{
			name:  "valid document",
			doc:   map[string]interface{}{"day_calls": 50, "voice_mail_plan": 1},
			valid: true,
		},
		{
			name:      "float that is whole counts as integer",
			doc:       map[string]interface{}{"day_calls": 50.0, "voice_mail_plan": 0.0},
			valid:     true,
			wantCodes: nil,
		},
		{
			name:      "missing field",
			doc:       map[string]interface{}{"day_calls": 50},
			wantCodes: map[string]string{"voice_mail_plan": "REQUIRED_FIELD_MISSING"},
		},
		{
			name:      "extra field",
			doc:       map[string]interface{}{"day_calls": 50, "voice_mail_plan": 0, "zip": "90210"},
			wantCodes: map[string]string{"zip": "EXTRA_FIELD"},
		},
		{
			name:      "out of range",
			doc:       map[string]interface{}{"day_calls": 201, "voice_mail_plan": 2},
			wantCodes: map[string]string{"day_calls": "MAXIMUM_VIOLATION", "voice_mail_plan": "INVALID_ENUM_VALUE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateDocument(tt.doc, testSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			for field, code := range tt.wantCodes {
				errs := res.GetErrorsForField(field)
				require.NotEmpty(t, errs, "expected error for %s", field)
				assert.Equal(t, code, errs[0].Code)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	schema := `{"type":"object","properties":{"kind":{"enum":["logistic"]}},"required":["kind"]}`

	res, err := ValidateJSON([]byte(`{"kind":"logistic"}`), schema)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateJSON([]byte(`{"kind":"svm"}`), schema)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.GetErrorMessages(), 1)

	_, err = ValidateJSON([]byte(`{not json`), schema)
	assert.Error(t, err)
}
