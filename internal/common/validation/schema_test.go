package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime-sidebar/internal/common/errors"
)

func floatPtr(f float64) *float64 { return &f }

func testSchema() JSONSchema {
	return JSONSchema{
		Type: Types("object"),
		Properties: map[string]Property{
			"population": {Type: Types("number"), Minimum: floatPtr(1), MultipleOf: floatPtr(1)},
			"n_days":     {Type: Types("number"), Minimum: floatPtr(30)},
			"max_y":      {Type: Types("number", "null")},
		},
		Required:             []string{"population", "n_days"},
		AdditionalProperties: false,
	}
}

// ==========================
// Schema Type Tests
// ==========================

func TestSchemaType_JSON(t *testing.T) {
	single, err := json.Marshal(Types("number"))
	require.NoError(t, err)
	assert.JSONEq(t, `"number"`, string(single))

	many, err := json.Marshal(Types("number", "null"))
	require.NoError(t, err)
	assert.JSONEq(t, `["number","null"]`, string(many))

	var st SchemaType
	require.NoError(t, json.Unmarshal([]byte(`"string"`), &st))
	assert.Equal(t, Types("string"), st)
	require.NoError(t, json.Unmarshal([]byte(`["string","null"]`), &st))
	assert.Equal(t, Types("string", "null"), st)
	assert.Error(t, json.Unmarshal([]byte(`42`), &st))
}

// ==========================
// Validation Tests
// ==========================

func TestValidator_Valid(t *testing.T) {
	v, err := NewValidator(testSchema())
	require.NoError(t, err)

	result, err := v.Validate(map[string]interface{}{"population": 3600000.0, "n_days": 100.0, "max_y": nil})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.NoError(t, result.Err())
}

func TestValidator_ReportsEveryViolation(t *testing.T) {
	v, err := NewValidator(testSchema())
	require.NoError(t, err)

	result, err := v.Validate(map[string]interface{}{
		"population": 1.5,
		"extra":      true,
	})
	require.NoError(t, err)
	require.False(t, result.Valid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "population", "multipleOf")
	assert.Contains(t, fields, "n_days", "required error mapped to its property")

	verr := result.Err()
	require.Error(t, verr)
	assert.True(t, errors.HasCode(verr, errors.ErrCodeValidationFailed))
	assert.Len(t, errors.Flatten(verr), len(result.Errors))
}

func TestValidator_Bounds(t *testing.T) {
	v, err := NewValidator(testSchema())
	require.NoError(t, err)

	result, err := v.Validate(map[string]interface{}{"population": 0.0, "n_days": 29.0})
	require.NoError(t, err)
	verr := result.Err()
	require.Error(t, verr)
	var fields []string
	for _, e := range errors.Flatten(verr) {
		fields = append(fields, e.Field())
	}
	assert.ElementsMatch(t, []string{"population", "n_days"}, fields)
}

func TestNewValidator_BadSchema(t *testing.T) {
	_, err := NewValidator(JSONSchema{
		Type:       Types("object"),
		Properties: map[string]Property{"x": {Type: Types("not-a-type")}},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationError))
}

func TestValidationResult_ErrNil(t *testing.T) {
	var vr *ValidationResult
	assert.NoError(t, vr.Err())
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("sidebar.parameters.update"))
	assert.Error(t, ValidateActivityNaming("sidebar-parameters"))
	assert.Error(t, ValidateActivityNaming("Sidebar.Link.Build"))
}
