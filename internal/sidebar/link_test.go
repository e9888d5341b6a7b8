package sidebar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime-sidebar/internal/common/errors"
)

func TestBuildLink_OmitsNullEntries(t *testing.T) {
	values := NewValues()
	values.Set("a", 1.0)
	values.Set("b", nil)
	values.Set("c", "x")

	assert.Equal(t, "/download?a=1&c=x", BuildLink(values, "/download"))
}

func TestBuildLink_Idempotent(t *testing.T) {
	values := coerced(t, map[string]any{"date_first_hospitalized": "2020-03-01"})
	first := BuildLink(values, DefaultDownloadPath)
	second := BuildLink(values, DefaultDownloadPath)
	assert.Equal(t, first, second)
}

func TestBuildLink_ExcludesTransientKeys(t *testing.T) {
	values := NewValues()
	values.Set("model", "opaque")
	values.Set("n_days", 30.0)
	values.Set("pars", `{"population":1}`)

	assert.Equal(t, "/download-as-pdf?n_days=30", BuildLink(values, DefaultDownloadPath))
}

func TestBuildLink_FullSubmission(t *testing.T) {
	got := BuildLink(coerced(t, nil), DefaultDownloadPath)

	want := "/download-as-pdf?" +
		"population=3600000&market_share=15&current_hospitalized=69" +
		"&date_first_hospitalized=&doubling_time=4&relative_contact_rate=30" +
		"&hospitalized_rate=2.5&icu_rate=0.75&ventilated_rate=0.5" +
		"&infectious_days=14&hospitalized_los=7&icu_los=9&ventilated_los=10" +
		"&n_days=100&current_date=2020-04-01" +
		"&show_tables=False&show_tool_details=True"
	assert.Equal(t, want, got)
}

func TestBuildLink_KeepsPercentInputsRaw(t *testing.T) {
	got := BuildLink(coerced(t, map[string]any{"hospitalized_rate": 8.0}), DefaultDownloadPath)
	assert.Contains(t, got, "&hospitalized_rate=8&")
}

func TestBuildLink_EscapesStrings(t *testing.T) {
	values := NewValues()
	values.Set("note", "a b&c=d")
	assert.Equal(t, "/x?note=a+b%26c%3Dd", BuildLink(values, "/x"))
}

func TestParseLink_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{name: "defaults", overrides: nil},
		{name: "date driver", overrides: map[string]any{"doubling_time": nil, "date_first_hospitalized": "2020-03-01"}},
		{name: "axis cap", overrides: map[string]any{"max_y_axis_value": 500.0, "show_tables": []any{true}}},
		{name: "no current date", overrides: map[string]any{"current_date": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := coerced(t, tt.overrides)
			parsed, err := ParseLink(BuildLink(values, DefaultDownloadPath))
			require.NoError(t, err)
			if diff := diffValues(values, parsed); diff != "" {
				t.Fatalf("ParseLink(BuildLink()) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLink_UnknownKeysFollowInputs(t *testing.T) {
	parsed, err := ParseLink("?zeta=1&n_days=45&alpha=two+words")
	require.NoError(t, err)

	keys := parsed.Keys()
	assert.Equal(t, []string{"zeta", "alpha"}, keys[len(keys)-2:])
	v, _ := parsed.Get("alpha")
	assert.Equal(t, "two words", v)

	n, ok := parsed.Number("n_days")
	require.True(t, ok)
	assert.Equal(t, 45.0, n)

	v, ok = parsed.Get("population")
	require.True(t, ok)
	assert.Nil(t, v)
}

func TestParseLink_Errors(t *testing.T) {
	tests := []struct {
		name  string
		link  string
		code  errors.ErrorCode
		field string
	}{
		{name: "bad date", link: "/download-as-pdf?current_date=2020-13-01", code: errors.ErrCodeCoercionFailed, field: "current_date"},
		{name: "bad switch", link: "/download-as-pdf?show_tables=maybe", code: errors.ErrCodeCoercionFailed, field: "show_tables"},
		{name: "bad number", link: "/download-as-pdf?n_days=lots", code: errors.ErrCodeCoercionFailed, field: "n_days"},
		{name: "bad escape", link: "/download-as-pdf?n_days=%zz", code: errors.ErrCodeParseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLink(tt.link)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code))
			assert.Equal(t, tt.field, errors.FieldOf(err))
		})
	}
}

// ==========================
// Serializer Tests
// ==========================

func TestSerializeParameters_RoundTrip(t *testing.T) {
	pars, err := Assemble(coerced(t, map[string]any{
		"doubling_time":           nil,
		"date_first_hospitalized": "2020-03-07",
		"max_y_axis_value":        250.0,
	}))
	require.NoError(t, err)

	blob, err := SerializeParameters(pars)
	require.NoError(t, err)
	assert.Contains(t, blob, `"date_first_hospitalized":"2020-03-07"`)
	assert.Contains(t, blob, `"doubling_time":null`)
	assert.Contains(t, blob, `"hospitalized":{"rate":0.025,"days":7}`)

	back, err := DeserializeParameters(blob)
	require.NoError(t, err)
	if diff := cmp.Diff(pars, back, dateComparer()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeParameters_Invalid(t *testing.T) {
	_, err := DeserializeParameters(`{"current_date":"April 1"}`)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeParseError))
}

func BenchmarkBuildLink(b *testing.B) {
	values := coerced(b, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = BuildLink(values, DefaultDownloadPath)
	}
}
