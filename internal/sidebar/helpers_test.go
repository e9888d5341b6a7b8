package sidebar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

// defaultRaw is a complete, valid submission keyed by input key, in the
// encodings the page emits.
func defaultRaw() map[string]any {
	return map[string]any{
		"population":              3600000.0,
		"market_share":            15.0,
		"current_hospitalized":    69.0,
		"date_first_hospitalized": "",
		"doubling_time":           4.0,
		"relative_contact_rate":   30.0,
		"hospitalized_rate":       2.5,
		"icu_rate":                0.75,
		"ventilated_rate":         0.5,
		"infectious_days":         14.0,
		"hospitalized_los":        7.0,
		"icu_los":                 9.0,
		"ventilated_los":          10.0,
		"n_days":                  100.0,
		"current_date":            "2020-04-01",
		"max_y_axis_value":        nil,
		"show_tables":             []any{},
		"show_tool_details":       []any{true},
	}
}

// rawInputs lays out defaultRaw with overrides applied in input order.
func rawInputs(t testing.TB, overrides map[string]any) []any {
	t.Helper()
	values := defaultRaw()
	for k, v := range overrides {
		_, known := values[k]
		require.True(t, known, "unknown override %q", k)
		values[k] = v
	}
	keys := OrderedInputKeys()
	raw := make([]any, len(keys))
	for i, k := range keys {
		raw[i] = values[k]
	}
	return raw
}

func coerced(t testing.TB, overrides map[string]any) *Values {
	t.Helper()
	values, err := Coerce(rawInputs(t, overrides))
	require.NoError(t, err)
	return values
}

func dateComparer() cmp.Option {
	return cmp.Comparer(func(a, b Date) bool { return a.Equal(b) })
}

// diffValues compares two value maps including their key order.
func diffValues(want, got *Values) string {
	if d := cmp.Diff(want.Keys(), got.Keys()); d != "" {
		return "keys: " + d
	}
	toMap := func(v *Values) map[string]any {
		out := make(map[string]any, v.Len())
		v.Each(func(k string, val any) { out[k] = val })
		return out
	}
	return cmp.Diff(toMap(want), toMap(got), dateComparer())
}
