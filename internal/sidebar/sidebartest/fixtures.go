// Package sidebartest provides submission fixtures for tests of packages
// that consume the sidebar.
package sidebartest

import (
	"testing"

	"chime-sidebar/internal/sidebar"
)

// Submission returns a complete, valid submission keyed by input key, in
// the encodings the page emits.
func Submission() map[string]any {
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

// RawInputs lays out Submission with overrides applied, in input order.
func RawInputs(t testing.TB, overrides map[string]any) []any {
	t.Helper()
	values := Submission()
	for k, v := range overrides {
		if _, known := values[k]; !known {
			t.Fatalf("unknown input key %q", k)
		}
		values[k] = v
	}
	keys := sidebar.OrderedInputKeys()
	raw := make([]any, len(keys))
	for i, k := range keys {
		raw[i] = values[k]
	}
	return raw
}
