// Package sidebar holds the CHIME sidebar form: the ordered input table, the
// coercion of raw form values, and the two transforms that consume them.
package sidebar

import (
	"fmt"
	"math"

	"chime-sidebar/internal/common/errors"
)

// Kind identifies the widget type of a field.
type Kind string

const (
	KindHeader Kind = "header"
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindSwitch Kind = "switch"
	KindLink   Kind = "link"
)

const (
	// FloatInputMin is the lower bound of fields that accept any positive float.
	FloatInputMin = 0.001
	// PercentMax is the upper bound of fields entered as percentages.
	PercentMax = 100.0
	// IntInputMax caps integral fields without an explicit maximum so the
	// value fits an int on every platform.
	IntInputMax = math.MaxInt32
	// DefaultDownloadPath is where the PDF export service listens.
	DefaultDownloadPath = "/download-as-pdf"
)

var (
	MinDateAllowed = MustParseDate("2019-10-01")
	MaxDateAllowed = MustParseDate("2021-12-31")
)

// StepAny marks a numeric field without a step constraint.
const StepAny = 0

// Field is a single entry of the input table. The set of implementations is
// closed; see HeaderField, NumberField, DateField, SwitchField and LinkField.
type Field interface {
	Key() string
	Kind() Kind
	isField()
}

// HeaderField is a decorative section heading.
type HeaderField struct {
	Name string
	Size string
}

// NumberField is a numeric input. Max and Default are optional.
type NumberField struct {
	Name    string
	Min     float64
	Max     *float64
	Step    float64
	Percent bool
	Default *float64
}

// DateField is a date picker constrained to an inclusive range.
type DateField struct {
	Name                     string
	MinDateAllowed           Date
	MaxDateAllowed           Date
	InitialVisibleMonthToday bool
	DefaultToday             bool
}

// SwitchField is a single checkbox.
type SwitchField struct {
	Name    string
	Default bool
}

// LinkField is an output anchor; it never carries a form value.
type LinkField struct {
	Name string
}

func (f HeaderField) Key() string { return f.Name }
func (f NumberField) Key() string { return f.Name }
func (f DateField) Key() string   { return f.Name }
func (f SwitchField) Key() string { return f.Name }
func (f LinkField) Key() string   { return f.Name }

func (HeaderField) Kind() Kind { return KindHeader }
func (NumberField) Kind() Kind { return KindNumber }
func (DateField) Kind() Kind   { return KindDate }
func (SwitchField) Kind() Kind { return KindSwitch }
func (LinkField) Kind() Kind   { return KindLink }

func (HeaderField) isField() {}
func (NumberField) isField() {}
func (DateField) isField()   {}
func (SwitchField) isField() {}
func (LinkField) isField()   {}

// Interactive reports whether a field of this kind emits a form value.
func (k Kind) Interactive() bool {
	return k != KindHeader && k != KindLink
}

// Table is an ordered list of fields with a lookup index by key.
type Table struct {
	fields []Field
	index  map[string]int
	keys   []string
}

// NewTable builds a table, rejecting duplicate keys and unknown kinds.
func NewTable(fields ...Field) (*Table, error) {
	t := &Table{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f == nil {
			return nil, errors.NewConfigurationError("nil field in table")
		}
		if _, err := Describe(f); err != nil {
			return nil, err
		}
		if _, dup := t.index[f.Key()]; dup {
			return nil, errors.NewConfigurationError(fmt.Sprintf("duplicate field key %q", f.Key()))
		}
		t.index[f.Key()] = len(t.fields)
		t.fields = append(t.fields, f)
		if f.Kind().Interactive() {
			t.keys = append(t.keys, f.Key())
		}
	}
	return t, nil
}

// MustTable is NewTable for package-level tables.
func MustTable(fields ...Field) *Table {
	t, err := NewTable(fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Fields returns the fields in display order.
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Lookup returns the field registered under key.
func (t *Table) Lookup(key string) (Field, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}

// OrderedInputKeys returns the keys of the interactive fields in table order.
// Raw form values are positionally aligned with this slice.
func (t *Table) OrderedInputKeys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// ChangedElement names a widget property the page listens to.
type ChangedElement struct {
	Key      string `json:"key"`
	Property string `json:"property"`
}

// InputProperty returns the widget property that carries a field's value.
func InputProperty(kind Kind) string {
	if kind == KindDate {
		return "date"
	}
	return "value"
}

// ChangedElements lists, in input order, the widget properties whose change
// triggers a submission.
func (t *Table) ChangedElements() []ChangedElement {
	out := make([]ChangedElement, 0, len(t.keys))
	for _, key := range t.keys {
		f := t.fields[t.index[key]]
		out = append(out, ChangedElement{Key: key, Property: InputProperty(f.Kind())})
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

// Inputs is the sidebar input table. It is read-only after init.
var Inputs = MustTable(
	HeaderField{Name: "hospital_parameters", Size: "h3"},
	NumberField{Name: "population", Min: 1, Step: 1},
	NumberField{Name: "market_share", Min: FloatInputMin, Step: StepAny, Max: floatPtr(PercentMax), Percent: true},
	NumberField{Name: "current_hospitalized", Min: 0, Step: 1},
	HeaderField{Name: "spread_parameters", Size: "h4"},
	DateField{Name: "date_first_hospitalized", MinDateAllowed: MinDateAllowed, MaxDateAllowed: MaxDateAllowed},
	NumberField{Name: "doubling_time", Min: FloatInputMin, Step: StepAny},
	NumberField{Name: "relative_contact_rate", Min: 0, Step: StepAny, Max: floatPtr(PercentMax), Percent: true},
	HeaderField{Name: "severity_parameters", Size: "h4"},
	NumberField{Name: "hospitalized_rate", Min: 0, Step: StepAny, Max: floatPtr(PercentMax), Percent: true},
	NumberField{Name: "icu_rate", Min: 0, Step: StepAny, Max: floatPtr(PercentMax), Percent: true},
	NumberField{Name: "ventilated_rate", Min: 0, Step: StepAny, Max: floatPtr(PercentMax), Percent: true},
	NumberField{Name: "infectious_days", Min: 0, Step: 1},
	NumberField{Name: "hospitalized_los", Min: 0, Step: 1},
	NumberField{Name: "icu_los", Min: 0, Step: 1},
	NumberField{Name: "ventilated_los", Min: 0, Step: 1},
	HeaderField{Name: "display_parameters", Size: "h4"},
	NumberField{Name: "n_days", Min: 30, Step: 1},
	DateField{
		Name:                     "current_date",
		MinDateAllowed:           MinDateAllowed,
		MaxDateAllowed:           MaxDateAllowed,
		InitialVisibleMonthToday: true,
		DefaultToday:             true,
	},
	NumberField{Name: "max_y_axis_value", Min: 10, Step: 10},
	SwitchField{Name: "show_tables"},
	SwitchField{Name: "show_tool_details"},
	LinkField{Name: "download_as_pdf_link"},
)

// OrderedInputKeys returns the interactive keys of Inputs.
func OrderedInputKeys() []string {
	return Inputs.OrderedInputKeys()
}
