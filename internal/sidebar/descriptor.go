package sidebar

import (
	"fmt"
	"time"

	"chime-sidebar/internal/common/errors"
)

// Descriptor is the serializable form of a field handed to the rendering
// layer. Only the attributes of the field's kind are populated.
type Descriptor struct {
	Key      string `json:"key"`
	Type     Kind   `json:"type"`
	Property string `json:"property,omitempty"`

	Size string `json:"size,omitempty"`

	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    any      `json:"step,omitempty"`
	Percent bool     `json:"percent,omitempty"`
	Value   any      `json:"value,omitempty"`

	MinDateAllowed      string `json:"min_date_allowed,omitempty"`
	MaxDateAllowed      string `json:"max_date_allowed,omitempty"`
	InitialVisibleMonth string `json:"initial_visible_month,omitempty"`
	Date                string `json:"date,omitempty"`
}

// Describe renders f with today's date filled into date defaults.
func Describe(f Field) (Descriptor, error) {
	return DescribeAt(f, DateOf(time.Now()))
}

// DescribeAt renders f using today for date fields that default to the
// current day, clamped into the field's allowed range. An unknown field type
// is a ConfigurationError.
func DescribeAt(f Field, today Date) (Descriptor, error) {
	switch field := f.(type) {
	case HeaderField:
		return Descriptor{Key: field.Name, Type: KindHeader, Size: field.Size}, nil
	case NumberField:
		d := Descriptor{
			Key:      field.Name,
			Type:     KindNumber,
			Property: InputProperty(KindNumber),
			Min:      floatPtr(field.Min),
			Max:      field.Max,
			Step:     stepAttr(field.Step),
			Percent:  field.Percent,
		}
		if field.Default != nil {
			d.Value = *field.Default
		}
		return d, nil
	case DateField:
		d := Descriptor{
			Key:            field.Name,
			Type:           KindDate,
			Property:       InputProperty(KindDate),
			MinDateAllowed: field.MinDateAllowed.String(),
			MaxDateAllowed: field.MaxDateAllowed.String(),
		}
		day := today.Clamp(field.MinDateAllowed, field.MaxDateAllowed)
		if field.InitialVisibleMonthToday {
			d.InitialVisibleMonth = day.String()
		}
		if field.DefaultToday {
			d.Date = day.String()
		}
		return d, nil
	case SwitchField:
		return Descriptor{
			Key:      field.Name,
			Type:     KindSwitch,
			Property: InputProperty(KindSwitch),
			Value:    field.Default,
		}, nil
	case LinkField:
		return Descriptor{Key: field.Name, Type: KindLink}, nil
	default:
		return Descriptor{}, errors.NewConfigurationError(fmt.Sprintf("unknown field type %T", f))
	}
}

func stepAttr(step float64) any {
	if step == StepAny {
		return "any"
	}
	return step
}

// Describe renders every field of the table in display order.
func (t *Table) Describe(today Date) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(t.fields))
	for _, f := range t.fields {
		d, err := DescribeAt(f, today)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
