package sidebar

import (
	"fmt"

	"chime-sidebar/internal/common/validation"
)

const draft07 = "http://json-schema.org/draft-07/schema#"

// JSONSchema describes the coerced value map produced from this table.
// Numbers carry their bounds; integral steps become multipleOf and are
// capped at IntInputMax. Every input may be null, so presence is checked by
// the consumer.
func (t *Table) JSONSchema() validation.JSONSchema {
	props := make(map[string]validation.Property, len(t.keys))
	for _, key := range t.keys {
		switch f := t.fields[t.index[key]].(type) {
		case NumberField:
			props[key] = numberProperty(f, validation.Types("number", "null"))
		case DateField:
			props[key] = validation.Property{
				Type:        validation.Types("string", "null"),
				Format:      "date",
				Description: fmt.Sprintf("%s..%s", f.MinDateAllowed, f.MaxDateAllowed),
			}
		case SwitchField:
			props[key] = validation.Property{
				Type:    validation.Types("boolean"),
				Default: f.Default,
			}
		}
	}
	return validation.JSONSchema{
		Schema:               draft07,
		Type:                 validation.Types("object"),
		Properties:           props,
		AdditionalProperties: true,
	}
}

// boundsSchema only covers the listed number fields and requires them to
// be numeric.
func (t *Table) boundsSchema(keys []string) validation.JSONSchema {
	props := make(map[string]validation.Property, len(keys))
	for _, key := range keys {
		f, ok := t.Lookup(key)
		if !ok {
			continue
		}
		if nf, ok := f.(NumberField); ok {
			props[key] = numberProperty(nf, validation.Types("number"))
		}
	}
	return validation.JSONSchema{
		Schema:               draft07,
		Type:                 validation.Types("object"),
		Properties:           props,
		Required:             keys,
		AdditionalProperties: false,
	}
}

func numberProperty(f NumberField, types validation.SchemaType) validation.Property {
	p := validation.Property{
		Type:    types,
		Minimum: floatPtr(f.Min),
		Maximum: f.Max,
	}
	if f.Step != StepAny && f.Step == float64(int64(f.Step)) {
		p.MultipleOf = floatPtr(f.Step)
		if p.Maximum == nil {
			p.Maximum = floatPtr(IntInputMax)
		}
	}
	if f.Percent {
		p.Description = "percent"
	}
	return p
}
