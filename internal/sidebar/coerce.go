package sidebar

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"chime-sidebar/internal/common/errors"
)

// Coerce zips raw form values against Inputs and converts each one to the
// type its field declares.
func Coerce(raw []any) (*Values, error) {
	return Inputs.Coerce(raw)
}

// Coerce zips raw against the table's input keys. Every field is attempted;
// all coercion failures are returned joined and no Values are produced.
func (t *Table) Coerce(raw []any) (*Values, error) {
	if len(raw) != len(t.keys) {
		return nil, errors.NewSchemaMismatchError(len(t.keys), len(raw))
	}

	values := NewValues()
	var errs []error
	for i, key := range t.keys {
		f := t.fields[t.index[key]]
		v, err := coerceValue(f, raw[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values.Set(key, v)
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return values, nil
}

func coerceValue(f Field, raw any) (any, error) {
	switch f.Kind() {
	case KindNumber:
		return coerceNumber(f.Key(), raw)
	case KindSwitch:
		return coerceSwitch(raw), nil
	case KindDate:
		return coerceDate(f.Key(), raw)
	default:
		return raw, nil
	}
}

// coerceNumber normalizes the numeric encodings a decoder may produce to
// float64. Absent and empty inputs are kept as nil.
func coerceNumber(key string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, errors.NewCoercionError(key, raw, err)
		}
		return f, nil
	case string:
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.NewCoercionError(key, raw, err)
		}
		return f, nil
	default:
		return nil, errors.NewCoercionError(key, raw, nil)
	}
}

// coerceSwitch translates the checklist encoding of a switch: the widget
// reports [true] when checked and [] otherwise.
func coerceSwitch(raw any) bool {
	items, ok := raw.([]any)
	if !ok || len(items) != 1 {
		return false
	}
	b, ok := items[0].(bool)
	return ok && b
}

// coerceDate parses non-empty strings; empty and absent values pass through.
func coerceDate(key string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return v, nil
		}
		d, err := ParseDate(v)
		if err != nil {
			return nil, errors.NewCoercionError(key, raw, fmt.Errorf("want %s: %w", "YYYY-MM-DD", err))
		}
		return d, nil
	case Date:
		return v, nil
	default:
		return nil, errors.NewCoercionError(key, raw, nil)
	}
}
