package sidebar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the wire format of every date in the sidebar.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day or zone.
type Date struct {
	t time.Time
}

// NewDate returns the date y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Time() time.Time        { return d.t }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Clamp returns d limited to [lo, hi].
func (d Date) Clamp(lo, hi Date) Date {
	if d.Before(lo) {
		return lo
	}
	if d.After(hi) {
		return hi
	}
	return d
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Values is the coerced value map of one submission. Iteration follows
// insertion order, which Coerce makes equal to the input order.
//
// Values hold float64, bool, Date, string or nil.
type Values struct {
	keys []string
	m    map[string]any
}

func NewValues() *Values {
	return &Values{m: make(map[string]any)}
}

// Set stores val under key, appending key if it is new.
func (v *Values) Set(key string, val any) {
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = val
}

func (v *Values) Get(key string) (any, bool) {
	val, ok := v.m[key]
	return val, ok
}

// Delete removes key, keeping the order of the rest.
func (v *Values) Delete(key string) {
	if _, ok := v.m[key]; !ok {
		return
	}
	delete(v.m, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i:i], v.keys[i+1:]...)
			break
		}
	}
}

func (v *Values) Len() int { return len(v.keys) }

func (v *Values) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

// Each calls fn for every entry in order.
func (v *Values) Each(fn func(key string, val any)) {
	for _, k := range v.keys {
		fn(k, v.m[k])
	}
}

// Number returns the float stored under key. ok is false for absent and
// nil entries.
func (v *Values) Number(key string) (float64, bool) {
	f, ok := v.m[key].(float64)
	return f, ok
}

// Bool returns the switch state under key; absent means false.
func (v *Values) Bool(key string) bool {
	b, _ := v.m[key].(bool)
	return b
}

// Date returns the date stored under key. ok is false for absent, nil and
// empty entries.
func (v *Values) Date(key string) (Date, bool) {
	d, ok := v.m[key].(Date)
	if !ok || d.IsZero() {
		return Date{}, false
	}
	return d, true
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	out := &Values{
		keys: make([]string, len(v.keys)),
		m:    make(map[string]any, len(v.m)),
	}
	copy(out.keys, v.keys)
	for k, val := range v.m {
		out.m[k] = val
	}
	return out
}

// MarshalJSON writes the entries as an object in insertion order.
func (v *Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v.m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
