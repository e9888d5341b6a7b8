package sidebar

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"chime-sidebar/internal/common/errors"
)

// transientKeys are page-internal entries never exported in a link.
var transientKeys = map[string]bool{
	"model": true,
	"pars":  true,
}

// BuildLink renders values as basePath?key=value&... in map order. Nil
// entries and transient keys are left out. Values are the raw UI values;
// percent inputs are not converted.
func BuildLink(values *Values, basePath string) string {
	var b strings.Builder
	b.WriteString(basePath)
	b.WriteByte('?')
	first := true
	values.Each(func(key string, val any) {
		if transientKeys[key] || val == nil {
			return
		}
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(formatLinkValue(val))
	})
	return b.String()
}

func formatLinkValue(val any) string {
	switch v := val.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		// the export renderer reads Python-style booleans
		if v {
			return "True"
		}
		return "False"
	case Date:
		return v.String()
	case string:
		return url.QueryEscape(v)
	default:
		return url.QueryEscape(fmt.Sprint(v))
	}
}

// ParseLink rebuilds a coerced value map from a link produced by BuildLink.
// A leading path up to '?' is ignored. Input keys missing from the query come
// back as nil in table order; keys unknown to the table follow as strings.
func ParseLink(link string) (*Values, error) {
	return Inputs.ParseLink(link)
}

func (t *Table) ParseLink(link string) (*Values, error) {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[i+1:]
	}

	parsed := make(map[string]string)
	var extra []string
	for _, pair := range strings.Split(link, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, errors.NewParseError(fmt.Errorf("key %q: %w", rawKey, err))
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return nil, errors.NewParseError(fmt.Errorf("value of %s: %w", key, err))
		}
		if _, seen := parsed[key]; !seen {
			if _, known := t.index[key]; !known {
				extra = append(extra, key)
			}
		}
		parsed[key] = val
	}

	values := NewValues()
	var errs []error
	for _, key := range t.keys {
		raw, ok := parsed[key]
		if !ok {
			values.Set(key, nil)
			continue
		}
		v, err := parseLinkValue(t.fields[t.index[key]], raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values.Set(key, v)
	}
	for _, key := range extra {
		values.Set(key, parsed[key])
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return values, nil
}

func parseLinkValue(f Field, raw string) (any, error) {
	switch f.Kind() {
	case KindSwitch:
		switch raw {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		default:
			return nil, errors.NewCoercionError(f.Key(), raw, nil)
		}
	default:
		return coerceValue(f, raw)
	}
}
