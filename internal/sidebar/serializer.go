package sidebar

import (
	"github.com/goccy/go-json"

	"chime-sidebar/internal/common/errors"
)

// SerializeParameters renders pars in the wire format kept in the page's
// hidden state: snake_case keys, YYYY-MM-DD dates, null for unset fields.
func SerializeParameters(pars *Parameters) (string, error) {
	data, err := json.Marshal(pars)
	if err != nil {
		return "", errors.NewSerializationFailedError(err)
	}
	return string(data), nil
}

// DeserializeParameters parses a blob written by SerializeParameters.
func DeserializeParameters(blob string) (*Parameters, error) {
	var pars Parameters
	if err := json.Unmarshal([]byte(blob), &pars); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &pars, nil
}
