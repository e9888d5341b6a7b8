// pkg/registry/sidebar.go
package registry

import (
	"encoding/json"
	"time"

	"chime-sidebar/internal/common/config"
	"chime-sidebar/internal/common/errors"
	"chime-sidebar/internal/sidebar"
)

const (
	ActivityUpdateParameters = "sidebar.parameters.update"
	ActivityDownloadLink     = "sidebar.link.build"

	categorySidebar = "sidebar"
)

// SidebarActivities describes the two sidebar workers. The input schema
// lists the expected value order and the per-field constraints of the
// current input table.
func SidebarActivities(timeout time.Duration) []Activity {
	in := inputSchema()
	return []Activity{
		{
			ID:                   ActivityUpdateParameters,
			DisplayName:          "Update Model Parameters",
			Description:          "Coerces the sidebar values and assembles the SIR model parameters",
			Category:             categorySidebar,
			Version:              "1.0.0",
			TaskType:             config.WorkerUpdateParameters,
			ImplementationStatus: "completed",
			InputSchema:          in,
			OutputSchema: objectSchema(map[string]interface{}{
				"pars":           map[string]interface{}{"type": "object"},
				"parsSerialized": map[string]interface{}{"type": "string"},
				"parsKey":        map[string]interface{}{"type": "string"},
				"submissionId":   map[string]interface{}{"type": "string"},
			}, "pars", "parsSerialized", "submissionId"),
			ErrorCodes: bpmnCodes(
				errors.ErrCodeSchemaMismatch,
				errors.ErrCodeCoercionFailed,
				errors.ErrCodeConfigurationError,
				errors.ErrCodeCacheUnavailable,
			),
			Timeout: timeout.String(),
			Retries: errors.GetRetryCount(errors.ErrCodeCacheUnavailable),
			Tags:    []string{"chime", "sidebar", "parameters"},
		},
		{
			ID:                   ActivityDownloadLink,
			DisplayName:          "Build Download Link",
			Description:          "Renders the sidebar values as the PDF export link",
			Category:             categorySidebar,
			Version:              "1.0.0",
			TaskType:             config.WorkerDownloadLink,
			ImplementationStatus: "completed",
			InputSchema:          in,
			OutputSchema: objectSchema(map[string]interface{}{
				"downloadAsPdfLink": map[string]interface{}{"type": "string"},
				"submissionId":      map[string]interface{}{"type": "string"},
			}, "downloadAsPdfLink", "submissionId"),
			ErrorCodes: bpmnCodes(
				errors.ErrCodeSchemaMismatch,
				errors.ErrCodeCoercionFailed,
			),
			Timeout: timeout.String(),
			Tags:    []string{"chime", "sidebar", "export"},
		},
	}
}

func inputSchema() map[string]interface{} {
	keys := sidebar.OrderedInputKeys()
	schema := objectSchema(map[string]interface{}{
		"inputValues": map[string]interface{}{
			"type":     "array",
			"minItems": len(keys),
			"maxItems": len(keys),
			"x-order":  keys,
		},
		"submissionId": map[string]interface{}{"type": "string"},
	}, "inputValues")
	schema["x-fields"] = toMap(sidebar.Inputs.JSONSchema())
	return schema
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// bpmnCodes lists the distinct BPMN codes thrown for codes, in order.
func bpmnCodes(codes ...errors.ErrorCode) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range codes {
		bpmn := errors.BPMNErrorMapping[c]
		if bpmn == "" || seen[bpmn] {
			continue
		}
		seen[bpmn] = true
		out = append(out, bpmn)
	}
	return out
}

func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
