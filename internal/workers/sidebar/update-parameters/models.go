// internal/workers/sidebar/update-parameters/models.go
package updateparameters

import "chime-sidebar/internal/sidebar"

// Input carries the raw sidebar values in input order.
type Input struct {
	InputValues  []any  `json:"inputValues"`
	SubmissionID string `json:"submissionId,omitempty"`
}

// Output carries the assembled parameters both as a struct and as the
// serialized blob the simulation engine consumes.
type Output struct {
	Pars           *sidebar.Parameters `json:"pars"`
	ParsSerialized string              `json:"parsSerialized"`
	ParsKey        string              `json:"parsKey,omitempty"`
	SubmissionID   string              `json:"submissionId"`
}
