// internal/workers/sidebar/download-link/models.go
package downloadlink

type Input struct {
	InputValues  []any  `json:"inputValues"`
	SubmissionID string `json:"submissionId,omitempty"`
}

type Output struct {
	DownloadAsPdfLink string `json:"downloadAsPdfLink"`
	SubmissionID      string `json:"submissionId"`
}
