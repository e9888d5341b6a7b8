package server

import (
	stderrors "errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"chime-sidebar/internal/common/errors"
	"chime-sidebar/internal/sidebar"
	"chime-sidebar/internal/sidebar/parscache"
	downloadlink "chime-sidebar/internal/workers/sidebar/download-link"
	updateparameters "chime-sidebar/internal/workers/sidebar/update-parameters"
)

const maxBodyBytes = 1 << 20

type submission struct {
	InputValues  []any  `json:"inputValues"`
	SubmissionID string `json:"submissionId,omitempty"`
}

type inputsResponse struct {
	Inputs          []sidebar.Descriptor     `json:"inputs"`
	OrderedKeys     []string                 `json:"orderedInputKeys"`
	ChangedElements []sidebar.ChangedElement `json:"changedElements"`
}

func (s *Server) handleInputs(w http.ResponseWriter, r *http.Request) {
	descriptors, err := sidebar.Inputs.Describe(sidebar.DateOf(s.now()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputsResponse{
		Inputs:          descriptors,
		OrderedKeys:     sidebar.OrderedInputKeys(),
		ChangedElements: sidebar.Inputs.ChangedElements(),
	})
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	body, err := decodeSubmission(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.Parameters.Execute(r.Context(), &updateparameters.Input{
		InputValues:  body.InputValues,
		SubmissionID: body.SubmissionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDownloadLink(w http.ResponseWriter, r *http.Request) {
	body, err := decodeSubmission(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.deps.Link.Execute(r.Context(), &downloadlink.Input{
		InputValues:  body.InputValues,
		SubmissionID: body.SubmissionID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePars(w http.ResponseWriter, r *http.Request) {
	if s.deps.Cache == nil {
		http.NotFound(w, r)
		return
	}
	blob, err := s.deps.Cache.Get(r.Context(), r.PathValue("key"))
	if stderrors.Is(err, parscache.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, blob)
}

func decodeSubmission(r *http.Request) (*submission, error) {
	var body submission
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, errors.NewParseError(err)
	}
	return &body, nil
}

// statusFor maps the first StandardError in err to an HTTP status.
func statusFor(err error) int {
	all := errors.Flatten(err)
	if len(all) == 0 {
		return http.StatusInternalServerError
	}
	switch all[0].Code {
	case errors.ErrCodeSchemaMismatch:
		return http.StatusConflict
	case errors.ErrCodeCoercionFailed, errors.ErrCodeParseError:
		return http.StatusBadRequest
	case errors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCacheUnavailable, errors.ErrCodeExternalService, errors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	stdErr := errors.Normalize(err)
	fields := map[string]interface{}{
		"path":      r.URL.Path,
		"status":    status,
		"errorCode": string(stdErr.Code),
		"field":     stdErr.Field(),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Info("request rejected", fields)
	}
	writeJSON(w, status, map[string]interface{}{"error": stdErr})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
