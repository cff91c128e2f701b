package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/hiernet/pkg/errors"
)

var validate = validator.New()

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondRaw(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	respondJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// statusOf maps an error code to an HTTP status.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeNodeNotFound, errors.ErrCodeNotFound, errors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID, errors.ErrCodeCancelled:
		return http.StatusConflict
	case errors.ErrCodeUnsupportedVer:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	case errors.ErrCodeDanglingPath, errors.ErrCodeInconsistent, errors.ErrCodeInternal:
		return http.StatusInternalServerError
	}
	if errors.IsValidation(errors.New(code, "")) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v and validates its tags.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid request body: %v", err)
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(errors.ErrCodeInvalidInput, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " is invalid"
	}
}
