package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"libraryadmin/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Meta    any  `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   ErrorResponseBody `json:"error"`
	Meta    any               `json:"meta,omitempty"`
}

type ErrorResponseBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func buildMeta(r *http.Request, customMeta map[string]any) any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(customMeta) == 0 {
		return nil
	}
	meta := make(map[string]any, len(customMeta)+1)
	if requestID != "" {
		meta["request_id"] = requestID
	}
	for k, v := range customMeta {
		meta[k] = v
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// JSONSuccess writes a 200 envelope with data and optional extra meta.
func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, meta),
	})
}

func JSONSuccessCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    buildMeta(r, nil),
	})
}

func JSONSuccessNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code string, message string, details []ErrorDetail) {
	writeJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error: ErrorResponseBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Meta: buildMeta(r, nil),
	})
}

// WriteError renders err as an error envelope. *apperr.Error values keep their
// code and message; anything else is logged and hidden behind a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.ErrorContext(r.Context(), "unhandled error",
			"error", err, "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r))
		JSONError(w, r, http.StatusInternalServerError, string(apperr.CodeInternal), "Internal server error", nil)
		return
	}

	if appErr.Code == apperr.CodeUnavailable || appErr.Code == apperr.CodeInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"error", err, "code", appErr.Code, "path", r.URL.Path, "request_id", RequestIDFrom(r))
	}
	JSONError(w, r, appErr.HTTPStatus(), string(appErr.Code), appErr.Message, detailsOf(appErr))
}

func detailsOf(e *apperr.Error) []ErrorDetail {
	fields, ok := e.Details.(map[string]string)
	if !ok || len(fields) == 0 {
		return nil
	}
	out := make([]ErrorDetail, 0, len(fields))
	for f, msg := range fields {
		out = append(out, ErrorDetail{Field: f, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// DecodeJSON decodes the request body into dst. Malformed bodies and bodies over
// the size limit are validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid JSON body").WithCause(err)
	}
	return nil
}
