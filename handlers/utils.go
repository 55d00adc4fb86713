package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"template-engine-service/errors"
	"template-engine-service/models"
)

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse writes an error response with the given status code
func writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	errorResp := models.APIError{
		Type:    "error",
		Code:    http.StatusText(statusCode),
		Message: message,
		Details: details,
	}

	writeJSONResponse(w, statusCode, errorResp)
}

// writeAppErrorResponse writes an AppError as HTTP response
func writeAppErrorResponse(w http.ResponseWriter, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		apiError := models.APIError{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}

		writeJSONResponse(w, appErr.GetHTTPStatusCode(), apiError)

		zap.L().Warn("request failed",
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Cause))
		return
	}

	zap.L().Error("unexpected error type", zap.Error(err))
	writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", err.Error())
}

// decodeJSONBody decodes a request body into dst and reports malformed
// payloads as a 400. Returns false when the response was already written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// validateRequest runs a request DTO's validation and reports failures as
// a 400. Returns false when the response was already written.
func validateRequest(w http.ResponseWriter, req interface{ Validate() error }) bool {
	if err := req.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "request validation failed", err.Error())
		return false
	}
	return true
}
