package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"template-engine-service/models"
	"template-engine-service/services"
)

// TemplateHandler handles template-level HTTP requests
type TemplateHandler struct {
	checker services.TemplateCheckService
	logger  *zap.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(checker services.TemplateCheckService, logger *zap.Logger) *TemplateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateHandler{
		checker: checker,
		logger:  logger,
	}
}

// CheckTemplate handles POST /api/v1/templates/check
func (h *TemplateHandler) CheckTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.TemplateCheckRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	report := h.checker.CheckTemplate(req)

	writeJSONResponse(w, http.StatusOK, report)
}

// ImportMarkdown handles POST /api/v1/templates/import
func (h *TemplateHandler) ImportMarkdown(w http.ResponseWriter, r *http.Request) {
	var req models.ImportMarkdownRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	resp := h.checker.ImportMarkdown(req)

	writeJSONResponse(w, http.StatusOK, resp)
}
