package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"template-engine-service/errors"
	"template-engine-service/models"
	"template-engine-service/services"
)

// PlaceholderHandler handles placeholder-related HTTP requests
type PlaceholderHandler struct {
	placeholders services.PlaceholderService
	logger       *zap.Logger
}

// NewPlaceholderHandler creates a new placeholder handler
func NewPlaceholderHandler(placeholders services.PlaceholderService, logger *zap.Logger) *PlaceholderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceholderHandler{
		placeholders: placeholders,
		logger:       logger,
	}
}

// ParsePlaceholders handles POST /api/v1/placeholders/parse
func (h *PlaceholderHandler) ParsePlaceholders(w http.ResponseWriter, r *http.Request) {
	var req models.ParsePlaceholdersRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	placeholders := h.placeholders.ParsePlaceholders(req.Content)

	writeJSONResponse(w, http.StatusOK, models.ParsePlaceholdersResponse{
		Placeholders: placeholders,
		Count:        len(placeholders),
	})
}

// ValidatePlaceholders handles POST /api/v1/placeholders/validate
func (h *PlaceholderHandler) ValidatePlaceholders(w http.ResponseWriter, r *http.Request) {
	var req models.ValidatePlaceholdersRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	validationErrors := h.placeholders.ValidatePlaceholders(req.Content)

	// Context checks only run when the caller names available contexts.
	if req.AvailableContext != nil {
		parsed := h.placeholders.ParsePlaceholders(req.Content)
		validationErrors = append(validationErrors, h.placeholders.ValidateContextRequirements(parsed, req.AvailableContext)...)
	}

	writeJSONResponse(w, http.StatusOK, models.ValidatePlaceholdersResponse{
		Valid:  len(validationErrors) == 0,
		Errors: validationErrors,
	})
}

// Suggest handles POST /api/v1/placeholders/suggest
func (h *PlaceholderHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	suggestions := h.placeholders.GenerateSuggestions(req.Query, req.MaxResults)

	writeJSONResponse(w, http.StatusOK, models.SuggestResponse{
		Query:       req.Query,
		Suggestions: suggestions,
		Total:       len(suggestions),
	})
}

// CheckContext handles POST /api/v1/placeholders/context-check
func (h *PlaceholderHandler) CheckContext(w http.ResponseWriter, r *http.Request) {
	var req models.ContextCheckRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	contextErrors := h.placeholders.ValidateContextRequirements(req.Placeholders, req.AvailableContext)

	writeJSONResponse(w, http.StatusOK, models.ContextCheckResponse{
		Valid:  len(contextErrors) == 0,
		Errors: contextErrors,
	})
}

// GetCatalog handles GET /api/v1/placeholders
func (h *PlaceholderHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog := h.placeholders.Catalog()

	var defs []models.PlaceholderDefinition
	if category := r.URL.Query().Get("category"); category != "" {
		defs = catalog.ByCategory(models.ContextType(category))
	} else {
		defs = catalog.All()
	}
	if defs == nil {
		defs = []models.PlaceholderDefinition{}
	}

	writeJSONResponse(w, http.StatusOK, models.CatalogResponse{
		Placeholders: defs,
		Total:        len(defs),
	})
}

// GetPlaceholder handles GET /api/v1/placeholders/{key}
func (h *PlaceholderHandler) GetPlaceholder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["key"]

	if key == "" {
		writeErrorResponse(w, http.StatusBadRequest, "placeholder key is required", "")
		return
	}
	// Allow the key both with and without its leading @.
	if !strings.HasPrefix(key, "@") {
		key = "@" + key
	}

	def, ok := h.placeholders.GetDefinition(key)
	if !ok {
		writeAppErrorResponse(w, errors.NewNotFoundError(
			errors.ErrCodeResourceNotFound,
			"placeholder not found: "+key,
			nil,
		))
		return
	}

	writeJSONResponse(w, http.StatusOK, def)
}
