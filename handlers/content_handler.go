package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"template-engine-service/errors"
	"template-engine-service/models"
	"template-engine-service/services"
)

// ContentHandler handles content validation HTTP requests
type ContentHandler struct {
	validator services.ContentValidationService
	cache     *services.ValidationCache
	metrics   services.MetricsService
	logger    *zap.Logger
}

// NewContentHandler creates a new content handler. Cache and metrics are
// optional.
func NewContentHandler(validator services.ContentValidationService, cache *services.ValidationCache, metrics services.MetricsService, logger *zap.Logger) *ContentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler{
		validator: validator,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// ValidateContent handles POST /api/v1/content/validate
func (h *ContentHandler) ValidateContent(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateContentRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	vctx := req.Context()

	if h.cache != nil {
		key := h.cache.Key(req.Document, vctx)
		if summary, ok := h.cache.Get(key); ok {
			h.countValidation("cache_hit")
			writeJSONResponse(w, http.StatusOK, summary)
			return
		}

		summary := h.validator.ValidateContentJSON(req.Document, vctx)
		h.cache.Set(key, summary)
		h.countValidation("cache_miss")
		writeJSONResponse(w, http.StatusOK, summary)
		return
	}

	summary := h.validator.ValidateContentJSON(req.Document, vctx)
	h.countValidation("uncached")
	writeJSONResponse(w, http.StatusOK, summary)
}

// ValidateRealTime handles POST /api/v1/content/validate-realtime
func (h *ContentHandler) ValidateRealTime(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateRealTimeRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	result := h.validator.ValidateRealTimeJSON(req.Document)

	writeJSONResponse(w, http.StatusOK, result)
}

// GetRules handles GET /api/v1/content/rules
func (h *ContentHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	rules := h.validator.Rules()

	writeJSONResponse(w, http.StatusOK, models.RulesResponse{
		Rules: rules,
		Total: len(rules),
	})
}

// GetRule handles GET /api/v1/content/rules/{id}
func (h *ContentHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ruleID := vars["id"]

	if ruleID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "rule id is required", "")
		return
	}

	rule, ok := h.validator.Rule(ruleID)
	if !ok {
		writeAppErrorResponse(w, errors.NewNotFoundError(
			errors.ErrCodeResourceNotFound,
			"validation rule not found: "+ruleID,
			nil,
		))
		return
	}

	writeJSONResponse(w, http.StatusOK, rule)
}

// ConfigureRule handles PUT /api/v1/content/rules/{id}
func (h *ContentHandler) ConfigureRule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ruleID := vars["id"]

	if ruleID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "rule id is required", "")
		return
	}

	var req models.ConfigureRuleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	if err := h.validator.ConfigureRule(ruleID, *req.Enabled); err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	// Cached summaries were produced by the previous rule set.
	if h.cache != nil {
		h.cache.Invalidate()
	}

	h.logger.Info("validation rule configured",
		zap.String("rule_id", ruleID),
		zap.Bool("enabled", *req.Enabled))

	rule, _ := h.validator.Rule(ruleID)
	writeJSONResponse(w, http.StatusOK, rule)
}

// countValidation increments the validation counter when metrics are on.
func (h *ContentHandler) countValidation(outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.IncrementCounter("content.validate.requests", map[string]string{
		"outcome": outcome,
	})
}
