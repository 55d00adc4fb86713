package models

import "time"

// ParsePlaceholdersResponse lists the distinct placeholders found in a
// piece of document text, in order of first appearance.
type ParsePlaceholdersResponse struct {
	Placeholders []string `json:"placeholders"`
	Count        int      `json:"count"`
}

// ValidatePlaceholdersResponse reports the outcome of a placeholder check.
type ValidatePlaceholdersResponse struct {
	Valid  bool               `json:"valid"`
	Errors []PlaceholderError `json:"errors"`
}

// SuggestResponse carries ranked autocomplete suggestions for a query.
type SuggestResponse struct {
	Query       string                   `json:"query"`
	Suggestions []AutocompleteSuggestion `json:"suggestions"`
	Total       int                      `json:"total"`
}

// CatalogResponse lists placeholder definitions, optionally filtered by
// category.
type CatalogResponse struct {
	Placeholders []PlaceholderDefinition `json:"placeholders"`
	Total        int                     `json:"total"`
}

// ContextCheckResponse reports whether placeholders are satisfiable by the
// offered context types.
type ContextCheckResponse struct {
	Valid  bool               `json:"valid"`
	Errors []PlaceholderError `json:"errors"`
}

// RulesResponse lists the registered content validation rules.
type RulesResponse struct {
	Rules []RuleInfo `json:"rules"`
	Total int        `json:"total"`
}

// TemplateCheckReport is the combined result of checking a template's
// placeholders and content in one pass.
type TemplateCheckReport struct {
	Name              string                    `json:"name,omitempty"`
	Valid             bool                      `json:"valid"`
	Placeholders      []string                  `json:"placeholders"`
	PlaceholderErrors []PlaceholderError        `json:"placeholder_errors"`
	Content           *ContentValidationSummary `json:"content,omitempty"`
	CheckedAt         time.Time                 `json:"checked_at"`
}

// ImportMarkdownResponse carries the document tree produced from Markdown
// source together with an initial validation pass over it.
type ImportMarkdownResponse struct {
	Document     *DocumentNode             `json:"document"`
	Placeholders []string                  `json:"placeholders"`
	Summary      *ContentValidationSummary `json:"summary,omitempty"`
}

// APIError represents standardized error response
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
