package services

import (
	"template-engine-service/models"
)

// PlaceholderService handles placeholder parsing, validation and
// autocomplete suggestions.
type PlaceholderService interface {
	ParsePlaceholders(content string) []string
	ValidatePlaceholders(content string) []models.PlaceholderError
	ValidateContextRequirements(placeholders []string, available []models.ContextType) []models.PlaceholderError
	GenerateSuggestions(query string, maxResults int) []models.AutocompleteSuggestion
	GetDefinition(key string) (models.PlaceholderDefinition, bool)
	Catalog() *PlaceholderCatalog
}

// ContentValidationService handles document validation and the content
// rule registry.
type ContentValidationService interface {
	ValidateContent(root *models.DocumentNode, ctx *models.ValidationContext) models.ContentValidationSummary
	ValidateContentJSON(raw []byte, ctx *models.ValidationContext) models.ContentValidationSummary
	ValidateRealTime(root *models.DocumentNode) models.RealTimeValidationResult
	ValidateRealTimeJSON(raw []byte) models.RealTimeValidationResult
	ConfigureRule(ruleID string, enabled bool) error
	AddCustomRule(rule ValidationRule) error
	Rules() []models.RuleInfo
	EnabledRules() []models.RuleInfo
	Rule(ruleID string) (models.RuleInfo, bool)
}

// TemplateCheckService bundles placeholder and content checks into the
// combined operations the editor calls.
type TemplateCheckService interface {
	CheckTemplate(req models.TemplateCheckRequest) models.TemplateCheckReport
	ImportMarkdown(req models.ImportMarkdownRequest) models.ImportMarkdownResponse
}
