package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"template-engine-service/config"
	"template-engine-service/errors"
	"template-engine-service/models"
)

// Score penalties per issue severity. Scores start at 100 and are clamped
// to [0, 100].
const (
	penaltyError   = 15
	penaltyWarning = 7
	penaltyInfo    = 2
)

// ruleIDPattern describes valid rule identifiers.
var ruleIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ContentValidator runs a configurable battery of rules over document
// trees and aggregates findings into scored summaries. Validation calls
// are safe for concurrent use; rule configuration is last-write-wins.
type ContentValidator struct {
	mu     sync.RWMutex
	rules  map[string]*ValidationRule
	order  []string
	cfg    config.ValidationConfig
	logger *zap.Logger
}

// NewContentValidator creates a validator with the built-in rule set. A
// zero-value configuration selects the standard thresholds.
func NewContentValidator(cfg config.ValidationConfig, logger *zap.Logger) *ContentValidator {
	if cfg == (config.ValidationConfig{}) {
		cfg = config.ValidationConfig{
			MinContentLength:   30,
			MaxContentLength:   10000,
			HeadingThreshold:   300,
			MaxEmptyParagraphs: 3,
			MaxFormattingRatio: 0.3,
			MaxTraversalDepth:  200,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v := &ContentValidator{
		rules:  make(map[string]*ValidationRule),
		cfg:    cfg,
		logger: logger,
	}
	for _, rule := range builtinRules(cfg) {
		v.rules[rule.ID] = rule
		v.order = append(v.order, rule.ID)
	}
	return v
}

// ValidateContent runs every enabled rule against the tree and returns a
// scored summary. It accepts nil and malformed trees without failing.
func (v *ContentValidator) ValidateContent(root *models.DocumentNode, ctx *models.ValidationContext) models.ContentValidationSummary {
	analysis := AnalyzeDocument(root, v.cfg.MaxTraversalDepth)
	return v.summarize(analysis, ctx)
}

// ValidateContentJSON validates a raw JSON document. Payloads that cannot
// be decoded into a document tree are reported as structural findings in
// the summary rather than as errors.
func (v *ContentValidator) ValidateContentJSON(raw []byte, ctx *models.ValidationContext) models.ContentValidationSummary {
	root, malformed := decodeDocument(raw)
	analysis := AnalyzeDocument(root, v.cfg.MaxTraversalDepth)
	analysis.Malformed = malformed
	return v.summarize(analysis, ctx)
}

// ValidateRealTime reshapes a full validation into the flat arrays the
// editor consumes while the user types. Info findings surface as
// suggestions.
func (v *ContentValidator) ValidateRealTime(root *models.DocumentNode) models.RealTimeValidationResult {
	analysis := AnalyzeDocument(root, v.cfg.MaxTraversalDepth)
	return v.realTimeResult(analysis)
}

// ValidateRealTimeJSON is ValidateRealTime over a raw JSON document.
func (v *ContentValidator) ValidateRealTimeJSON(raw []byte) models.RealTimeValidationResult {
	root, malformed := decodeDocument(raw)
	analysis := AnalyzeDocument(root, v.cfg.MaxTraversalDepth)
	analysis.Malformed = malformed
	return v.realTimeResult(analysis)
}

// ConfigureRule toggles a rule's enabled flag. Unknown rule ids are
// rejected.
func (v *ContentValidator) ConfigureRule(ruleID string, enabled bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	rule, ok := v.rules[ruleID]
	if !ok {
		return errors.NewNotFoundError(errors.ErrCodeResourceNotFound,
			fmt.Sprintf("unknown validation rule: %s", ruleID), models.ErrNotFound)
	}
	rule.Enabled = enabled
	return nil
}

// AddCustomRule registers a caller-defined rule. The rule must carry a
// unique id and a validate function; malformed rules are rejected at
// registration time, not during validation.
func (v *ContentValidator) AddCustomRule(rule ValidationRule) error {
	if err := validateRuleShape(rule); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInput, "invalid validation rule", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.rules[rule.ID]; exists {
		return errors.NewConflictError(errors.ErrCodeResourceConflict,
			fmt.Sprintf("validation rule already registered: %s", rule.ID), models.ErrDuplicateRule)
	}

	registered := rule
	v.rules[rule.ID] = &registered
	v.order = append(v.order, rule.ID)
	return nil
}

// Rules returns every registered rule in registration order.
func (v *ContentValidator) Rules() []models.RuleInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	infos := make([]models.RuleInfo, 0, len(v.order))
	for _, id := range v.order {
		infos = append(infos, v.rules[id].Info())
	}
	return infos
}

// EnabledRules returns the currently enabled rules in registration order.
func (v *ContentValidator) EnabledRules() []models.RuleInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	infos := make([]models.RuleInfo, 0, len(v.order))
	for _, id := range v.order {
		if rule := v.rules[id]; rule.Enabled {
			infos = append(infos, rule.Info())
		}
	}
	return infos
}

// Rule returns the introspection view of a single rule.
func (v *ContentValidator) Rule(ruleID string) (models.RuleInfo, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rule, ok := v.rules[ruleID]
	if !ok {
		return models.RuleInfo{}, false
	}
	return rule.Info(), true
}

// validateRuleShape checks a rule definition before registration.
func validateRuleShape(rule ValidationRule) error {
	if rule.Validate == nil {
		return fmt.Errorf("rule %q has no validate function", rule.ID)
	}
	return validation.ValidateStruct(&rule,
		validation.Field(&rule.ID, validation.Required, validation.Match(ruleIDPattern)),
		validation.Field(&rule.Name, validation.Required),
		validation.Field(&rule.Severity, validation.Required,
			validation.In(models.SeverityError, models.SeverityWarning, models.SeverityInfo)),
		validation.Field(&rule.Category, validation.Required,
			validation.In(models.CategoryStructure, models.CategoryContent, models.CategoryVariables, models.CategoryFormatting, models.CategoryAccessibility)),
	)
}

// decodeDocument decodes raw JSON into a document tree. A JSON null or
// empty payload yields a nil tree; anything undecodable is flagged as
// malformed so the structural rules can report it.
func decodeDocument(raw []byte) (*models.DocumentNode, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}

	var root models.DocumentNode
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, true
	}
	return &root, false
}

// summarize runs the enabled rules over an analysis and builds the
// aggregated summary.
func (v *ContentValidator) summarize(analysis *DocumentAnalysis, ctx *models.ValidationContext) models.ContentValidationSummary {
	issues := v.collectIssues(analysis, ctx)

	summary := models.ContentValidationSummary{
		IssuesByCategory: make(map[models.RuleCategory][]models.ContentIssue),
		Recommendations:  []string{},
	}
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityError:
			summary.ErrorCount++
		case models.SeverityWarning:
			summary.WarningCount++
		default:
			summary.InfoCount++
		}
		summary.IssuesByCategory[issue.Category] = append(summary.IssuesByCategory[issue.Category], issue)
	}

	score := 100 - penaltyError*summary.ErrorCount - penaltyWarning*summary.WarningCount - penaltyInfo*summary.InfoCount
	if score < 0 {
		score = 0
	}
	summary.Score = score
	summary.IsValid = summary.ErrorCount == 0
	summary.Recommendations = buildRecommendations(issues, summary)
	return summary
}

// realTimeResult flattens rule findings into the editor's live shape.
func (v *ContentValidator) realTimeResult(analysis *DocumentAnalysis) models.RealTimeValidationResult {
	issues := v.collectIssues(analysis, nil)

	result := models.RealTimeValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityError:
			result.Errors = append(result.Errors, issue.Message)
		case models.SeverityWarning:
			result.Warnings = append(result.Warnings, issue.Message)
		default:
			result.Suggestions = append(result.Suggestions, issue.Message)
		}
	}
	result.IsValid = len(result.Errors) == 0
	return result
}

// collectIssues runs the enabled rules in registration order.
func (v *ContentValidator) collectIssues(analysis *DocumentAnalysis, ctx *models.ValidationContext) []models.ContentIssue {
	var issues []models.ContentIssue
	for _, rule := range v.snapshotEnabled() {
		for _, message := range v.runRule(rule, analysis, ctx) {
			issues = append(issues, models.ContentIssue{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Category: rule.Category,
				Message:  message,
			})
		}
	}
	return issues
}

// snapshotEnabled copies the enabled rules so a validation run is not
// affected by concurrent configuration changes.
func (v *ContentValidator) snapshotEnabled() []*ValidationRule {
	v.mu.RLock()
	defer v.mu.RUnlock()

	rules := make([]*ValidationRule, 0, len(v.order))
	for _, id := range v.order {
		if rule := v.rules[id]; rule.Enabled {
			rules = append(rules, rule)
		}
	}
	return rules
}

// runRule executes one rule, isolating panics so a misbehaving custom rule
// cannot abort the whole validation pass.
func (v *ContentValidator) runRule(rule *ValidationRule, analysis *DocumentAnalysis, ctx *models.ValidationContext) (messages []string) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("validation rule panicked",
				zap.String("rule_id", rule.ID),
				zap.Any("panic", r))
			messages = nil
		}
	}()
	return rule.Validate(analysis, ctx)
}

// buildRecommendations derives the human-readable recommendation list from
// the issue mix. Repeated messages are grouped and annotated with their
// occurrence count.
func buildRecommendations(issues []models.ContentIssue, summary models.ContentValidationSummary) []string {
	recommendations := []string{}
	if summary.ErrorCount > 0 {
		recommendations = append(recommendations, "Bitte beheben Sie die gefundenen Fehler, bevor Sie die Vorlage verwenden.")
	} else if summary.Score > 90 {
		recommendations = append(recommendations, "Sehr gut! Die Vorlage erfüllt alle wichtigen Qualitätskriterien.")
	}

	counts := make(map[string]int)
	var order []string
	for _, issue := range issues {
		if counts[issue.Message] == 0 {
			order = append(order, issue.Message)
		}
		counts[issue.Message]++
	}
	for _, message := range order {
		if n := counts[message]; n > 1 {
			recommendations = append(recommendations, fmt.Sprintf("%s (%d Vorkommen)", message, n))
		} else {
			recommendations = append(recommendations, message)
		}
	}
	return recommendations
}
