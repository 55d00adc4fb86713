package models

// Severity grades a content issue.
type Severity string

// Issue severities, ordered from most to least serious.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// RuleCategory groups validation rules by the aspect of a document they
// inspect.
type RuleCategory string

// Rule categories.
const (
	CategoryStructure     RuleCategory = "structure"
	CategoryContent       RuleCategory = "content"
	CategoryVariables     RuleCategory = "variables"
	CategoryFormatting    RuleCategory = "formatting"
	CategoryAccessibility RuleCategory = "accessibility"
)

// ContentIssue is one finding produced by a validation rule. A rule that
// fires several times yields one issue per occurrence.
type ContentIssue struct {
	RuleID   string       `json:"rule_id"`
	Severity Severity     `json:"severity"`
	Category RuleCategory `json:"category"`
	Message  string       `json:"message"`
}

// ValidationContext carries template variable knowledge into a content
// validation run. Both lists are optional.
type ValidationContext struct {
	RequiredVariables []string `json:"required_variables,omitempty"`
	ExistingVariables []string `json:"existing_variables,omitempty"`
}

// ContentValidationSummary is the aggregated result of running all enabled
// rules against a document.
type ContentValidationSummary struct {
	IsValid          bool                            `json:"is_valid"`
	Score            int                             `json:"score"`
	ErrorCount       int                             `json:"error_count"`
	WarningCount     int                             `json:"warning_count"`
	InfoCount        int                             `json:"info_count"`
	IssuesByCategory map[RuleCategory][]ContentIssue `json:"issues_by_category"`
	Recommendations  []string                        `json:"recommendations"`
}

// TotalIssues returns the combined number of findings across severities.
func (s ContentValidationSummary) TotalIssues() int {
	return s.ErrorCount + s.WarningCount + s.InfoCount
}

// RealTimeValidationResult is the lightweight result shape consumed by the
// editor while the user types. Info level findings surface as suggestions.
type RealTimeValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// RuleInfo describes a registered validation rule for introspection
// endpoints and tooling.
type RuleInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Severity    Severity     `json:"severity"`
	Category    RuleCategory `json:"category"`
	Enabled     bool         `json:"enabled"`
}
