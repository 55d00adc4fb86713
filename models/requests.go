package models

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ParsePlaceholdersRequest asks for the distinct placeholders used in a
// piece of document text. Empty content is allowed and yields no results.
type ParsePlaceholdersRequest struct {
	Content string `json:"content"`
}

// ValidatePlaceholdersRequest asks for a full placeholder check of document
// text, optionally against the context types a document binds.
type ValidatePlaceholdersRequest struct {
	Content          string        `json:"content"`
	AvailableContext []ContextType `json:"available_context,omitempty"`
}

// SuggestRequest asks for autocomplete suggestions matching a query.
type SuggestRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Validate checks the request against the supported result window.
func (r SuggestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxResults, validation.Min(0), validation.Max(50)),
	)
}

// ContextCheckRequest asks whether a set of placeholders can be satisfied
// by the given context types.
type ContextCheckRequest struct {
	Placeholders     []string      `json:"placeholders"`
	AvailableContext []ContextType `json:"available_context"`
}

// ValidateContentRequest asks for a structural validation of an editor
// document. The document is kept raw so malformed trees can be reported as
// findings instead of transport errors.
type ValidateContentRequest struct {
	Document          json.RawMessage `json:"document"`
	RequiredVariables []string        `json:"required_variables,omitempty"`
	ExistingVariables []string        `json:"existing_variables,omitempty"`
}

// Validate ensures a document payload is present.
func (r ValidateContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Document, validation.Required),
	)
}

// Context assembles the variable context carried by the request.
func (r ValidateContentRequest) Context() *ValidationContext {
	if len(r.RequiredVariables) == 0 && len(r.ExistingVariables) == 0 {
		return nil
	}
	return &ValidationContext{
		RequiredVariables: r.RequiredVariables,
		ExistingVariables: r.ExistingVariables,
	}
}

// ValidateRealTimeRequest asks for the lightweight validation shape used by
// the editor while typing.
type ValidateRealTimeRequest struct {
	Document json.RawMessage `json:"document"`
}

// Validate ensures a document payload is present.
func (r ValidateRealTimeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Document, validation.Required),
	)
}

// ConfigureRuleRequest enables or disables a validation rule.
type ConfigureRuleRequest struct {
	Enabled *bool `json:"enabled"`
}

// Validate ensures the enabled flag was sent. NotNil is used instead of
// Required so an explicit false is accepted.
func (r ConfigureRuleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Enabled, validation.NotNil),
	)
}

// TemplateCheckRequest asks for a combined placeholder and content check of
// a document template. Either the editor document tree or plain text
// content must be provided; when both are present the tree drives content
// validation and the text drives placeholder parsing.
type TemplateCheckRequest struct {
	Name              string          `json:"name,omitempty"`
	Document          json.RawMessage `json:"document,omitempty"`
	Content           string          `json:"content,omitempty"`
	AvailableContext  []ContextType   `json:"available_context,omitempty"`
	RequiredVariables []string        `json:"required_variables,omitempty"`
	ExistingVariables []string        `json:"existing_variables,omitempty"`
}

// Validate ensures at least one representation of the template was sent.
func (r TemplateCheckRequest) Validate() error {
	if len(r.Document) == 0 && strings.TrimSpace(r.Content) == "" {
		return validation.Errors{
			"document": validation.ErrRequired,
		}
	}
	return nil
}

// ImportMarkdownRequest asks for a Markdown source to be converted into an
// editor document tree.
type ImportMarkdownRequest struct {
	Markdown string `json:"markdown"`
}

// Validate ensures Markdown source was sent.
func (r ImportMarkdownRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Markdown, validation.Required),
	)
}
