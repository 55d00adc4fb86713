package models

import "errors"

// Common domain errors returned by services and mapped to HTTP status codes
// in the handler layer.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned when request data fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateRule is returned when registering a rule whose ID is taken.
	ErrDuplicateRule = errors.New("rule already registered")
)

// ContextType identifies an entity kind that can be bound to a document
// when it is rendered, such as a tenant or an apartment.
type ContextType string

// Known context types. Placeholder categories use the same identifiers.
const (
	ContextDatum     ContextType = "datum"
	ContextMieter    ContextType = "mieter"
	ContextWohnung   ContextType = "wohnung"
	ContextHaus      ContextType = "haus"
	ContextVermieter ContextType = "vermieter"
)

// PlaceholderDefinition describes a single placeholder available to
// document authors. Key includes the leading @ and is the exact token
// authors type into document text.
type PlaceholderDefinition struct {
	Key             string        `json:"key" yaml:"key"`
	Label           string        `json:"label" yaml:"label"`
	Description     string        `json:"description" yaml:"description"`
	Category        ContextType   `json:"category" yaml:"category"`
	Example         string        `json:"example,omitempty" yaml:"example,omitempty"`
	RequiresContext []ContextType `json:"requires_context,omitempty" yaml:"requires_context,omitempty"`
}

// PlaceholderErrorType classifies a placeholder validation finding.
type PlaceholderErrorType string

// Placeholder error types.
const (
	PlaceholderErrorUnknown        PlaceholderErrorType = "unknown_placeholder"
	PlaceholderErrorInvalidSyntax  PlaceholderErrorType = "invalid_syntax"
	PlaceholderErrorMissingContext PlaceholderErrorType = "missing_context"
)

// PlaceholderError reports one problem found while validating placeholders
// in document text. Position and Length are rune offsets into the original
// text so editor frontends can highlight the exact range; both are zero for
// findings that do not refer to a text range.
type PlaceholderError struct {
	Type        PlaceholderErrorType `json:"type"`
	Placeholder string               `json:"placeholder"`
	Message     string               `json:"message"`
	Position    int                  `json:"position"`
	Length      int                  `json:"length"`
}

// AutocompleteSuggestion is one ranked catalog entry returned for an
// autocomplete query.
type AutocompleteSuggestion struct {
	Placeholder PlaceholderDefinition `json:"placeholder"`
	Score       int                   `json:"score"`
	DisplayText string                `json:"display_text"`
	InsertText  string                `json:"insert_text"`
}
