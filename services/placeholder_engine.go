package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"template-engine-service/models"
)

// Suggestion score tiers, highest first. Ties within a tier are broken by
// catalog declaration order.
const (
	scoreExactMatch    = 100
	scorePrefixMatch   = 90
	scoreContainsMatch = 70
	scoreFuzzyMatch    = 50
)

// PlaceholderEngine scans document text for @-prefixed placeholder tokens,
// validates them against a catalog and produces ranked autocomplete
// suggestions. The engine is stateless apart from its immutable catalog,
// so a single instance is safe for concurrent use.
type PlaceholderEngine struct {
	catalog           *PlaceholderCatalog
	defaultMaxResults int
	logger            *zap.Logger
}

// NewPlaceholderEngine creates a placeholder engine over the given catalog.
func NewPlaceholderEngine(catalog *PlaceholderCatalog, defaultMaxResults int, logger *zap.Logger) *PlaceholderEngine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if defaultMaxResults <= 0 {
		defaultMaxResults = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceholderEngine{
		catalog:           catalog,
		defaultMaxResults: defaultMaxResults,
		logger:            logger,
	}
}

// Catalog returns the engine's placeholder catalog.
func (e *PlaceholderEngine) Catalog() *PlaceholderCatalog {
	return e.catalog
}

// GetDefinition returns the catalog entry for a placeholder key, including
// the leading @.
func (e *PlaceholderEngine) GetDefinition(key string) (models.PlaceholderDefinition, bool) {
	return e.catalog.Get(key)
}

// token is one @-run found while scanning text. Position and Length are
// rune offsets so editor frontends can highlight the span directly.
type token struct {
	text     string
	position int
	length   int
	valid    bool
}

func isKeyStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isKeyRune(r rune) bool {
	return isKeyStart(r) || (r >= '0' && r <= '9') || r == '.' || r == '_'
}

// scan walks the text once and returns every @-run in order of occurrence.
// A run beginning with a letter is a grammatically valid token; any other
// @-run, including a bare @, is reported as invalid.
func scan(content string) []token {
	runes := []rune(content)
	var tokens []token

	i := 0
	for i < len(runes) {
		if runes[i] != '@' {
			i++
			continue
		}
		start := i
		j := i + 1
		if j < len(runes) && isKeyStart(runes[j]) {
			j++
			for j < len(runes) && isKeyRune(runes[j]) {
				j++
			}
			// Trailing dots are sentence punctuation, not part of the key.
			for j > start+2 && runes[j-1] == '.' {
				j--
			}
			tokens = append(tokens, token{
				text:     string(runes[start:j]),
				position: start,
				length:   j - start,
				valid:    true,
			})
		} else {
			for j < len(runes) && isKeyRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{
				text:     string(runes[start:j]),
				position: start,
				length:   j - start,
				valid:    false,
			})
		}
		i = j
	}

	return tokens
}

// ParsePlaceholders extracts the distinct grammatically valid placeholder
// tokens from text, in order of first appearance. It is purely lexical and
// does not consult the catalog.
func (e *PlaceholderEngine) ParsePlaceholders(content string) []string {
	placeholders := []string{}
	seen := make(map[string]struct{})

	for _, tok := range scan(content) {
		if !tok.valid {
			continue
		}
		if _, dup := seen[tok.text]; dup {
			continue
		}
		seen[tok.text] = struct{}{}
		placeholders = append(placeholders, tok.text)
	}

	return placeholders
}

// ValidatePlaceholders checks every @-run in the text and reports unknown
// placeholders and invalid syntax in left-to-right order. Every occurrence
// is reported, including repeats of the same token.
func (e *PlaceholderEngine) ValidatePlaceholders(content string) []models.PlaceholderError {
	errs := []models.PlaceholderError{}

	for _, tok := range scan(content) {
		if !tok.valid {
			errs = append(errs, models.PlaceholderError{
				Type:        models.PlaceholderErrorInvalidSyntax,
				Placeholder: tok.text,
				Message:     fmt.Sprintf("Ungültige Platzhalter-Syntax: %q", tok.text),
				Position:    tok.position,
				Length:      tok.length,
			})
			continue
		}
		if _, known := e.catalog.Get(tok.text); !known {
			errs = append(errs, models.PlaceholderError{
				Type:        models.PlaceholderErrorUnknown,
				Placeholder: tok.text,
				Message:     fmt.Sprintf("Unbekannter Platzhalter: %s", tok.text),
				Position:    tok.position,
				Length:      tok.length,
			})
		}
	}

	return errs
}

// ValidateContextRequirements checks whether each registered placeholder
// can be satisfied by the offered context types. A placeholder passes when
// at least one of its required context types is available; placeholders
// without context requirements and unregistered tokens never fail.
func (e *PlaceholderEngine) ValidateContextRequirements(placeholders []string, available []models.ContextType) []models.PlaceholderError {
	availableSet := make(map[models.ContextType]struct{}, len(available))
	for _, ctx := range available {
		availableSet[ctx] = struct{}{}
	}

	errs := []models.PlaceholderError{}
	for _, key := range placeholders {
		def, known := e.catalog.Get(key)
		if !known || len(def.RequiresContext) == 0 {
			continue
		}

		satisfied := false
		for _, required := range def.RequiresContext {
			if _, ok := availableSet[required]; ok {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}

		names := make([]string, len(def.RequiresContext))
		for i, required := range def.RequiresContext {
			names[i] = string(required)
		}
		errs = append(errs, models.PlaceholderError{
			Type:        models.PlaceholderErrorMissingContext,
			Placeholder: key,
			Message:     fmt.Sprintf("Platzhalter %s benötigt einen der folgenden Kontexte: %s", key, strings.Join(names, ", ")),
		})
	}

	return errs
}

// GenerateSuggestions scores every catalog entry against an autocomplete
// query and returns the best matches, sorted by descending score with ties
// broken by catalog order. Queries that do not start with @ yield no
// suggestions; maxResults <= 0 falls back to the configured default.
func (e *PlaceholderEngine) GenerateSuggestions(query string, maxResults int) []models.AutocompleteSuggestion {
	if !strings.HasPrefix(query, "@") {
		return []models.AutocompleteSuggestion{}
	}
	if maxResults <= 0 {
		maxResults = e.defaultMaxResults
	}

	loweredQuery := strings.ToLower(query)
	bareQuery := strings.TrimPrefix(loweredQuery, "@")

	suggestions := []models.AutocompleteSuggestion{}
	for _, def := range e.catalog.All() {
		score := scoreDefinition(def, loweredQuery, bareQuery)
		if score == 0 {
			continue
		}
		suggestions = append(suggestions, models.AutocompleteSuggestion{
			Placeholder: def,
			Score:       score,
			DisplayText: fmt.Sprintf("%s (%s)", def.Key, def.Label),
			InsertText:  def.Key,
		})
	}

	// Catalog order already breaks ties, so the sort must be stable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}
	return suggestions
}

// scoreDefinition assigns the tiered match score for one catalog entry.
// loweredQuery includes the leading @, bareQuery does not.
func scoreDefinition(def models.PlaceholderDefinition, loweredQuery, bareQuery string) int {
	loweredKey := strings.ToLower(def.Key)

	if loweredKey == loweredQuery {
		return scoreExactMatch
	}
	if strings.HasPrefix(loweredKey, loweredQuery) {
		return scorePrefixMatch
	}
	if strings.Contains(loweredKey, loweredQuery) {
		return scoreContainsMatch
	}
	if bareQuery != "" && strings.Contains(strings.ToLower(string(def.Category)), bareQuery) {
		return scoreContainsMatch
	}
	if bareQuery == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(def.Label), bareQuery) ||
		strings.Contains(strings.ToLower(def.Description), bareQuery) {
		return scoreFuzzyMatch
	}
	if matches := fuzzy.Find(bareQuery, []string{strings.TrimPrefix(loweredKey, "@")}); len(matches) > 0 {
		return scoreFuzzyMatch
	}
	return 0
}
