package services

import (
	"fmt"
	"regexp"

	"template-engine-service/config"
	"template-engine-service/models"
)

// mentionIDPattern describes valid variable identifiers carried by mention
// nodes: a letter, then letters, digits or underscores, never ending in an
// underscore.
var mentionIDPattern = regexp.MustCompile(`^[a-zA-Z](?:[a-zA-Z0-9_]*[a-zA-Z0-9])?$`)

// RuleFunc inspects an analyzed document and returns one message per
// finding. The validator tags each message with the owning rule's id,
// severity and category.
type RuleFunc func(analysis *DocumentAnalysis, ctx *models.ValidationContext) []string

// ValidationRule is one entry of the content rule registry. Built-in and
// caller-registered rules share this shape.
type ValidationRule struct {
	ID          string
	Name        string
	Description string
	Severity    models.Severity
	Category    models.RuleCategory
	Enabled     bool
	Validate    RuleFunc
}

// Info returns the introspection view of the rule.
func (r *ValidationRule) Info() models.RuleInfo {
	return models.RuleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Severity:    r.Severity,
		Category:    r.Category,
		Enabled:     r.Enabled,
	}
}

// builtinRules returns the default rule set in evaluation order, with
// thresholds taken from configuration.
func builtinRules(cfg config.ValidationConfig) []*ValidationRule {
	return []*ValidationRule{
		{
			ID:          "empty_content",
			Name:        "Leerer Inhalt",
			Description: "Prüft, ob das Dokument sichtbaren Inhalt besitzt",
			Severity:    models.SeverityError,
			Category:    models.CategoryStructure,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.Malformed {
					return nil
				}
				if a.Root == nil || !a.HasContent {
					return []string{"Das Dokument hat keinen Inhalt"}
				}
				return nil
			},
		},
		{
			ID:          "invalid_structure",
			Name:        "Ungültige Struktur",
			Description: "Prüft, ob der Dokumentbaum eine gültige Form hat",
			Severity:    models.SeverityError,
			Category:    models.CategoryStructure,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				var msgs []string
				if a.Malformed {
					msgs = append(msgs, "Das Dokument konnte nicht als Dokumentstruktur gelesen werden")
				} else if a.Root != nil && a.Root.Type != models.NodeDoc {
					msgs = append(msgs, "Der Wurzelknoten muss vom Typ 'doc' sein")
				}
				if a.Cyclic {
					msgs = append(msgs, "Die Dokumentstruktur enthält zirkuläre Verweise")
				}
				if a.Truncated {
					msgs = append(msgs, "Die Dokumentstruktur ist zu groß oder zu tief verschachtelt")
				}
				return msgs
			},
		},
		{
			ID:          "missing_headings",
			Name:        "Fehlende Überschriften",
			Description: "Empfiehlt Überschriften für längere Inhalte",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryStructure,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.TextLength > cfg.HeadingThreshold && len(a.Headings) == 0 {
					return []string{"Längere Inhalte sollten durch Überschriften gegliedert werden"}
				}
				return nil
			},
		},
		{
			ID:          "empty_paragraphs",
			Name:        "Leere Absätze",
			Description: "Meldet eine auffällige Zahl leerer Absätze",
			Severity:    models.SeverityInfo,
			Category:    models.CategoryStructure,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.EmptyParagraphCount > cfg.MaxEmptyParagraphs {
					return []string{fmt.Sprintf("Das Dokument enthält %d leere Absätze", a.EmptyParagraphCount)}
				}
				return nil
			},
		},
		{
			ID:          "content_too_short",
			Name:        "Inhalt zu kurz",
			Description: "Prüft die Mindestlänge des Textinhalts",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryContent,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.TextLength > 0 && a.TextLength < cfg.MinContentLength {
					return []string{fmt.Sprintf("Der Inhalt ist mit %d Zeichen sehr kurz (empfohlen: mindestens %d)", a.TextLength, cfg.MinContentLength)}
				}
				return nil
			},
		},
		{
			ID:          "content_too_long",
			Name:        "Inhalt zu lang",
			Description: "Prüft die Maximallänge des Textinhalts",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryContent,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.TextLength > cfg.MaxContentLength {
					return []string{fmt.Sprintf("Der Inhalt ist mit %d Zeichen sehr lang (empfohlen: höchstens %d)", a.TextLength, cfg.MaxContentLength)}
				}
				return nil
			},
		},
		{
			ID:          "invalid_variables",
			Name:        "Ungültige Variablen",
			Description: "Prüft Variablennamen in Mention-Knoten",
			Severity:    models.SeverityError,
			Category:    models.CategoryVariables,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				var msgs []string
				for _, mention := range a.Mentions {
					if !mentionIDPattern.MatchString(mention.ID) {
						msgs = append(msgs, fmt.Sprintf("Ungültiger Variablenname: %q", mention.ID))
					}
				}
				return msgs
			},
		},
		{
			ID:          "missing_required_variables",
			Name:        "Fehlende Pflichtvariablen",
			Description: "Prüft, ob alle vorgeschriebenen Variablen verwendet werden",
			Severity:    models.SeverityError,
			Category:    models.CategoryVariables,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, ctx *models.ValidationContext) []string {
				if ctx == nil || len(ctx.RequiredVariables) == 0 {
					return nil
				}
				used := mentionIDSet(a.Mentions)
				var msgs []string
				for _, id := range ctx.RequiredVariables {
					if _, ok := used[id]; !ok {
						msgs = append(msgs, fmt.Sprintf("Erforderliche Variable fehlt im Dokument: %s", id))
					}
				}
				return msgs
			},
		},
		{
			ID:          "unused_variables",
			Name:        "Ungenutzte Variablen",
			Description: "Meldet verfügbare, aber nicht verwendete Variablen",
			Severity:    models.SeverityInfo,
			Category:    models.CategoryVariables,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, ctx *models.ValidationContext) []string {
				if ctx == nil || len(ctx.ExistingVariables) == 0 {
					return nil
				}
				used := mentionIDSet(a.Mentions)
				var msgs []string
				for _, id := range ctx.ExistingVariables {
					if _, ok := used[id]; !ok {
						msgs = append(msgs, fmt.Sprintf("Variable %s wird im Dokument nicht verwendet", id))
					}
				}
				return msgs
			},
		},
		{
			ID:          "poor_heading_hierarchy",
			Name:        "Überschriftenhierarchie",
			Description: "Prüft, ob Überschriftenebenen ohne Sprünge aufeinander folgen",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryAccessibility,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				var msgs []string
				previous := 0
				for _, heading := range a.Headings {
					if previous > 0 && heading.Level > previous+1 {
						msgs = append(msgs, fmt.Sprintf("Überschriftenebene springt von H%d zu H%d", previous, heading.Level))
					}
					previous = heading.Level
				}
				return msgs
			},
		},
		{
			ID:          "missing_alt_text",
			Name:        "Fehlender Alternativtext",
			Description: "Prüft, ob Bilder einen Alternativtext besitzen",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryAccessibility,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				var msgs []string
				for _, image := range a.Images {
					if image.Alt == "" {
						msgs = append(msgs, "Bild ohne Alternativtext")
					}
				}
				return msgs
			},
		},
		{
			ID:          "excessive_formatting",
			Name:        "Übermäßige Formatierung",
			Description: "Prüft den Anteil formatierten Textes am Gesamttext",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryFormatting,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if a.TextLength == 0 {
					return nil
				}
				ratio := float64(a.StyledLength) / float64(a.TextLength)
				if ratio > cfg.MaxFormattingRatio {
					return []string{fmt.Sprintf("%d%% des Textes sind formatiert (empfohlen: höchstens %d%%)", int(ratio*100), int(cfg.MaxFormattingRatio*100))}
				}
				return nil
			},
		},
	}
}

// mentionIDSet collects the distinct mention ids of a document.
func mentionIDSet(mentions []MentionInfo) map[string]struct{} {
	set := make(map[string]struct{}, len(mentions))
	for _, mention := range mentions {
		set[mention.ID] = struct{}{}
	}
	return set
}
