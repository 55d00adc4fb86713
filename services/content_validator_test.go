package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"template-engine-service/config"
	"template-engine-service/models"
)

func newTestValidator(t *testing.T) *ContentValidator {
	t.Helper()
	return NewContentValidator(config.ValidationConfig{}, zap.NewNop())
}

func docNode(children ...*models.DocumentNode) *models.DocumentNode {
	return &models.DocumentNode{Type: models.NodeDoc, Content: children}
}

func paragraphNode(children ...*models.DocumentNode) *models.DocumentNode {
	return &models.DocumentNode{Type: models.NodeParagraph, Content: children}
}

func textNode(text string) *models.DocumentNode {
	return &models.DocumentNode{Type: models.NodeText, Text: text}
}

func boldTextNode(text string) *models.DocumentNode {
	return &models.DocumentNode{
		Type:  models.NodeText,
		Text:  text,
		Marks: []models.Mark{{Type: "bold"}},
	}
}

func headingNode(level int, text string) *models.DocumentNode {
	return &models.DocumentNode{
		Type:    models.NodeHeading,
		Attrs:   map[string]interface{}{"level": level},
		Content: []*models.DocumentNode{textNode(text)},
	}
}

func mentionNode(id string) *models.DocumentNode {
	return &models.DocumentNode{
		Type:  models.NodeMention,
		Attrs: map[string]interface{}{"id": id, "label": id},
	}
}

func imageNode(src, alt string) *models.DocumentNode {
	attrs := map[string]interface{}{"src": src}
	if alt != "" {
		attrs["alt"] = alt
	}
	return &models.DocumentNode{Type: models.NodeImage, Attrs: attrs}
}

func issueRuleIDs(summary models.ContentValidationSummary) []string {
	var ids []string
	for _, issues := range summary.IssuesByCategory {
		for _, issue := range issues {
			ids = append(ids, issue.RuleID)
		}
	}
	return ids
}

func TestContentValidator_ValidDocument(t *testing.T) {
	validator := newTestValidator(t)

	doc := docNode(paragraphNode(textNode("This is valid content with sufficient length.")))
	summary := validator.ValidateContent(doc, nil)

	assert.True(t, summary.IsValid)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.Greater(t, summary.Score, 80)
	assert.Equal(t, 100, summary.Score)
	require.NotEmpty(t, summary.Recommendations)
	assert.Contains(t, summary.Recommendations[0], "Sehr gut")
}

func TestContentValidator_EmptyAndInvalidInput(t *testing.T) {
	validator := newTestValidator(t)

	tests := []struct {
		name         string
		root         *models.DocumentNode
		expectedRule string
	}{
		{
			name:         "nil tree",
			root:         nil,
			expectedRule: "empty_content",
		},
		{
			name:         "document without content",
			root:         docNode(),
			expectedRule: "empty_content",
		},
		{
			name:         "only blank paragraphs",
			root:         docNode(paragraphNode(textNode("   "))),
			expectedRule: "empty_content",
		},
		{
			name:         "wrong root type",
			root:         paragraphNode(textNode("Inhalt mit ausreichender Länge für den Test.")),
			expectedRule: "invalid_structure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := validator.ValidateContent(tt.root, nil)
			assert.False(t, summary.IsValid)
			assert.Greater(t, summary.ErrorCount, 0)
			assert.Contains(t, issueRuleIDs(summary), tt.expectedRule)
		})
	}
}

func TestContentValidator_ContentLengthRules(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("short content warns", func(t *testing.T) {
		summary := validator.ValidateContent(docNode(paragraphNode(textNode("Zu kurz."))), nil)
		assert.True(t, summary.IsValid)
		assert.Equal(t, 1, summary.WarningCount)
		assert.Contains(t, issueRuleIDs(summary), "content_too_short")
		assert.Equal(t, 93, summary.Score)
	})

	t.Run("long content warns", func(t *testing.T) {
		long := strings.Repeat("Dieser Satz füllt die Vorlage mit sehr viel Infotext. ", 200)
		summary := validator.ValidateContent(docNode(headingNode(1, "Titel"), paragraphNode(textNode(long))), nil)
		assert.True(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "content_too_long")
	})

	t.Run("long content without headings warns about structure", func(t *testing.T) {
		text := strings.Repeat("Absatztext ohne Überschrift. ", 20)
		summary := validator.ValidateContent(docNode(paragraphNode(textNode(text))), nil)
		assert.Contains(t, issueRuleIDs(summary), "missing_headings")
	})
}

func TestContentValidator_StructureRules(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("many empty paragraphs produce an info finding", func(t *testing.T) {
		doc := docNode(
			paragraphNode(textNode("Dieser Absatz enthält ausreichend langen Text.")),
			paragraphNode(), paragraphNode(), paragraphNode(), paragraphNode(),
		)
		summary := validator.ValidateContent(doc, nil)
		assert.True(t, summary.IsValid)
		assert.Equal(t, 1, summary.InfoCount)
		assert.Contains(t, issueRuleIDs(summary), "empty_paragraphs")
	})

	t.Run("heading level jumps are flagged", func(t *testing.T) {
		doc := docNode(
			headingNode(1, "Mietvertrag"),
			paragraphNode(textNode("Einleitung mit ausreichend langem Absatztext.")),
			headingNode(3, "Details"),
		)
		summary := validator.ValidateContent(doc, nil)
		assert.True(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "poor_heading_hierarchy")
	})

	t.Run("sequential heading levels pass", func(t *testing.T) {
		doc := docNode(
			headingNode(1, "Mietvertrag"),
			headingNode(2, "Vertragsparteien"),
			paragraphNode(textNode("Absatztext mit ausreichender Länge für den Test.")),
		)
		summary := validator.ValidateContent(doc, nil)
		assert.NotContains(t, issueRuleIDs(summary), "poor_heading_hierarchy")
	})
}

func TestContentValidator_AccessibilityAndFormatting(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("images without alt text warn and are grouped in recommendations", func(t *testing.T) {
		doc := docNode(
			paragraphNode(textNode("Grundriss und Fotos der Wohnung im Anhang.")),
			imageNode("grundriss.png", ""),
			imageNode("bad.jpg", ""),
		)
		summary := validator.ValidateContent(doc, nil)
		assert.True(t, summary.IsValid)
		assert.Equal(t, 2, summary.WarningCount)

		found := false
		for _, rec := range summary.Recommendations {
			if strings.Contains(rec, "Bild ohne Alternativtext") && strings.Contains(rec, "2 Vorkommen") {
				found = true
			}
		}
		assert.True(t, found, "expected grouped recommendation, got %v", summary.Recommendations)
	})

	t.Run("images with alt text pass", func(t *testing.T) {
		doc := docNode(
			paragraphNode(textNode("Grundriss und Fotos der Wohnung im Anhang.")),
			imageNode("grundriss.png", "Grundriss der Wohnung"),
		)
		summary := validator.ValidateContent(doc, nil)
		assert.NotContains(t, issueRuleIDs(summary), "missing_alt_text")
	})

	t.Run("mostly styled text warns about formatting", func(t *testing.T) {
		doc := docNode(paragraphNode(
			boldTextNode("Sehr wichtiger fett gedruckter Vertragstext."),
			textNode(" Und etwas normaler."),
		))
		summary := validator.ValidateContent(doc, nil)
		assert.Contains(t, issueRuleIDs(summary), "excessive_formatting")
	})

	t.Run("lightly styled text passes", func(t *testing.T) {
		doc := docNode(paragraphNode(
			textNode("Ein überwiegend normal formatierter Absatz mit viel Inhalt, "),
			boldTextNode("wenig fett"),
			textNode(" und noch mehr normalem Text zum Auffüllen der Länge."),
		))
		summary := validator.ValidateContent(doc, nil)
		assert.NotContains(t, issueRuleIDs(summary), "excessive_formatting")
	})
}

func TestContentValidator_VariableRules(t *testing.T) {
	validator := newTestValidator(t)

	baseDoc := func(mentions ...*models.DocumentNode) *models.DocumentNode {
		children := []*models.DocumentNode{textNode("Sehr geehrte Damen und Herren, hiermit kündigen wir an: ")}
		children = append(children, mentions...)
		return docNode(paragraphNode(children...))
	}

	t.Run("invalid mention ids are errors", func(t *testing.T) {
		summary := validator.ValidateContent(baseDoc(mentionNode("1falsch"), mentionNode("auch_falsch_")), nil)
		assert.False(t, summary.IsValid)
		assert.Equal(t, 2, summary.ErrorCount)
		assert.Contains(t, issueRuleIDs(summary), "invalid_variables")
	})

	t.Run("valid mention ids pass", func(t *testing.T) {
		summary := validator.ValidateContent(baseDoc(mentionNode("mieter_name"), mentionNode("x")), nil)
		assert.NotContains(t, issueRuleIDs(summary), "invalid_variables")
	})

	t.Run("missing required variables are errors", func(t *testing.T) {
		ctx := &models.ValidationContext{RequiredVariables: []string{"mieter_name", "wohnung_adresse"}}
		summary := validator.ValidateContent(baseDoc(mentionNode("mieter_name")), ctx)
		assert.False(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "missing_required_variables")
	})

	t.Run("present required variables pass", func(t *testing.T) {
		ctx := &models.ValidationContext{RequiredVariables: []string{"mieter_name"}}
		summary := validator.ValidateContent(baseDoc(mentionNode("mieter_name")), ctx)
		assert.NotContains(t, issueRuleIDs(summary), "missing_required_variables")
	})

	t.Run("unused existing variables are informational", func(t *testing.T) {
		ctx := &models.ValidationContext{ExistingVariables: []string{"mieter_name", "haus_adresse"}}
		summary := validator.ValidateContent(baseDoc(mentionNode("mieter_name")), ctx)
		assert.True(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "unused_variables")
	})

	t.Run("without context the variable list rules stay silent", func(t *testing.T) {
		summary := validator.ValidateContent(baseDoc(mentionNode("mieter_name")), nil)
		assert.NotContains(t, issueRuleIDs(summary), "missing_required_variables")
		assert.NotContains(t, issueRuleIDs(summary), "unused_variables")
	})
}

func TestContentValidator_PathologicalInput(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("deeply nested document does not crash", func(t *testing.T) {
		leaf := paragraphNode(textNode("Tief verschachtelter Inhalt mit genug Text."))
		node := leaf
		for i := 0; i < 100; i++ {
			node = &models.DocumentNode{Type: "container", Content: []*models.DocumentNode{node}}
		}
		root := docNode(node)

		summary := validator.ValidateContent(root, nil)
		assert.NotNil(t, summary.IssuesByCategory)
		assert.NotContains(t, issueRuleIDs(summary), "invalid_structure")
	})

	t.Run("nesting beyond the depth limit is flagged", func(t *testing.T) {
		node := paragraphNode(textNode("Inhalt"))
		for i := 0; i < 300; i++ {
			node = &models.DocumentNode{Type: "container", Content: []*models.DocumentNode{node}}
		}
		root := docNode(node)

		summary := validator.ValidateContent(root, nil)
		assert.False(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "invalid_structure")
	})

	t.Run("self referential document terminates", func(t *testing.T) {
		node := paragraphNode(textNode("Zyklischer Inhalt"))
		node.Content = append(node.Content, node)
		root := docNode(node)

		summary := validator.ValidateContent(root, nil)
		assert.False(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "invalid_structure")
	})
}

func TestContentValidator_JSONEntryPoints(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("valid json document", func(t *testing.T) {
		raw := []byte(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"This is valid content with sufficient length."}]}]}`)
		summary := validator.ValidateContentJSON(raw, nil)
		assert.True(t, summary.IsValid)
		assert.Equal(t, 100, summary.Score)
	})

	t.Run("json null is treated as empty", func(t *testing.T) {
		summary := validator.ValidateContentJSON([]byte(`null`), nil)
		assert.False(t, summary.IsValid)
		assert.Contains(t, issueRuleIDs(summary), "empty_content")
	})

	t.Run("non object json is a structural finding, not a failure", func(t *testing.T) {
		for _, raw := range []string{`[1,2,3]`, `42`, `"text"`, `{"type":"doc","content":5}`} {
			summary := validator.ValidateContentJSON([]byte(raw), nil)
			assert.False(t, summary.IsValid, "input %s", raw)
			assert.Contains(t, issueRuleIDs(summary), "invalid_structure", "input %s", raw)
		}
	})
}

func TestContentValidator_RealTime(t *testing.T) {
	validator := newTestValidator(t)

	t.Run("findings are flattened by severity", func(t *testing.T) {
		doc := docNode(
			paragraphNode(textNode("Ein Absatz mit ausreichend langem Inhalt für alle.")),
			paragraphNode(), paragraphNode(), paragraphNode(), paragraphNode(),
		)
		result := validator.ValidateRealTime(doc)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		assert.Len(t, result.Suggestions, 1)
	})

	t.Run("errors switch the result to invalid", func(t *testing.T) {
		result := validator.ValidateRealTime(nil)
		assert.False(t, result.IsValid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("raw json entry point", func(t *testing.T) {
		result := validator.ValidateRealTimeJSON([]byte(`{"type":"doc","content":[]}`))
		assert.False(t, result.IsValid)
		assert.NotEmpty(t, result.Errors)
	})
}

func TestContentValidator_ConfigureRule(t *testing.T) {
	t.Run("disabling a rule suppresses its findings", func(t *testing.T) {
		validator := newTestValidator(t)
		empty := docNode()

		summary := validator.ValidateContent(empty, nil)
		assert.Contains(t, issueRuleIDs(summary), "empty_content")

		require.NoError(t, validator.ConfigureRule("empty_content", false))
		summary = validator.ValidateContent(empty, nil)
		assert.NotContains(t, issueRuleIDs(summary), "empty_content")

		require.NoError(t, validator.ConfigureRule("empty_content", true))
		summary = validator.ValidateContent(empty, nil)
		assert.Contains(t, issueRuleIDs(summary), "empty_content")
	})

	t.Run("unknown rule ids are rejected", func(t *testing.T) {
		validator := newTestValidator(t)
		err := validator.ConfigureRule("no_such_rule", true)
		assert.Error(t, err)
	})

	t.Run("disabled rules disappear from the enabled listing", func(t *testing.T) {
		validator := newTestValidator(t)
		total := len(validator.Rules())
		require.NoError(t, validator.ConfigureRule("empty_paragraphs", false))

		assert.Len(t, validator.Rules(), total)
		assert.Len(t, validator.EnabledRules(), total-1)

		info, ok := validator.Rule("empty_paragraphs")
		require.True(t, ok)
		assert.False(t, info.Enabled)
	})
}

func TestContentValidator_CustomRules(t *testing.T) {
	loremRule := func() ValidationRule {
		return ValidationRule{
			ID:          "no_lorem_ipsum",
			Name:        "Platzhaltertext",
			Description: "Meldet vergessenen Lorem-Ipsum-Fülltext",
			Severity:    models.SeverityWarning,
			Category:    models.CategoryContent,
			Enabled:     true,
			Validate: func(a *DocumentAnalysis, _ *models.ValidationContext) []string {
				if strings.Contains(strings.ToLower(a.Text), "lorem ipsum") {
					return []string{"Das Dokument enthält Lorem-Ipsum-Fülltext"}
				}
				return nil
			},
		}
	}

	t.Run("custom rules participate in validation", func(t *testing.T) {
		validator := newTestValidator(t)
		require.NoError(t, validator.AddCustomRule(loremRule()))

		doc := docNode(paragraphNode(textNode("Lorem ipsum dolor sit amet, consectetur adipiscing.")))
		summary := validator.ValidateContent(doc, nil)
		assert.Contains(t, issueRuleIDs(summary), "no_lorem_ipsum")
	})

	t.Run("duplicate rule ids are rejected", func(t *testing.T) {
		validator := newTestValidator(t)
		require.NoError(t, validator.AddCustomRule(loremRule()))
		err := validator.AddCustomRule(loremRule())
		assert.Error(t, err)
	})

	t.Run("registering over a builtin id is rejected", func(t *testing.T) {
		validator := newTestValidator(t)
		rule := loremRule()
		rule.ID = "empty_content"
		assert.Error(t, validator.AddCustomRule(rule))
	})

	t.Run("malformed rules are rejected at registration time", func(t *testing.T) {
		validator := newTestValidator(t)

		missingValidate := loremRule()
		missingValidate.Validate = nil
		assert.Error(t, validator.AddCustomRule(missingValidate))

		badID := loremRule()
		badID.ID = "Kein gültiger Name"
		assert.Error(t, validator.AddCustomRule(badID))

		badSeverity := loremRule()
		badSeverity.Severity = "fatal"
		assert.Error(t, validator.AddCustomRule(badSeverity))
	})

	t.Run("a panicking custom rule is isolated", func(t *testing.T) {
		validator := newTestValidator(t)
		require.NoError(t, validator.AddCustomRule(ValidationRule{
			ID:       "panics",
			Name:     "Defekte Regel",
			Severity: models.SeverityError,
			Category: models.CategoryContent,
			Enabled:  true,
			Validate: func(_ *DocumentAnalysis, _ *models.ValidationContext) []string {
				panic("boom")
			},
		}))

		doc := docNode(paragraphNode(textNode("This is valid content with sufficient length.")))
		summary := validator.ValidateContent(doc, nil)
		assert.True(t, summary.IsValid)
		assert.Equal(t, 100, summary.Score)
		assert.NotContains(t, issueRuleIDs(summary), "panics")
	})
}

func TestContentValidator_DeterministicSummaries(t *testing.T) {
	validator := newTestValidator(t)

	doc := docNode(
		headingNode(1, "Mietbescheinigung"),
		paragraphNode(textNode("Kurz.")),
		imageNode("foto.jpg", ""),
		imageNode("plan.jpg", ""),
		paragraphNode(), paragraphNode(), paragraphNode(), paragraphNode(),
	)
	ctx := &models.ValidationContext{
		RequiredVariables: []string{"mieter_name"},
		ExistingVariables: []string{"wohnung_adresse"},
	}

	first := validator.ValidateContent(doc, ctx)
	second := validator.ValidateContent(doc, ctx)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("summaries differ between runs (-first +second):\n%s", diff)
	}
}

func TestContentValidator_ScoreClamping(t *testing.T) {
	validator := newTestValidator(t)

	doc := docNode(paragraphNode(textNode("Kurz")))
	ctx := &models.ValidationContext{}
	for i := 0; i < 20; i++ {
		ctx.RequiredVariables = append(ctx.RequiredVariables, fmt.Sprintf("var_%d", i))
	}

	summary := validator.ValidateContent(doc, ctx)
	assert.False(t, summary.IsValid)
	assert.Equal(t, 0, summary.Score)
}
