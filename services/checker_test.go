package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"template-engine-service/models"
)

func newTestChecker(t *testing.T) *TemplateChecker {
	t.Helper()
	return NewTemplateChecker(nil, nil, nil, nil)
}

func rawDocument(t *testing.T, doc *models.DocumentNode) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestTemplateChecker_CheckTemplate_ContentOnly(t *testing.T) {
	checker := newTestChecker(t)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Name:    "Willkommensschreiben",
		Content: "Hallo @mieter.name, heute ist der @datum. Gruß von @unbekannt.",
	})

	assert.Equal(t, "Willkommensschreiben", report.Name)
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"@mieter.name", "@datum", "@unbekannt"}, report.Placeholders)
	require.Len(t, report.PlaceholderErrors, 1)
	assert.Equal(t, models.PlaceholderErrorUnknown, report.PlaceholderErrors[0].Type)
	assert.Equal(t, "@unbekannt", report.PlaceholderErrors[0].Placeholder)
	assert.Nil(t, report.Content)
	assert.False(t, report.CheckedAt.IsZero())
}

func TestTemplateChecker_CheckTemplate_DocumentOnly(t *testing.T) {
	checker := newTestChecker(t)

	doc := docNode(
		headingNode(1, "Mietvertrag"),
		paragraphNode(textNode("Zwischen @vermieter.name und @mieter.name wird folgender Mietvertrag geschlossen.")),
		paragraphNode(textNode("Die monatliche Miete für die Wohnung beträgt @wohnung.miete und ist im Voraus zu zahlen.")),
	)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Document:         rawDocument(t, doc),
		AvailableContext: []models.ContextType{models.ContextMieter, models.ContextWohnung},
	})

	assert.True(t, report.Valid)
	assert.ElementsMatch(t, []string{"@vermieter.name", "@mieter.name", "@wohnung.miete"}, report.Placeholders)
	assert.Empty(t, report.PlaceholderErrors)
	require.NotNil(t, report.Content)
	assert.True(t, report.Content.IsValid)
}

func TestTemplateChecker_CheckTemplate_ContentOverridesDocumentText(t *testing.T) {
	checker := newTestChecker(t)

	doc := docNode(
		headingNode(1, "Kündigung"),
		paragraphNode(textNode("Dieser Text im Dokumentbaum erwähnt @mieter.name und sonst niemanden weiter.")),
	)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Document: rawDocument(t, doc),
		Content:  "Nur @datum steht im separaten Text.",
	})

	assert.Equal(t, []string{"@datum"}, report.Placeholders)
	require.NotNil(t, report.Content)
}

func TestTemplateChecker_CheckTemplate_ContextErrors(t *testing.T) {
	checker := newTestChecker(t)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Content:          "Die Miete beträgt @wohnung.miete Euro.",
		AvailableContext: []models.ContextType{models.ContextDatum},
	})

	assert.False(t, report.Valid)
	require.Len(t, report.PlaceholderErrors, 1)
	assert.Equal(t, models.PlaceholderErrorMissingContext, report.PlaceholderErrors[0].Type)
	assert.Equal(t, "@wohnung.miete", report.PlaceholderErrors[0].Placeholder)
}

func TestTemplateChecker_CheckTemplate_InvalidContent(t *testing.T) {
	checker := newTestChecker(t)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Document: json.RawMessage(`{"type":"doc","content":[]}`),
	})

	assert.False(t, report.Valid)
	assert.Empty(t, report.Placeholders)
	assert.Empty(t, report.PlaceholderErrors)
	require.NotNil(t, report.Content)
	assert.False(t, report.Content.IsValid)
	assert.Contains(t, issueRuleIDs(*report.Content), "empty_content")
}

func TestTemplateChecker_CheckTemplate_RequiredVariables(t *testing.T) {
	checker := newTestChecker(t)

	doc := docNode(
		headingNode(1, "Nebenkostenabrechnung"),
		paragraphNode(
			textNode("Die Abrechnung für Ihre Wohnung finden Sie unten aufgeschlüsselt nach den einzelnen Posten. "),
			mentionNode("abrechnungsjahr"),
		),
	)

	report := checker.CheckTemplate(models.TemplateCheckRequest{
		Document:          rawDocument(t, doc),
		RequiredVariables: []string{"abrechnungsjahr", "gesamtbetrag"},
	})

	assert.False(t, report.Valid)
	require.NotNil(t, report.Content)
	assert.Contains(t, issueRuleIDs(*report.Content), "missing_required_variables")
}

func TestTemplateChecker_ImportMarkdown(t *testing.T) {
	checker := newTestChecker(t)

	resp := checker.ImportMarkdown(models.ImportMarkdownRequest{
		Markdown: "# Betriebskostenabrechnung\n\n" +
			"Sehr geehrte(r) @mieter.name, anbei erhalten Sie die Abrechnung für @wohnung.adresse.\n",
	})

	require.NotNil(t, resp.Document)
	assert.Equal(t, models.NodeDoc, resp.Document.Type)
	assert.ElementsMatch(t, []string{"@mieter.name", "@wohnung.adresse"}, resp.Placeholders)
	require.NotNil(t, resp.Summary)
	assert.True(t, resp.Summary.IsValid)
}
