package services

import (
	"time"

	"go.uber.org/zap"

	"template-engine-service/config"
	"template-engine-service/models"
)

// TemplateChecker bundles the placeholder engine, the content validator
// and the Markdown importer into the combined checks the template editor
// runs before a template is saved.
type TemplateChecker struct {
	engine    *PlaceholderEngine
	validator *ContentValidator
	importer  *MarkdownImporter
	logger    *zap.Logger
}

// NewTemplateChecker creates a checker over the given components. Nil
// components are replaced with defaults so the checker is usable in tests
// without wiring.
func NewTemplateChecker(engine *PlaceholderEngine, validator *ContentValidator, importer *MarkdownImporter, logger *zap.Logger) *TemplateChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = NewPlaceholderEngine(nil, 0, logger)
	}
	if validator == nil {
		validator = NewContentValidator(config.ValidationConfig{}, logger)
	}
	if importer == nil {
		importer = NewMarkdownImporter(logger)
	}
	return &TemplateChecker{
		engine:    engine,
		validator: validator,
		importer:  importer,
		logger:    logger,
	}
}

// CheckTemplate runs every check a template must pass in one call. The
// document tree, when present, drives content validation and supplies the
// text for placeholder parsing unless plain text content was sent
// alongside it.
func (c *TemplateChecker) CheckTemplate(req models.TemplateCheckRequest) models.TemplateCheckReport {
	report := models.TemplateCheckReport{
		Name:      req.Name,
		CheckedAt: time.Now().UTC(),
	}

	content := req.Content
	if len(req.Document) > 0 {
		root, malformed := decodeDocument(req.Document)
		analysis := AnalyzeDocument(root, c.validator.cfg.MaxTraversalDepth)
		analysis.Malformed = malformed

		vctx := &models.ValidationContext{
			RequiredVariables: req.RequiredVariables,
			ExistingVariables: req.ExistingVariables,
		}
		summary := c.validator.summarize(analysis, vctx)
		report.Content = &summary

		if content == "" {
			content = analysis.Text
		}
	}

	placeholders := c.engine.ParsePlaceholders(content)
	syntaxErrors := c.engine.ValidatePlaceholders(content)

	// A nil context list means the caller did not ask for context checks.
	// An explicitly empty list checks against no available contexts.
	var contextErrors []models.PlaceholderError
	if req.AvailableContext != nil {
		contextErrors = c.engine.ValidateContextRequirements(placeholders, req.AvailableContext)
	}

	report.Placeholders = placeholders
	report.PlaceholderErrors = make([]models.PlaceholderError, 0, len(syntaxErrors)+len(contextErrors))
	report.PlaceholderErrors = append(report.PlaceholderErrors, syntaxErrors...)
	report.PlaceholderErrors = append(report.PlaceholderErrors, contextErrors...)

	report.Valid = len(report.PlaceholderErrors) == 0 &&
		(report.Content == nil || report.Content.IsValid)

	c.logger.Debug("checked template",
		zap.String("name", req.Name),
		zap.Bool("valid", report.Valid),
		zap.Int("placeholders", len(report.Placeholders)),
		zap.Int("placeholder_errors", len(report.PlaceholderErrors)))
	return report
}

// ImportMarkdown converts Markdown source into a document tree and runs an
// initial validation pass so the caller sees the imported template's state
// immediately.
func (c *TemplateChecker) ImportMarkdown(req models.ImportMarkdownRequest) models.ImportMarkdownResponse {
	doc := c.importer.Import(req.Markdown)
	analysis := AnalyzeDocument(doc, c.validator.cfg.MaxTraversalDepth)
	summary := c.validator.summarize(analysis, nil)

	return models.ImportMarkdownResponse{
		Document:     doc,
		Placeholders: c.engine.ParsePlaceholders(analysis.Text),
		Summary:      &summary,
	}
}
