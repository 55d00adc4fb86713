package services

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"template-engine-service/models"
)

// MarkdownImporter converts Markdown source into the editor's document
// tree so existing letters and contracts can be used as templates.
type MarkdownImporter struct {
	md     goldmark.Markdown
	logger *zap.Logger
}

// NewMarkdownImporter creates an importer with GitHub flavored Markdown
// enabled.
func NewMarkdownImporter(logger *zap.Logger) *MarkdownImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarkdownImporter{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
	}
}

// Import parses Markdown source and returns the equivalent document tree.
// Placeholder tokens in the source stay plain text, so the placeholder
// engine can pick them up from the imported document.
func (i *MarkdownImporter) Import(source string) *models.DocumentNode {
	src := []byte(source)
	parsed := i.md.Parser().Parse(text.NewReader(src))

	doc := &models.DocumentNode{
		Type:    models.NodeDoc,
		Content: convertChildren(parsed, src, nil),
	}
	i.logger.Debug("imported markdown document",
		zap.Int("source_bytes", len(src)),
		zap.Int("blocks", len(doc.Content)))
	return doc
}

// convertChildren converts every child of a goldmark node, carrying the
// active inline marks down the tree.
func convertChildren(n ast.Node, source []byte, marks []models.Mark) []*models.DocumentNode {
	var out []*models.DocumentNode
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, convertNode(child, source, marks)...)
	}
	return out
}

// convertNode maps one goldmark AST node onto editor nodes. Unknown nodes
// are flattened into their children so no text is lost.
func convertNode(n ast.Node, source []byte, marks []models.Mark) []*models.DocumentNode {
	switch node := n.(type) {
	case *ast.Heading:
		return []*models.DocumentNode{{
			Type:    models.NodeHeading,
			Attrs:   map[string]interface{}{"level": node.Level},
			Content: convertChildren(node, source, nil),
		}}
	case *ast.Paragraph:
		return []*models.DocumentNode{{
			Type:    models.NodeParagraph,
			Content: convertChildren(node, source, marks),
		}}
	case *ast.TextBlock:
		// Tight list items carry text blocks; the editor expects
		// paragraphs inside list items.
		return []*models.DocumentNode{{
			Type:    models.NodeParagraph,
			Content: convertChildren(node, source, marks),
		}}
	case *ast.Blockquote:
		return []*models.DocumentNode{{
			Type:    models.NodeBlockquote,
			Content: convertChildren(node, source, nil),
		}}
	case *ast.List:
		listType := models.NodeBulletList
		attrs := map[string]interface{}(nil)
		if node.IsOrdered() {
			listType = models.NodeOrderedList
			attrs = map[string]interface{}{"start": node.Start}
		}
		return []*models.DocumentNode{{
			Type:    listType,
			Attrs:   attrs,
			Content: convertChildren(node, source, nil),
		}}
	case *ast.ListItem:
		return []*models.DocumentNode{{
			Type:    models.NodeListItem,
			Content: convertChildren(node, source, nil),
		}}
	case *ast.FencedCodeBlock:
		attrs := map[string]interface{}(nil)
		if language := node.Language(source); len(language) > 0 {
			attrs = map[string]interface{}{"language": string(language)}
		}
		return []*models.DocumentNode{{
			Type:    models.NodeCodeBlock,
			Attrs:   attrs,
			Content: []*models.DocumentNode{{Type: models.NodeText, Text: blockLines(node, source)}},
		}}
	case *ast.CodeBlock:
		return []*models.DocumentNode{{
			Type:    models.NodeCodeBlock,
			Content: []*models.DocumentNode{{Type: models.NodeText, Text: blockLines(node, source)}},
		}}
	case *ast.ThematicBreak:
		return []*models.DocumentNode{{Type: "horizontalRule"}}
	case *ast.Text:
		content := string(node.Segment.Value(source))
		if node.SoftLineBreak() {
			content += "\n"
		}
		out := []*models.DocumentNode{{Type: models.NodeText, Text: content, Marks: marks}}
		if node.HardLineBreak() {
			out = append(out, &models.DocumentNode{Type: models.NodeHardBreak})
		}
		return out
	case *ast.String:
		return []*models.DocumentNode{{Type: models.NodeText, Text: string(node.Value), Marks: marks}}
	case *ast.Emphasis:
		mark := models.Mark{Type: "italic"}
		if node.Level >= 2 {
			mark = models.Mark{Type: "bold"}
		}
		return convertChildren(node, source, appendMark(marks, mark))
	case *ast.CodeSpan:
		return convertChildren(node, source, appendMark(marks, models.Mark{Type: "code"}))
	case *ast.Link:
		mark := models.Mark{
			Type:  "link",
			Attrs: map[string]interface{}{"href": string(node.Destination)},
		}
		return convertChildren(node, source, appendMark(marks, mark))
	case *ast.AutoLink:
		url := string(node.URL(source))
		mark := models.Mark{
			Type:  "link",
			Attrs: map[string]interface{}{"href": url},
		}
		return []*models.DocumentNode{{Type: models.NodeText, Text: url, Marks: appendMark(marks, mark)}}
	case *ast.Image:
		return []*models.DocumentNode{{
			Type: models.NodeImage,
			Attrs: map[string]interface{}{
				"src": string(node.Destination),
				"alt": inlineText(node, source),
			},
		}}
	case *east.Strikethrough:
		return convertChildren(node, source, appendMark(marks, models.Mark{Type: "strike"}))
	case *ast.HTMLBlock, *ast.RawHTML:
		return nil
	default:
		return convertChildren(n, source, marks)
	}
}

// blockLines joins the raw source lines of a code block.
func blockLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// inlineText extracts the plain text of an inline subtree, used for image
// alt text.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// appendMark copies the mark list before appending so sibling nodes never
// share backing arrays.
func appendMark(marks []models.Mark, mark models.Mark) []models.Mark {
	out := make([]models.Mark, len(marks)+1)
	copy(out, marks)
	out[len(marks)] = mark
	return out
}
