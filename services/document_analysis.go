package services

import (
	"strings"
	"unicode/utf8"

	"template-engine-service/models"
)

// analysisNodeBudget caps the number of nodes visited per document so that
// adversarial trees with heavily shared subtrees cannot blow up a
// validation call.
const analysisNodeBudget = 100000

// HeadingInfo records one heading in document order.
type HeadingInfo struct {
	Level int
}

// MentionInfo records one variable mention in document order.
type MentionInfo struct {
	ID    string
	Label string
}

// ImageInfo records one image in document order.
type ImageInfo struct {
	Src string
	Alt string
}

// DocumentAnalysis is the result of a single traversal over a document
// tree. Validation rules read from it instead of walking the tree
// themselves, which keeps cycle and depth handling in one place.
type DocumentAnalysis struct {
	Root *models.DocumentNode

	// Malformed is set by callers that failed to decode raw input into a
	// tree at all.
	Malformed bool
	// Cyclic is set when a node appears in its own ancestry.
	Cyclic bool
	// Truncated is set when traversal stopped early because the tree was
	// deeper than the configured limit or larger than the node budget.
	Truncated bool

	NodeCount  int
	HasContent bool

	// Text is the concatenated plain text with newlines between blocks.
	// TextLength counts only the runes of text nodes, StyledLength the
	// subset carried by text nodes with at least one mark.
	Text         string
	TextLength   int
	StyledLength int

	ParagraphCount      int
	EmptyParagraphCount int

	Headings []HeadingInfo
	Mentions []MentionInfo
	Images   []ImageInfo
}

// AnalyzeDocument walks a document tree once and collects everything the
// validation rules need. It accepts nil and never panics; maxDepth bounds
// recursion against pathological nesting.
func AnalyzeDocument(root *models.DocumentNode, maxDepth int) *DocumentAnalysis {
	if maxDepth <= 0 {
		maxDepth = 200
	}

	analysis := &DocumentAnalysis{Root: root}
	if root == nil {
		return analysis
	}

	w := &walker{
		analysis: analysis,
		maxDepth: maxDepth,
		visited:  make(map[*models.DocumentNode]struct{}),
	}
	result := w.walk(root, 1)
	analysis.HasContent = result.hasContent
	analysis.Text = w.text.String()
	return analysis
}

type walker struct {
	analysis *DocumentAnalysis
	maxDepth int
	visited  map[*models.DocumentNode]struct{}
	text     strings.Builder
}

// subtree carries what a parent needs to know about a child's subtree.
type subtree struct {
	hasContent bool
}

func (w *walker) walk(n *models.DocumentNode, depth int) subtree {
	var s subtree
	if n == nil {
		return s
	}
	if depth > w.maxDepth {
		w.analysis.Truncated = true
		return s
	}
	if _, seen := w.visited[n]; seen {
		w.analysis.Cyclic = true
		return s
	}
	w.analysis.NodeCount++
	if w.analysis.NodeCount > analysisNodeBudget {
		w.analysis.Truncated = true
		return s
	}

	// Track the ancestor chain only, so repeated references to a shared
	// subtree are not mistaken for a cycle.
	w.visited[n] = struct{}{}
	defer delete(w.visited, n)

	switch n.Type {
	case models.NodeText:
		runes := utf8.RuneCountInString(n.Text)
		w.text.WriteString(n.Text)
		w.analysis.TextLength += runes
		if len(n.Marks) > 0 {
			w.analysis.StyledLength += runes
		}
		if strings.TrimSpace(n.Text) != "" {
			s.hasContent = true
		}
	case models.NodeMention:
		w.analysis.Mentions = append(w.analysis.Mentions, MentionInfo{
			ID:    n.MentionID(),
			Label: n.MentionLabel(),
		})
		s.hasContent = true
	case models.NodeImage:
		w.analysis.Images = append(w.analysis.Images, ImageInfo{
			Src: n.ImageSrc(),
			Alt: n.ImageAlt(),
		})
		s.hasContent = true
	case models.NodeHeading:
		w.analysis.Headings = append(w.analysis.Headings, HeadingInfo{Level: n.HeadingLevel()})
	case models.NodeHardBreak:
		w.text.WriteString("\n")
	}

	var children subtree
	for _, child := range n.Content {
		r := w.walk(child, depth+1)
		children.hasContent = children.hasContent || r.hasContent
	}
	s.hasContent = s.hasContent || children.hasContent

	if n.Type == models.NodeParagraph {
		w.analysis.ParagraphCount++
		if !children.hasContent {
			w.analysis.EmptyParagraphCount++
		}
	}
	if n.IsBlock() {
		w.text.WriteString("\n")
	}

	return s
}
