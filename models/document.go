package models

// NodeType identifies the kind of a document tree node.
type NodeType string

// Node types produced by the rich text editor. Validation tolerates
// additional types and treats them as opaque containers.
const (
	NodeDoc         NodeType = "doc"
	NodeParagraph   NodeType = "paragraph"
	NodeHeading     NodeType = "heading"
	NodeText        NodeType = "text"
	NodeHardBreak   NodeType = "hardBreak"
	NodeMention     NodeType = "mention"
	NodeImage       NodeType = "image"
	NodeBulletList  NodeType = "bulletList"
	NodeOrderedList NodeType = "orderedList"
	NodeListItem    NodeType = "listItem"
	NodeBlockquote  NodeType = "blockquote"
	NodeCodeBlock   NodeType = "codeBlock"
)

// Mark annotates inline content with formatting such as bold or italic.
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// DocumentNode is one node of an editor document tree. Documents arrive as
// JSON from the editor, so attribute values are decoded loosely and read
// through the typed accessors below.
type DocumentNode struct {
	Type    NodeType               `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Content []*DocumentNode        `json:"content,omitempty"`
}

// attrString reads a string attribute, returning "" when absent or not a
// string.
func (n *DocumentNode) attrString(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	if v, ok := n.Attrs[key].(string); ok {
		return v
	}
	return ""
}

// attrInt reads a numeric attribute. JSON decoding yields float64, while
// programmatically built trees may hold int, so both are accepted.
func (n *DocumentNode) attrInt(key string) (int, bool) {
	if n == nil || n.Attrs == nil {
		return 0, false
	}
	switch v := n.Attrs[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// HeadingLevel returns the heading level attribute, defaulting to 1 when
// the attribute is missing or malformed.
func (n *DocumentNode) HeadingLevel() int {
	if level, ok := n.attrInt("level"); ok && level > 0 {
		return level
	}
	return 1
}

// MentionID returns the variable identifier carried by a mention node.
func (n *DocumentNode) MentionID() string {
	return n.attrString("id")
}

// MentionLabel returns the display label of a mention node.
func (n *DocumentNode) MentionLabel() string {
	return n.attrString("label")
}

// ImageSrc returns the source URL of an image node.
func (n *DocumentNode) ImageSrc() string {
	return n.attrString("src")
}

// ImageAlt returns the alternative text of an image node.
func (n *DocumentNode) ImageAlt() string {
	return n.attrString("alt")
}

// HasMark reports whether the node carries a mark of the given type.
func (n *DocumentNode) HasMark(markType string) bool {
	if n == nil {
		return false
	}
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// IsBlock reports whether the node type is one of the known block level
// containers.
func (n *DocumentNode) IsBlock() bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case NodeDoc, NodeParagraph, NodeHeading, NodeBulletList, NodeOrderedList, NodeListItem, NodeBlockquote, NodeCodeBlock:
		return true
	}
	return false
}
