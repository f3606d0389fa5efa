package ast

// Kind identifies the concrete variant of a tree node. The set of kinds is
// closed: every node carries its Kind from construction, so classifying a
// node never requires type probing.
type Kind int

const (
	// KindInvalid is the zero value and never appears in a well-formed tree.
	KindInvalid Kind = iota

	// KindDocument is the tree root. Exactly one Document exists per tree
	// and no other node may contain one.
	KindDocument

	// Block-level kinds.
	KindHeading
	KindParagraph
	KindCodeBlock
	KindBlockQuote
	KindList
	KindListItem
	KindTable
	KindTableRow
	KindTableCell
	KindThematicBreak
	KindFootnoteDefinition
	KindMathBlock
	KindDefinitionList
	KindDefinitionTerm
	KindDefinitionDescription
	KindHTMLBlock
	KindComment

	// Inline kinds.
	KindText
	KindStrong
	KindEmphasis
	KindCode
	KindLink
	KindImage
	KindLineBreak
	KindFootnoteReference
	KindMathInline
	KindHTMLInline
	KindCommentInline
	KindStrikethrough
	KindUnderline
	KindSuperscript
	KindSubscript
)

// kindNames maps kinds to their canonical string tags. The tags double as
// hook targets and as the "kind" field in JSON serialization.
var kindNames = map[Kind]string{
	KindDocument:              "document",
	KindHeading:               "heading",
	KindParagraph:             "paragraph",
	KindCodeBlock:             "code_block",
	KindBlockQuote:            "block_quote",
	KindList:                  "list",
	KindListItem:              "list_item",
	KindTable:                 "table",
	KindTableRow:              "table_row",
	KindTableCell:             "table_cell",
	KindThematicBreak:         "thematic_break",
	KindFootnoteDefinition:    "footnote_definition",
	KindMathBlock:             "math_block",
	KindDefinitionList:        "definition_list",
	KindDefinitionTerm:        "definition_term",
	KindDefinitionDescription: "definition_description",
	KindHTMLBlock:             "html_block",
	KindComment:               "comment",
	KindText:                  "text",
	KindStrong:                "strong",
	KindEmphasis:              "emphasis",
	KindCode:                  "code",
	KindLink:                  "link",
	KindImage:                 "image",
	KindLineBreak:             "line_break",
	KindFootnoteReference:     "footnote_reference",
	KindMathInline:            "math_inline",
	KindHTMLInline:            "html_inline",
	KindCommentInline:         "comment_inline",
	KindStrikethrough:         "strikethrough",
	KindUnderline:             "underline",
	KindSuperscript:           "superscript",
	KindSubscript:             "subscript",
}

// kindsByName is the reverse of kindNames, built once at init.
var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the canonical tag for the kind (e.g., "heading").
// Returns "invalid" for unknown kinds.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// KindFromName returns the Kind for a canonical tag and true, or
// KindInvalid and false if the tag is unknown.
func KindFromName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns all valid kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindDocument; k <= KindSubscript; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// leafKinds holds kinds whose payload is literal text rather than children.
var leafKinds = map[Kind]bool{
	KindText:              true,
	KindCode:              true,
	KindCodeBlock:         true,
	KindThematicBreak:     true,
	KindLineBreak:         true,
	KindFootnoteReference: true,
	KindMathInline:        true,
	KindMathBlock:         true,
	KindHTMLBlock:         true,
	KindHTMLInline:        true,
	KindComment:           true,
	KindCommentInline:     true,
}

// blockKinds holds kinds that render as block-level constructs.
var blockKinds = map[Kind]bool{
	KindDocument:              true,
	KindHeading:               true,
	KindParagraph:             true,
	KindCodeBlock:             true,
	KindBlockQuote:            true,
	KindList:                  true,
	KindListItem:              true,
	KindTable:                 true,
	KindTableRow:              true,
	KindTableCell:             true,
	KindThematicBreak:         true,
	KindFootnoteDefinition:    true,
	KindMathBlock:             true,
	KindDefinitionList:        true,
	KindDefinitionTerm:        true,
	KindDefinitionDescription: true,
	KindHTMLBlock:             true,
	KindComment:               true,
}

// IsContainer reports whether nodes of this kind own a child sequence.
func (k Kind) IsContainer() bool {
	return !leafKinds[k] && k != KindInvalid
}

// IsLeaf reports whether nodes of this kind carry literal text payload.
func (k Kind) IsLeaf() bool { return leafKinds[k] }

// IsBlock reports whether the kind is block-level. Everything else is inline.
func (k Kind) IsBlock() bool { return blockKinds[k] }

// IsInline reports whether the kind is inline-level.
func (k Kind) IsInline() bool { return k != KindInvalid && !blockKinds[k] }
