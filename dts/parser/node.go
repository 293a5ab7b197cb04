package parser

type NodeKind int

const (
	KindDocument NodeKind = iota

	// Top-level directives
	KindDTSVersion
	KindMemReserve
	KindPlugin
	KindInclude

	// Nodes
	KindRootNode
	KindChildNode
	KindNodeName
	KindLabelAssign
	KindLabelRef
	KindNodePathRef
	KindNodePath

	// Properties and values
	KindProperty
	KindPropertyValues
	KindStringValue
	KindNumberValue
	KindCellArray
	KindCell
	KindByteString
	KindByteValue
	KindMacroExpr

	// Deletions
	KindDeleteNode
	KindDeleteProperty

	// Error recovery
	KindUnknownToken
)

var nodeKindNames = map[NodeKind]string{
	KindDocument:       "Document",
	KindDTSVersion:     "DTSVersion",
	KindMemReserve:     "MemReserve",
	KindPlugin:         "Plugin",
	KindInclude:        "Include",
	KindRootNode:       "RootNode",
	KindChildNode:      "ChildNode",
	KindNodeName:       "NodeName",
	KindLabelAssign:    "LabelAssign",
	KindLabelRef:       "LabelRef",
	KindNodePathRef:    "NodePathRef",
	KindNodePath:       "NodePath",
	KindProperty:       "Property",
	KindPropertyValues: "PropertyValues",
	KindStringValue:    "StringValue",
	KindNumberValue:    "NumberValue",
	KindCellArray:      "CellArray",
	KindCell:           "Cell",
	KindByteString:     "ByteString",
	KindByteValue:      "ByteValue",
	KindMacroExpr:      "MacroExpr",
	KindDeleteNode:     "DeleteNode",
	KindDeleteProperty: "DeleteProperty",
	KindUnknownToken:   "UnknownToken",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is the single AST entity; Kind discriminates the grammar production
// it came from and decides which payload fields are meaningful. First/Last
// bound the node's source range. Parent is a non-owning back-reference used
// for upward traversal only.
type Node struct {
	Kind     NodeKind
	First    *Token
	Last     *Token
	Parent   *Node
	Children []*Node

	Name    string   // NodeName, Property, LabelAssign, LabelRef, MacroExpr, Delete* target
	Address []uint32 // NodeName unit address, 32-bit words, most significant first
	Omit    bool     // ChildNode declared with /omit-if-no-ref/
	Ref     *Node    // ChildNode/DeleteNode reference target (LabelRef or NodePathRef)
	Slots   []*Node  // PropertyValues: positional value slots, nil = missing value
	Path    []string // NodePath segments
	Text    string   // StringValue contents, Include path, MacroExpr source text
	Value   uint64   // NumberValue, ByteValue
	Base    int      // NumberValue radix: 10 or 16

	// Include only, set once after path resolution.
	ResolvedPath string

	hasAddress bool // NodeName: '@' was present, even if the address is bad

	// Comments attached by the post-parse pass.
	CommentsBefore []*Token
	CommentsAfter  []*Token
}

// AddChild appends child, sets its parent back-reference, and widens the
// receiver's token span to contain it. Nil children are ignored.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	n.widen(child)
}

func (n *Node) widen(child *Node) {
	if child.First != nil {
		if n.First == nil || child.First.Span.Start.Offset < n.First.Span.Start.Offset {
			n.First = child.First
		}
	}
	if child.Last != nil {
		if n.Last == nil || child.Last.Span.End.Offset > n.Last.Span.End.Offset {
			n.Last = child.Last
		}
	}
}

// extend widens the node's token span to include tok.
func (n *Node) extend(tok *Token) {
	if tok == nil {
		return
	}
	if n.First == nil || tok.Span.Start.Offset < n.First.Span.Start.Offset {
		n.First = tok
	}
	if n.Last == nil || tok.Span.End.Offset > n.Last.Span.End.Offset {
		n.Last = tok
	}
}

// Span returns the source range covered by the node's token span.
func (n *Node) Span() Span {
	var s Span
	if n.First != nil {
		s.Start = n.First.Span.Start
	}
	if n.Last != nil {
		s.End = n.Last.Span.End
	}
	return s
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

// Labels returns the label assignments attached to a node or property.
func (n *Node) Labels() []*Node {
	return n.ChildrenOfKind(KindLabelAssign)
}

func (n *Node) String() string {
	return n.stringIndent(0)
}

func (n *Node) stringIndent(indent int) string {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}

	result := prefix + n.Kind.String()
	if n.Name != "" {
		result += " " + n.Name
	}
	if n.Text != "" {
		result += " " + n.Text
	}
	result += "\n"

	for _, child := range n.Children {
		result += child.stringIndent(indent + 1)
	}
	return result
}
