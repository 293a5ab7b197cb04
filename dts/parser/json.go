package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Name     string      `json:"name,omitempty"`
	Text     string      `json:"text,omitempty"`
	Value    *uint64     `json:"value,omitempty"`
	Base     int         `json:"base,omitempty"`
	Address  []uint32    `json:"address,omitempty"`
	Path     []string    `json:"path,omitempty"`
	Omit     bool        `json:"omit,omitempty"`
	Resolved string      `json:"resolved,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Kind:     n.Kind.String(),
		Name:     n.Name,
		Text:     n.Text,
		Base:     n.Base,
		Address:  n.Address,
		Path:     n.Path,
		Omit:     n.Omit,
		Resolved: n.ResolvedPath,
	}

	span := n.Span()
	if span.Start.Line != 0 || span.End.Line != 0 {
		jn.Span = &jsonSpan{
			Start: jsonPosition{Line: span.Start.Line, Column: span.Start.Column},
			End:   jsonPosition{Line: span.End.Line, Column: span.End.Column},
		}
	}

	if n.Kind == KindNumberValue || n.Kind == KindByteValue {
		v := n.Value
		jn.Value = &v
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON()
		}
	}

	return jn
}
