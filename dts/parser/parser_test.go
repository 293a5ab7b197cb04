package parser

import (
	"reflect"
	"testing"
)

func parseText(t *testing.T, src string, opts ...Option) *Parser {
	t.Helper()
	return ParseSource([]byte(src), "test.dts", opts...)
}

func issueKinds(p *Parser) []IssueKind {
	kinds := make([]IssueKind, 0, len(p.Issues()))
	for _, issue := range p.Issues() {
		kinds = append(kinds, issue.Kind)
	}
	return kinds
}

func requireNoIssues(t *testing.T, p *Parser) {
	t.Helper()
	if len(p.Issues()) != 0 {
		t.Fatalf("unexpected issues: %v", issueKinds(p))
	}
}

func TestParseEmptyDocument(t *testing.T) {
	p := parseText(t, "")
	if p.Document() == nil {
		t.Fatal("Document() = nil")
	}
	if got := len(p.AllAstItems()); got != 0 {
		t.Errorf("items = %d, want 0", got)
	}
	requireNoIssues(t, p)
}

func TestParseDirectives(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
		text  string
	}{
		{"/dts-v1/;", KindDTSVersion, ""},
		{"/plugin/;", KindPlugin, ""},
		{"/memreserve/ 0x1000 0x2000;", KindMemReserve, ""},
		{`#include "board.dtsi"`, KindInclude, "board.dtsi"},
		{"#include <dt-bindings/gpio/gpio.h>", KindInclude, "dt-bindings/gpio/gpio.h"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := parseText(t, tt.input)
			requireNoIssues(t, p)
			items := p.AllAstItems()
			if len(items) != 1 {
				t.Fatalf("items = %d, want 1", len(items))
			}
			if items[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", items[0].Kind, tt.kind)
			}
			if items[0].Text != tt.text {
				t.Errorf("text = %q, want %q", items[0].Text, tt.text)
			}
		})
	}
}

func TestMemReserveValues(t *testing.T) {
	p := parseText(t, "/memreserve/ 0x1000 0x2000;")
	requireNoIssues(t, p)
	nums := p.AllAstItems()[0].ChildrenOfKind(KindNumberValue)
	if len(nums) != 2 {
		t.Fatalf("number values = %d, want 2", len(nums))
	}
	if nums[0].Value != 0x1000 || nums[1].Value != 0x2000 {
		t.Errorf("values = %#x, %#x, want 0x1000, 0x2000", nums[0].Value, nums[1].Value)
	}
	if nums[0].Base != 16 {
		t.Errorf("base = %d, want 16", nums[0].Base)
	}
}

func TestRootNodeWithProperties(t *testing.T) {
	p := parseText(t, `/dts-v1/;

/ {
	compatible = "acme,board";
	#address-cells = <1>;
	status;
};
`)
	requireNoIssues(t, p)
	items := p.AllAstItems()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	root := items[1]
	if root.Kind != KindRootNode {
		t.Fatalf("items[1].Kind = %v, want RootNode", root.Kind)
	}

	props := root.ChildrenOfKind(KindProperty)
	if len(props) != 3 {
		t.Fatalf("properties = %d, want 3", len(props))
	}
	wantNames := []string{"compatible", "#address-cells", "status"}
	for i, want := range wantNames {
		if props[i].Name != want {
			t.Errorf("property[%d].Name = %q, want %q", i, props[i].Name, want)
		}
	}

	str := props[0].FirstChildOfKind(KindPropertyValues).Slots[0]
	if str.Kind != KindStringValue || str.Text != "acme,board" {
		t.Errorf("compatible value = %v %q, want StringValue \"acme,board\"", str.Kind, str.Text)
	}

	cells := props[1].FirstChildOfKind(KindPropertyValues).Slots[0]
	if cells.Kind != KindCellArray {
		t.Fatalf("#address-cells value kind = %v, want CellArray", cells.Kind)
	}
	num := cells.Children[0].FirstChildOfKind(KindNumberValue)
	if num.Value != 1 || num.Base != 10 {
		t.Errorf("cell value = %d base %d, want 1 base 10", num.Value, num.Base)
	}

	// A name with no '=', no address, and no braces is a boolean property.
	if vals := props[2].FirstChildOfKind(KindPropertyValues); vals != nil {
		t.Errorf("boolean property carries values: %v", vals)
	}
}

func TestChildNodeVsPropertyBacktracking(t *testing.T) {
	p := parseText(t, "/ { foo; bar { }; baz@0; };")
	root := p.AllAstItems()[0]

	props := root.ChildrenOfKind(KindProperty)
	if len(props) != 1 || props[0].Name != "foo" {
		t.Fatalf("properties = %v, want [foo]", props)
	}
	nodes := root.ChildrenOfKind(KindChildNode)
	if len(nodes) != 2 {
		t.Fatalf("child nodes = %d, want 2", len(nodes))
	}
	if nodes[0].Name != "bar" || nodes[1].Name != "baz" {
		t.Errorf("child names = %q, %q, want bar, baz", nodes[0].Name, nodes[1].Name)
	}
	// baz@0 has a unit address, so it stays a node even without braces.
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueCurlyOpen}) {
		t.Errorf("issues = %v, want [curly-open]", got)
	}
}

func TestUnitAddresses(t *testing.T) {
	tests := []struct {
		decl    string
		name    string
		address []uint32
		issues  []IssueKind
	}{
		{"node1@20", "node1", []uint32{0x20}, nil},
		{"node1@ff00ff00ff", "node1", []uint32{0xff, 0x00ff00ff}, nil},
		{"memory@80000000", "memory", []uint32{0x80000000}, nil},
		{"node@2,4", "node", []uint32{0x2, 0x4}, nil},
		{"node@0x20", "node", []uint32{0x20}, []IssueKind{IssueAddressHexPrefix}},
		{"node@20ULL", "node", []uint32{0x20}, []IssueKind{IssueAddressULLSuffix}},
		{"node1 @20", "node1", []uint32{0x20}, []IssueKind{IssueAddressWhitespace}},
		{"node1@ 20", "node1", []uint32{0x20}, []IssueKind{IssueAddressWhitespace}},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			p := parseText(t, "/ { "+tt.decl+" { }; };")
			node := p.AllAstItems()[0].FirstChildOfKind(KindChildNode)
			if node == nil {
				t.Fatal("no child node parsed")
			}
			name := node.FirstChildOfKind(KindNodeName)
			if name.Name != tt.name {
				t.Errorf("name = %q, want %q", name.Name, tt.name)
			}
			if !reflect.DeepEqual(name.Address, tt.address) {
				t.Errorf("address = %#x, want %#x", name.Address, tt.address)
			}
			if got := issueKinds(p); !reflect.DeepEqual(got, tt.issues) && !(len(got) == 0 && len(tt.issues) == 0) {
				t.Errorf("issues = %v, want %v", got, tt.issues)
			}
		})
	}
}

func TestNodeNameStart(t *testing.T) {
	p := parseText(t, "/ { 1node { }; };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueNodeNameStart}) {
		t.Fatalf("issues = %v, want [node-name-start]", got)
	}
	name := p.AllAstItems()[0].FirstChildOfKind(KindChildNode).FirstChildOfKind(KindNodeName)
	if name.Name != "1node" {
		t.Errorf("name = %q, want %q", name.Name, "1node")
	}
}

func TestPropertyValueSlotsPreserved(t *testing.T) {
	p := parseText(t, "/ { prop = <10>, , <20>; };")
	prop := p.AllAstItems()[0].FirstChildOfKind(KindProperty)
	values := prop.FirstChildOfKind(KindPropertyValues)
	if len(values.Slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(values.Slots))
	}
	if values.Slots[0] == nil || values.Slots[2] == nil {
		t.Error("outer slots must hold values")
	}
	if values.Slots[1] != nil {
		t.Errorf("middle slot = %v, want nil", values.Slots[1])
	}

	issues := p.Issues()
	if len(issues) != 1 || issues[0].Kind != IssueMissingValue {
		t.Fatalf("issues = %v, want one missing-value", issueKinds(p))
	}
	// The issue is anchored between the two separators.
	if issues[0].First.Literal != "," || issues[0].Last.Literal != "," {
		t.Errorf("anchored at %q..%q, want between commas", issues[0].First.Literal, issues[0].Last.Literal)
	}
}

func TestMissingCommaRecovery(t *testing.T) {
	p := parseText(t, `/ { compatible = "acme,one" "acme,two"; };`)
	values := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues)
	if len(values.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(values.Slots))
	}
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueMissingComma}) {
		t.Errorf("issues = %v, want [missing-comma]", got)
	}
}

func TestCellArrays(t *testing.T) {
	p := parseText(t, "/ { interrupts = <1 0x20 &intc>; };")
	requireNoIssues(t, p)
	arr := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	cells := arr.ChildrenOfKind(KindCell)
	if len(cells) != 3 {
		t.Fatalf("cells = %d, want 3", len(cells))
	}
	if n := cells[0].FirstChildOfKind(KindNumberValue); n.Value != 1 || n.Base != 10 {
		t.Errorf("cell[0] = %d base %d, want 1 base 10", n.Value, n.Base)
	}
	if n := cells[1].FirstChildOfKind(KindNumberValue); n.Value != 0x20 || n.Base != 16 {
		t.Errorf("cell[1] = %d base %d, want 32 base 16", n.Value, n.Base)
	}
	if ref := cells[2].FirstChildOfKind(KindLabelRef); ref == nil || ref.Name != "intc" {
		t.Errorf("cell[2] ref = %v, want &intc", ref)
	}
}

func TestCellLabels(t *testing.T) {
	p := parseText(t, "/ { p = <start: 10 20>; };")
	requireNoIssues(t, p)
	arr := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	cells := arr.ChildrenOfKind(KindCell)
	if len(cells) != 2 {
		t.Fatalf("cells = %d, want 2", len(cells))
	}
	labels := cells[0].Labels()
	if len(labels) != 1 || labels[0].Name != "start" {
		t.Errorf("cell[0] labels = %v, want [start]", labels)
	}
}

func TestCellLabelMissingColon(t *testing.T) {
	p := parseText(t, "/ { p = <start 10>; };")
	issues := p.Issues()
	if len(issues) != 1 || issues[0].Kind != IssueLabelMissingColon {
		t.Fatalf("issues = %v, want one label-missing-colon", issueKinds(p))
	}
	if issues[0].Severity != SeverityWarning {
		t.Errorf("severity = %v, want warning", issues[0].Severity)
	}
	arr := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	cell := arr.FirstChildOfKind(KindCell)
	if labels := cell.Labels(); len(labels) != 1 || labels[0].Name != "start" {
		t.Errorf("labels = %v, want [start]", labels)
	}
}

func TestCellArrayMissingClose(t *testing.T) {
	p := parseText(t, "/ { p = <1 2; };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueCloseBracket}) {
		t.Fatalf("issues = %v, want [close-bracket]", got)
	}
	arr := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	if got := len(arr.ChildrenOfKind(KindCell)); got != 2 {
		t.Errorf("cells = %d, want 2", got)
	}
}

func TestByteStrings(t *testing.T) {
	p := parseText(t, "/ { data = [00 11 22 33]; };")
	requireNoIssues(t, p)
	bs := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	if bs.Kind != KindByteString {
		t.Fatalf("value kind = %v, want ByteString", bs.Kind)
	}
	bytes := bs.ChildrenOfKind(KindByteValue)
	want := []uint64{0x00, 0x11, 0x22, 0x33}
	if len(bytes) != len(want) {
		t.Fatalf("byte values = %d, want %d", len(bytes), len(want))
	}
	for i, b := range bytes {
		if b.Value != want[i] {
			t.Errorf("byte[%d] = %#x, want %#x", i, b.Value, want[i])
		}
	}
}

func TestByteStringOddNibbles(t *testing.T) {
	p := parseText(t, "/ { data = [0011223]; };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueByteStringEven}) {
		t.Fatalf("issues = %v, want [bytestring-even]", got)
	}
	bs := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
	bytes := bs.ChildrenOfKind(KindByteValue)
	want := []uint64{0x00, 0x11, 0x22, 0x3}
	if len(bytes) != len(want) {
		t.Fatalf("byte values = %d, want %d", len(bytes), len(want))
	}
	// The short trailing nibble still lands as the last byte.
	if bytes[3].Value != 0x3 {
		t.Errorf("trailing byte = %#x, want 0x3", bytes[3].Value)
	}
}

func TestByteStringNonHex(t *testing.T) {
	p := parseText(t, "/ { data = [zz]; };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueByteStringHex}) {
		t.Fatalf("issues = %v, want [bytestring-hex]", got)
	}
}

func TestLabelsOnNodesAndProperties(t *testing.T) {
	p := parseText(t, `/ {
	l1: l2: uart@100 {
		l3: compatible = "acme,uart";
	};
};
`)
	requireNoIssues(t, p)
	node := p.AllAstItems()[0].FirstChildOfKind(KindChildNode)
	labels := node.Labels()
	if len(labels) != 2 || labels[0].Name != "l1" || labels[1].Name != "l2" {
		t.Fatalf("node labels = %v, want [l1 l2]", labels)
	}
	prop := node.FirstChildOfKind(KindProperty)
	if got := prop.Labels(); len(got) != 1 || got[0].Name != "l3" {
		t.Errorf("property labels = %v, want [l3]", got)
	}
}

func TestReferenceNodes(t *testing.T) {
	p := parseText(t, `&uart0 { status = "okay"; };`)
	requireNoIssues(t, p)
	node := p.AllAstItems()[0]
	if node.Kind != KindChildNode {
		t.Fatalf("kind = %v, want ChildNode", node.Kind)
	}
	if node.Ref == nil || node.Ref.Kind != KindLabelRef || node.Name != "uart0" {
		t.Errorf("ref = %v name = %q, want LabelRef uart0", node.Ref, node.Name)
	}
}

func TestNodePathReference(t *testing.T) {
	p := parseText(t, "&{/soc/uart@100} { };")
	requireNoIssues(t, p)
	node := p.AllAstItems()[0]
	ref := node.Ref
	if ref == nil || ref.Kind != KindNodePathRef {
		t.Fatalf("ref = %v, want NodePathRef", ref)
	}
	if !reflect.DeepEqual(ref.Path, []string{"soc", "uart"}) {
		t.Errorf("path = %v, want [soc uart]", ref.Path)
	}
	segs := ref.FirstChildOfKind(KindNodePath).ChildrenOfKind(KindNodeName)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if !reflect.DeepEqual(segs[1].Address, []uint32{0x100}) {
		t.Errorf("uart address = %#x, want [0x100]", segs[1].Address)
	}
}

func TestRootPathReference(t *testing.T) {
	p := parseText(t, "&{/} { };")
	requireNoIssues(t, p)
	ref := p.AllAstItems()[0].Ref
	if ref == nil || len(ref.Path) != 0 {
		t.Errorf("ref = %v, want empty path to root", ref)
	}
}

func TestReferenceWhitespace(t *testing.T) {
	p := parseText(t, "& uart0 { };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueWhitespaceNotAllowed}) {
		t.Fatalf("issues = %v, want [whitespace-not-allowed]", got)
	}
	if node := p.AllAstItems()[0]; node.Ref == nil || node.Ref.Name != "uart0" {
		t.Errorf("ref = %v, want uart0", node.Ref)
	}
}

func TestPathReferenceMissingSlash(t *testing.T) {
	p := parseText(t, "&{soc} { };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueMissingForwardSlash}) {
		t.Fatalf("issues = %v, want [missing-forward-slash]", got)
	}
	if ref := p.AllAstItems()[0].Ref; !reflect.DeepEqual(ref.Path, []string{"soc"}) {
		t.Errorf("path = %v, want [soc]", ref.Path)
	}
}

func TestDeleteStatements(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   NodeKind
		issues []IssueKind
	}{
		{"node by name", "/ { /delete-node/ uart@100; };", KindDeleteNode, nil},
		{"property", "/ { /delete-property/ clock-names; };", KindDeleteProperty, nil},
		{"node by label ref", "/delete-node/ &uart0;", KindDeleteNode, nil},
		{"node by path ref", "/delete-node/ &{/soc/timer};", KindDeleteNode, nil},
		{"ref inside node body", "/ { /delete-node/ &uart0; };", KindDeleteNode, []IssueKind{IssueWrongTargetKind}},
		{"bare name at top level", "/delete-node/ uart;", KindDeleteNode, []IssueKind{IssueWrongTargetKind}},
		{"missing closing slash", "/delete-node &uart0;", KindDeleteNode, []IssueKind{IssueDeleteIncomplete}},
		{"missing target", "/delete-node/\n", KindDeleteNode, []IssueKind{IssueMissingTarget, IssueEndStatement}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseText(t, tt.input)
			var node *Node
			if item := p.AllAstItems()[0]; item.Kind == tt.kind {
				node = item
			} else {
				node = item.FirstChildOfKind(tt.kind)
			}
			if node == nil {
				t.Fatalf("no %v node parsed", tt.kind)
			}
			if got := issueKinds(p); !reflect.DeepEqual(got, tt.issues) && !(len(got) == 0 && len(tt.issues) == 0) {
				t.Errorf("issues = %v, want %v", got, tt.issues)
			}
		})
	}
}

func TestDeleteIncompleteKeyword(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"/delete-nod", KindDeleteNode},
		{"/delete-prop", KindDeleteProperty},
		{"/delete-", KindDeleteNode},
		{"/del", KindDeleteNode},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := parseText(t, tt.input)
			items := p.AllAstItems()
			if len(items) != 1 || items[0].Kind != tt.kind {
				t.Fatalf("items = %v, want one %v", items, tt.kind)
			}
			// A partial keyword gets its one diagnostic and nothing else.
			if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueDeleteIncomplete}) {
				t.Errorf("issues = %v, want [delete-incomplete]", got)
			}
		})
	}
}

func TestDeleteTargetName(t *testing.T) {
	p := parseText(t, "/ { /delete-node/ uart@100; };")
	requireNoIssues(t, p)
	del := p.AllAstItems()[0].FirstChildOfKind(KindDeleteNode)
	if del.Name != "uart" {
		t.Errorf("target name = %q, want uart", del.Name)
	}
	name := del.FirstChildOfKind(KindNodeName)
	if !reflect.DeepEqual(name.Address, []uint32{0x100}) {
		t.Errorf("target address = %#x, want [0x100]", name.Address)
	}
}

func TestMissingEndStatementAnchor(t *testing.T) {
	p := parseText(t, "/ {\n}")
	issues := p.Issues()
	if len(issues) != 1 || issues[0].Kind != IssueEndStatement {
		t.Fatalf("issues = %v, want one end-statement", issueKinds(p))
	}
	// Anchored at the closing brace, not at end of input.
	if issues[0].First.Literal != "}" {
		t.Errorf("anchored at %q, want %q", issues[0].First.Literal, "}")
	}
	if got := issues[0].First.Span.Start.Line; got != 2 {
		t.Errorf("anchor line = %d, want 2", got)
	}
}

func TestMissingCloseBrace(t *testing.T) {
	p := parseText(t, "/ { ;")
	kinds := issueKinds(p)
	if len(kinds) == 0 || kinds[0] != IssueCurlyClose {
		t.Fatalf("issues = %v, want curly-close first", kinds)
	}
}

func TestOmitIfNoRef(t *testing.T) {
	p := parseText(t, "/ { /omit-if-no-ref/ uart@0 { }; };")
	requireNoIssues(t, p)
	node := p.AllAstItems()[0].FirstChildOfKind(KindChildNode)
	if !node.Omit {
		t.Error("Omit = false, want true")
	}
	if node.Name != "uart" {
		t.Errorf("name = %q, want uart", node.Name)
	}
}

func TestMacroShapedValues(t *testing.T) {
	tests := []struct {
		input string
		name  string
		text  string
	}{
		{"/ { p = FOO; };", "FOO", "FOO"},
		{"/ { p = ADD(1, 2); };", "ADD", "ADD(1, 2)"},
		{"/ { p = (1 << 8); };", "", "(1 << 8)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := parseText(t, tt.input)
			requireNoIssues(t, p)
			v := p.AllAstItems()[0].FirstChildOfKind(KindProperty).FirstChildOfKind(KindPropertyValues).Slots[0]
			if v.Kind != KindMacroExpr {
				t.Fatalf("kind = %v, want MacroExpr", v.Kind)
			}
			if v.Name != tt.name || v.Text != tt.text {
				t.Errorf("name = %q text = %q, want %q %q", v.Name, v.Text, tt.name, tt.text)
			}
		})
	}
}

func TestUnknownTokenRecovery(t *testing.T) {
	p := parseText(t, "/ { $ status = \"okay\"; };")
	if got := issueKinds(p); !reflect.DeepEqual(got, []IssueKind{IssueUnknownToken}) {
		t.Fatalf("issues = %v, want [unknown-token]", got)
	}
	// Parsing resumes after the stray token.
	prop := p.AllAstItems()[0].FirstChildOfKind(KindProperty)
	if prop == nil || prop.Name != "status" {
		t.Errorf("property after recovery = %v, want status", prop)
	}
}

func TestParseTerminatesOnJunk(t *testing.T) {
	inputs := []string{
		"@@@@",
		"};;;{",
		"= = =",
		"////",
		"&&&&",
		"< < <",
		"/ { / { / {",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			p := parseText(t, input)
			if p.Document() == nil {
				t.Fatal("Document() = nil")
			}
			if len(p.Issues()) == 0 {
				t.Error("junk input produced no issues")
			}
		})
	}
}

func TestSpanContainment(t *testing.T) {
	p := parseText(t, `/dts-v1/;
#include "common.dtsi"

/ {
	model = "Acme Board";
	cpus {
		cpu@0 {
			reg = <0>;
		};
	};
	mem: memory@80000000 {
		device_type = "memory";
		reg = <0x80000000 0x10000000>;
	};
};

&mem {
	status = "okay";
};
`)
	requireNoIssues(t, p)

	var walk func(n *Node)
	walk = func(n *Node) {
		for _, child := range n.Children {
			if child.First != nil && n.First != nil && !n.Span().Contains(child.Span()) {
				t.Errorf("%v span %v not inside parent %v span %v",
					child.Kind, child.Span(), n.Kind, n.Span())
			}
			if child.Parent != n {
				t.Errorf("%v parent link broken", child.Kind)
			}
			walk(child)
		}
	}
	walk(p.Document())
}

func TestCommentAttachment(t *testing.T) {
	p := parseText(t, `// board header
/ {
	// uart settings
	uart@0 {
	};
};
`)
	requireNoIssues(t, p)
	if got := len(p.Comments()); got != 2 {
		t.Fatalf("comments = %d, want 2", got)
	}
	root := p.AllAstItems()[0]
	if got := root.CommentsBefore; len(got) != 1 || got[0].Literal != "// board header" {
		t.Errorf("root CommentsBefore = %v, want the header comment", got)
	}
	uart := root.FirstChildOfKind(KindChildNode)
	if got := uart.CommentsBefore; len(got) != 1 || got[0].Literal != "// uart settings" {
		t.Errorf("uart CommentsBefore = %v, want the settings comment", got)
	}
}

func TestNestedNodeBodies(t *testing.T) {
	p := parseText(t, `/ {
	soc {
		uart@100 {
			compatible = "acme,uart";
		};
		uart@200 {
			compatible = "acme,uart";
		};
	};
};
`)
	requireNoIssues(t, p)
	soc := p.AllAstItems()[0].FirstChildOfKind(KindChildNode)
	uarts := soc.ChildrenOfKind(KindChildNode)
	if len(uarts) != 2 {
		t.Fatalf("uarts = %d, want 2", len(uarts))
	}
	want := [][]uint32{{0x100}, {0x200}}
	for i, uart := range uarts {
		name := uart.FirstChildOfKind(KindNodeName)
		if !reflect.DeepEqual(name.Address, want[i]) {
			t.Errorf("uart[%d] address = %#x, want %#x", i, name.Address, want[i])
		}
	}
}
