package query

import (
	"fmt"
	"strings"
	"unicode"

	"agentql-tools/internal/domain/entity"
)

type Kind int

const (
	KindField Kind = iota
	KindFieldList
	KindContainer
	KindContainerList
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindFieldList:
		return "field_list"
	case KindContainer:
		return "container"
	case KindContainerList:
		return "container_list"
	default:
		return "unknown"
	}
}

// Node is one term of an AgentQL query. The root is an unnamed container.
type Node struct {
	Name     string
	Context  string
	Kind     Kind
	Children []*Node
}

func (n *Node) IsList() bool {
	return n.Kind == KindFieldList || n.Kind == KindContainerList
}

type parser struct {
	src []rune
	pos int
}

// Parse reads a query such as
//
//	{ products[] { name price(in USD) } header { title } }
//
// Terms may be separated by whitespace or commas.
func Parse(q string) (*Node, error) {
	p := &parser{src: []rune(q)}
	p.skipSpace()
	if !p.consume('{') {
		return nil, p.errorf("expected '{'")
	}

	root := &Node{Kind: KindContainer}
	children, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	root.Children = children

	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after query", p.src[p.pos])
	}
	return root, nil
}

// parseBody reads terms until the closing brace of the current container.
func (p *parser) parseBody() ([]*Node, error) {
	var children []*Node
	seen := make(map[string]bool)
	for {
		p.skipSeparators()
		if p.pos >= len(p.src) {
			return nil, p.errorf("missing '}'")
		}
		if p.consume('}') {
			if len(children) == 0 {
				return nil, p.errorf("empty container")
			}
			return children, nil
		}

		node, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if seen[node.Name] {
			return nil, p.errorf("duplicate term %q", node.Name)
		}
		seen[node.Name] = true
		children = append(children, node)
	}
}

func (p *parser) parseTerm() (*Node, error) {
	name := p.identifier()
	if name == "" {
		return nil, p.errorf("expected identifier")
	}
	node := &Node{Name: name, Kind: KindField}

	p.skipSpace()
	if p.peek() == '(' {
		ctx, err := p.context()
		if err != nil {
			return nil, err
		}
		node.Context = ctx
		p.skipSpace()
	}

	list := false
	if p.consume('[') {
		p.skipSpace()
		if !p.consume(']') {
			return nil, p.errorf("expected ']'")
		}
		list = true
		p.skipSpace()
	}

	if node.Context == "" && p.peek() == '(' {
		ctx, err := p.context()
		if err != nil {
			return nil, err
		}
		node.Context = ctx
		p.skipSpace()
	}

	if p.consume('{') {
		children, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		node.Children = children
		node.Kind = KindContainer
		if list {
			node.Kind = KindContainerList
		}
		return node, nil
	}

	if list {
		node.Kind = KindFieldList
	}
	return node, nil
}

// context reads a parenthesised description, allowing nested parentheses.
func (p *parser) context() (string, error) {
	start := p.pos
	p.pos++
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				text := string(p.src[start+1 : p.pos])
				p.pos++
				return strings.TrimSpace(text), nil
			}
		}
		p.pos++
	}
	p.pos = start
	return "", p.errorf("unterminated '('")
}

func (p *parser) identifier() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			p.pos++
			continue
		}
		break
	}
	return string(p.src[start:p.pos])
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) consume(r rune) bool {
	if p.peek() == r && p.pos < len(p.src) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) skipSeparators() {
	for p.pos < len(p.src) && (unicode.IsSpace(p.src[p.pos]) || p.src[p.pos] == ',') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return entity.NewInvalidInputError(fmt.Sprintf("invalid query at offset %d: %s", p.pos, msg))
}
