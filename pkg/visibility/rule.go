package visibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
)

// ErrSyntax wraps every compile error.
var ErrSyntax = errors.New("visibility: syntax error")

// Rule is a compiled visibility expression. The nil Rule is always visible.
type Rule struct {
	source string
	eval   predicate
}

type predicate func(values map[string]any) bool

// Compile parses source. An empty source compiles to a nil Rule.
func Compile(source string) (*Rule, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, nil
	}
	tokens, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	eval, err := p.or()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, tok.text, tok.pos)
	}
	return &Rule{source: trimmed, eval: eval}, nil
}

// MustCompile is Compile for rules known at init time.
func MustCompile(source string) *Rule {
	rule, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return rule
}

// String returns the trimmed source.
func (r *Rule) String() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Visible evaluates the rule against values.
func (r *Rule) Visible(values map[string]any) bool {
	if r == nil {
		return true
	}
	return r.eval(values)
}

// Watch calls fn with the rule's current result and again whenever it flips
// as f's values change.
func Watch(f *form.Form, rule *Rule, fn func(visible bool)) (cancel func()) {
	return f.Watch(func(values form.Values) bool {
		return rule.Visible(values)
	}, fn)
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) or() (predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(values map[string]any) bool { return l(values) || right(values) }
	}
	return left, nil
}

func (p *parser) and() (predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(values map[string]any) bool { return l(values) && right(values) }
	}
	return left, nil
}

func (p *parser) unary() (predicate, error) {
	if p.peek().kind != tokNot {
		return p.primary()
	}
	p.next()
	inner, err := p.unary()
	if err != nil {
		return nil, err
	}
	return func(values map[string]any) bool { return !inner(values) }, nil
}

func (p *parser) primary() (predicate, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')' at offset %d", ErrSyntax, closing.pos)
		}
		return inner, nil
	case tokIdent:
		if p.peek().kind != tokOp {
			path := tok.text
			return func(values map[string]any) bool {
				value, _ := lookup(values, path)
				return truthy(value)
			}, nil
		}
		op := p.next()
		return compare(tok.text, op, p.next())
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of rule", ErrSyntax)
	default:
		return nil, fmt.Errorf("%w: expected a value path, got %q at offset %d", ErrSyntax, tok.text, tok.pos)
	}
}

func compare(path string, op, lit token) (predicate, error) {
	equality := op.text == "==" || op.text == "!="
	negate := op.text == "!="

	switch lit.kind {
	case tokNull:
		if !equality {
			return nil, fmt.Errorf("%w: %s cannot compare with null", ErrSyntax, op.text)
		}
		return func(values map[string]any) bool {
			value, _ := lookup(values, path)
			return (value == nil) != negate
		}, nil
	case tokBool:
		if !equality {
			return nil, fmt.Errorf("%w: %s cannot compare with a boolean", ErrSyntax, op.text)
		}
		want := lit.text == "true"
		return func(values map[string]any) bool {
			value, _ := lookup(values, path)
			return (asBool(value) == want) != negate
		}, nil
	case tokString, tokIdent:
		if !equality {
			return nil, fmt.Errorf("%w: %s cannot compare with a string", ErrSyntax, op.text)
		}
		want := lit.text
		return func(values map[string]any) bool {
			value, _ := lookup(values, path)
			return (asString(value) == want) != negate
		}, nil
	case tokNumber:
		want, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q at offset %d", ErrSyntax, lit.text, lit.pos)
		}
		cmp := numberComparison(op.text)
		return func(values map[string]any) bool {
			value, _ := lookup(values, path)
			got, _ := asNumber(value)
			return cmp(got, want)
		}, nil
	default:
		return nil, fmt.Errorf("%w: expected a literal after %s at offset %d", ErrSyntax, op.text, lit.pos)
	}
}

func numberComparison(op string) func(a, b float64) bool {
	switch op {
	case "!=":
		return func(a, b float64) bool { return a != b }
	case "<":
		return func(a, b float64) bool { return a < b }
	case "<=":
		return func(a, b float64) bool { return a <= b }
	case ">":
		return func(a, b float64) bool { return a > b }
	case ">=":
		return func(a, b float64) bool { return a >= b }
	default:
		return func(a, b float64) bool { return a == b }
	}
}

// lookup resolves a dotted path. A literal key containing dots wins over
// traversal.
func lookup(values map[string]any, path string) (any, bool) {
	if values == nil {
		return nil, false
	}
	if value, ok := values[path]; ok {
		return value, true
	}
	var current any = values
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := asNumber(value); ok {
		return n != 0
	}
	return true
}

func asBool(value any) bool {
	if s, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed
		}
	}
	return truthy(value)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
