package visibility

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokBool
	tokNull
	tokOp
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var out []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			out = append(out, token{kind: tokRParen, text: ")", pos: i})
			i++
		case strings.HasPrefix(src[i:], "&&"):
			out = append(out, token{kind: tokAnd, text: "&&", pos: i})
			i += 2
		case strings.HasPrefix(src[i:], "||"):
			out = append(out, token{kind: tokOr, text: "||", pos: i})
			i += 2
		case c == '=' || c == '!' || c == '<' || c == '>':
			op := string(c)
			if i+1 < len(src) && src[i+1] == '=' {
				op += "="
			}
			switch op {
			case "=":
				return nil, fmt.Errorf("%w: unexpected '=' at offset %d, use '=='", ErrSyntax, i)
			case "!":
				out = append(out, token{kind: tokNot, text: op, pos: i})
			default:
				out = append(out, token{kind: tokOp, text: op, pos: i})
			}
			i += len(op)
		case c == '"' || c == '\'':
			text, end, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: text, pos: i})
			i = end
		case isWordByte(c):
			start := i
			for i < len(src) && isWordByte(src[i]) {
				i++
			}
			out = append(out, classifyWord(src[start:i], start))
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, c, i)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(src)}), nil
}

// scanString reads a quoted literal starting at src[start] and returns its
// unescaped text and the offset after the closing quote.
func scanString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
}

func classifyWord(word string, pos int) token {
	switch strings.ToLower(word) {
	case "true", "false":
		return token{kind: tokBool, text: strings.ToLower(word), pos: pos}
	case "null", "nil":
		return token{kind: tokNull, text: "null", pos: pos}
	}
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return token{kind: tokNumber, text: word, pos: pos}
	}
	return token{kind: tokIdent, text: word, pos: pos}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '+' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
