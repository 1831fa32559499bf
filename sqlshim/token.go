// Package sqlshim applies the PostgreSQL-compatibility rewrite pipeline
// between wire-protocol parse and engine execution: a token-level blacklist
// pass followed by a fixed sequence of AST rewrite rules, mirroring the
// order and intent of datafusion-postgres's PostgresCompatibilityParser.
package sqlshim

import (
	"strings"
	"unicode"
)

// TokenKind classifies one lexical token of the blacklist tokenizer. This
// tokenizer is deliberately narrower than a full SQL lexer: it exists only
// to support the blacklist step's token-stream matching, the way the
// original sqlparser-backed tokenizer it is grounded on was used for
// exactly that and nothing else — rules 2-12 run on the real pg_query_go
// AST instead.
type TokenKind int

const (
	TokWord TokenKind = iota
	TokNumber
	TokString
	TokQuotedIdent
	TokPlaceholder
	TokPunct
	TokWhitespace
	TokSemicolon
)

// Token is one lexical unit plus its exact source text, so that tokens
// left untouched by the blacklist step can be reassembled byte for byte.
type Token struct {
	Kind TokenKind
	Text string
}

// matchable reports whether two tokens should be considered "the same
// token" for blacklist pattern matching: same kind and, for words, a
// case-insensitive comparison (SQL keywords and unquoted identifiers are
// case-insensitive; quoted identifiers and string literals are not).
func (t Token) matchable(other Token) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind == TokWord {
		return strings.EqualFold(t.Text, other.Text)
	}
	return t.Text == other.Text
}

// Tokenize splits sql into tokens covering identifiers, keywords, numbers,
// string/quoted-identifier literals (with '' / "" escaping), $n parameter
// placeholders, dollar-quoted string bodies, line/block comments (dropped),
// punctuation and multi-character operators.
func Tokenize(sql string) []Token {
	var toks []Token
	r := []rune(sql)
	n := len(r)
	i := 0

	for i < n {
		c := r[i]

		switch {
		case unicode.IsSpace(c):
			j := i
			for j < n && unicode.IsSpace(r[j]) {
				j++
			}
			toks = append(toks, Token{TokWhitespace, string(r[i:j])})
			i = j

		case c == '-' && i+1 < n && r[i+1] == '-':
			j := i
			for j < n && r[j] != '\n' {
				j++
			}
			i = j // line comments are dropped entirely, not emitted as tokens

		case c == '/' && i+1 < n && r[i+1] == '*':
			j := i + 2
			for j+1 < n && !(r[j] == '*' && r[j+1] == '/') {
				j++
			}
			i = min(j+2, n)

		case c == ';':
			toks = append(toks, Token{TokSemicolon, ";"})
			i++

		case c == '\'':
			j := scanQuoted(r, i, '\'')
			toks = append(toks, Token{TokString, string(r[i:j])})
			i = j

		case c == '"':
			j := scanQuoted(r, i, '"')
			toks = append(toks, Token{TokQuotedIdent, string(r[i:j])})
			i = j

		case c == '$' && i+1 < n && unicode.IsDigit(r[i+1]):
			j := i + 1
			for j < n && unicode.IsDigit(r[j]) {
				j++
			}
			toks = append(toks, Token{TokPlaceholder, string(r[i:j])})
			i = j

		case c == '$':
			j := scanDollarQuoted(r, i)
			toks = append(toks, Token{TokString, string(r[i:j])})
			i = j

		case unicode.IsDigit(c):
			j := scanNumber(r, i)
			toks = append(toks, Token{TokNumber, string(r[i:j])})
			i = j

		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(r[j]) {
				j++
			}
			toks = append(toks, Token{TokWord, string(r[i:j])})
			i = j

		default:
			j := scanOperator(r, i)
			toks = append(toks, Token{TokPunct, string(r[i:j])})
			i = j
		}
	}
	return toks
}

// FilterSignificant drops whitespace tokens, matching the blacklist step's
// "whitespace and semicolons filtered out" comparison rule. Semicolons are
// kept: the shim operates on one statement at a time and a trailing
// semicolon is meaningful to preserve for re-parsing multi-statement input.
func FilterSignificant(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == TokWhitespace {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Join renders tokens back into SQL text, separating adjacent tokens with a
// single space. This does not reproduce the original formatting — it only
// needs to be valid input for pg_query_go's parser, which does not care
// about whitespace style.
func Join(toks []Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

func scanQuoted(r []rune, i int, quote rune) int {
	n := len(r)
	j := i + 1
	for j < n {
		if r[j] == quote {
			if j+1 < n && r[j+1] == quote {
				j += 2
				continue
			}
			return j + 1
		}
		if r[j] == '\\' && j+1 < n {
			j += 2
			continue
		}
		j++
	}
	return j
}

func scanDollarQuoted(r []rune, i int) int {
	n := len(r)
	j := i + 1
	for j < n && (isIdentPart(r[j])) {
		j++
	}
	if j >= n || r[j] != '$' {
		// Not a valid dollar-quote tag: treat the lone '$' as its own token.
		return i + 1
	}
	tag := string(r[i : j+1])
	j++
	for j < n {
		if strings.HasPrefix(string(r[j:]), tag) {
			return j + len(tag)
		}
		j++
	}
	return n
}

func scanNumber(r []rune, i int) int {
	n := len(r)
	j := i
	for j < n && unicode.IsDigit(r[j]) {
		j++
	}
	if j < n && r[j] == '.' {
		j++
		for j < n && unicode.IsDigit(r[j]) {
			j++
		}
	}
	if j < n && (r[j] == 'e' || r[j] == 'E') {
		k := j + 1
		if k < n && (r[k] == '+' || r[k] == '-') {
			k++
		}
		if k < n && unicode.IsDigit(r[k]) {
			j = k
			for j < n && unicode.IsDigit(r[j]) {
				j++
			}
		}
	}
	return j
}

var multiCharOps = []string{"::", "<>", "!=", "<=", ">=", "||", "->>", "->"}

func scanOperator(r []rune, i int) int {
	rest := string(r[i:])
	for _, op := range multiCharOps {
		if strings.HasPrefix(rest, op) {
			return i + len([]rune(op))
		}
	}
	return i + 1
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isIdentPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}
