package terms

import (
	"fmt"
	"strings"
)

var reservedWords = map[string]bool{
	"after": true, "and": true, "andalso": true, "band": true, "begin": true,
	"bnot": true, "bor": true, "bsl": true, "bsr": true, "bxor": true,
	"case": true, "catch": true, "cond": true, "div": true, "else": true,
	"end": true, "fun": true, "if": true, "let": true, "maybe": true,
	"not": true, "of": true, "or": true, "orelse": true, "receive": true,
	"rem": true, "try": true, "when": true, "xor": true,
}

// Format prints a term compactly, with no whitespace between elements
func Format(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

// FormatForm prints a term followed by a full stop
func FormatForm(t Term) string {
	return Format(t) + "."
}

func writeTerm(sb *strings.Builder, t Term) {
	switch v := t.(type) {
	case Atom:
		sb.WriteString(quoteAtom(string(v)))
	case String:
		writeQuoted(sb, string(v), '"')
	case Integer:
		sb.WriteString(string(v))
	case Float:
		sb.WriteString(string(v))
	case Char:
		sb.WriteString(string(v))
	case Binary:
		sb.WriteString(string(v))
	case Tuple:
		sb.WriteByte('{')
		writeElems(sb, v)
		sb.WriteByte('}')
	case List:
		sb.WriteByte('[')
		writeElems(sb, v.Elems)
		if v.Tail != nil {
			sb.WriteByte('|')
			writeTerm(sb, v.Tail)
		}
		sb.WriteByte(']')
	case Map:
		sb.WriteString("#{")
		for i, pair := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeTerm(sb, pair.Key)
			sb.WriteString(" => ")
			writeTerm(sb, pair.Value)
		}
		sb.WriteByte('}')
	default:
		panic(fmt.Sprintf("terms: cannot format %T", t))
	}
}

func writeElems(sb *strings.Builder, elems []Term) {
	for i, e := range elems {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeTerm(sb, e)
	}
}

func quoteAtom(s string) string {
	if s != "" && isLower(s[0]) && !reservedWords[s] {
		plain := true
		for i := 0; i < len(s); i++ {
			if !isNameChar(s[i]) {
				plain = false
				break
			}
		}
		if plain {
			return s
		}
	}
	var sb strings.Builder
	writeQuoted(&sb, s, '\'')
	return sb.String()
}

func writeQuoted(sb *strings.Builder, s string, quote rune) {
	sb.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(sb, `\%03o`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(quote)
}
