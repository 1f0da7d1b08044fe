package terms

// Parse reads a sequence of forms, each terminated by a full stop, the way
// file:consult/1 does. An empty or comment-only source yields no forms.
func Parse(src string) ([]Form, error) {
	p := &parser{lex: newLexer(src)}
	var forms []Form
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return forms, nil
		}

		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		dot, err := p.next()
		if err != nil {
			return nil, err
		}
		if dot.kind != tokDot {
			return nil, p.unexpected(dot, "full stop")
		}
		forms = append(forms, Form{Term: term, Source: src[tok.start:dot.end]})
	}
}

// ParseTerm reads exactly one form
func ParseTerm(src string) (Term, error) {
	forms, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, &SyntaxError{Line: 1, Col: 1, Msg: "expected exactly one term"}
	}
	return forms[0].Term, nil
}

type parser struct {
	lex    *lexer
	buf    token
	peeked bool
}

func (p *parser) next() (token, error) {
	if p.peeked {
		p.peeked = false
		return p.buf, nil
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked {
		return p.buf, nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return tok, err
	}
	p.buf = tok
	p.peeked = true
	return tok, nil
}

func (p *parser) unexpected(tok token, want string) error {
	got := tok.kind.String()
	if tok.kind == tokPunct || tok.kind == tokAtom {
		got = "'" + tok.text + "'"
	}
	return &SyntaxError{Line: tok.line, Col: tok.col, Msg: "expected " + want + ", got " + got}
}

func (p *parser) isPunct(tok token, text string) bool {
	return tok.kind == tokPunct && tok.text == text
}

func (p *parser) parseTerm() (Term, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.kind {
	case tokAtom:
		return Atom(tok.text), nil
	case tokString:
		return p.parseStringTail(tok.text)
	case tokInteger:
		return Integer(tok.text), nil
	case tokFloat:
		return Float(tok.text), nil
	case tokChar:
		return Char(tok.text), nil
	case tokPunct:
		switch tok.text {
		case "-", "+":
			return p.parseSigned(tok)
		case "{":
			elems, err := p.parseSequence("}")
			if err != nil {
				return nil, err
			}
			return Tuple(elems), nil
		case "[":
			return p.parseList()
		case "<<":
			return p.parseBinary(tok)
		case "#{":
			return p.parseMap()
		}
	}
	return nil, p.unexpected(tok, "term")
}

// parseStringTail joins adjacent string literals, "a" "b" being "ab"
func (p *parser) parseStringTail(s string) (Term, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokString {
			return String(s), nil
		}
		p.peeked = false
		s += tok.text
	}
}

func (p *parser) parseSigned(sign token) (Term, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	text := tok.text
	if sign.text == "-" {
		text = "-" + text
	}
	switch tok.kind {
	case tokInteger:
		return Integer(text), nil
	case tokFloat:
		return Float(text), nil
	}
	return nil, p.unexpected(tok, "number")
}

// parseSequence reads comma separated terms up to the closing token
func (p *parser) parseSequence(closing string) ([]Term, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if p.isPunct(tok, closing) {
		p.peeked = false
		return []Term{}, nil
	}

	var elems []Term
	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		elems = append(elems, term)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case p.isPunct(tok, ","):
			continue
		case p.isPunct(tok, closing):
			return elems, nil
		}
		return nil, p.unexpected(tok, "',' or '"+closing+"'")
	}
}

func (p *parser) parseList() (Term, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if p.isPunct(tok, "]") {
		p.peeked = false
		return List{Elems: []Term{}}, nil
	}

	list := List{}
	for {
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, term)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case p.isPunct(tok, ","):
			continue
		case p.isPunct(tok, "]"):
			return list, nil
		case p.isPunct(tok, "|"):
			tail, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			closing, err := p.next()
			if err != nil {
				return nil, err
			}
			if !p.isPunct(closing, "]") {
				return nil, p.unexpected(closing, "']'")
			}
			// [a | [b]] is the proper list [a, b]
			if inner, ok := tail.(List); ok {
				list.Elems = append(list.Elems, inner.Elems...)
				list.Tail = inner.Tail
			} else {
				list.Tail = tail
			}
			return list, nil
		}
		return nil, p.unexpected(tok, "',', '|' or ']'")
	}
}

// parseBinary keeps the literal as written; segments are only checked for
// being made of plausible tokens.
func (p *parser) parseBinary(open token) (Term, error) {
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF, tokDot:
			return nil, p.unexpected(tok, "'>>'")
		case tokPunct:
			switch tok.text {
			case ">>":
				return Binary(p.lex.src[open.start:tok.end]), nil
			case ",", ":", "/", "-", "+":
				continue
			}
			return nil, p.unexpected(tok, "binary segment")
		}
	}
}

func (p *parser) parseMap() (Term, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if p.isPunct(tok, "}") {
		p.peeked = false
		return Map{}, nil
	}

	var m Map
	for {
		key, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		arrow, err := p.next()
		if err != nil {
			return nil, err
		}
		if !p.isPunct(arrow, "=>") && !p.isPunct(arrow, ":=") {
			return nil, p.unexpected(arrow, "'=>'")
		}
		value, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		m = append(m, MapPair{Key: key, Value: value})

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch {
		case p.isPunct(tok, ","):
			continue
		case p.isPunct(tok, "}"):
			return m, nil
		}
		return nil, p.unexpected(tok, "',' or '}'")
	}
}
