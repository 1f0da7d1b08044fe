package terms

// Term is any Erlang term that may appear in a consulted file
type Term interface {
	isTerm()
}

// Atom is an atom, stored unquoted
type Atom string

// String is a double-quoted string literal, stored decoded
type String string

// Integer is an integer literal as written, e.g. "42", "-1" or "16#ff"
type Integer string

// Float is a float literal as written
type Float string

// Char is a character literal as written, e.g. "$a" or "$\n"
type Char string

// Binary is a binary literal as written, e.g. `<<"abc">>`
type Binary string

// Tuple is a fixed-size tuple
type Tuple []Term

// List is a list. Tail is nil for proper lists.
type List struct {
	Elems []Term
	Tail  Term
}

// Map is a map literal with its pairs in source order
type Map []MapPair

// MapPair is one association of a Map
type MapPair struct {
	Key   Term
	Value Term
}

func (Atom) isTerm()    {}
func (String) isTerm()  {}
func (Integer) isTerm() {}
func (Float) isTerm()   {}
func (Char) isTerm()    {}
func (Binary) isTerm()  {}
func (Tuple) isTerm()   {}
func (List) isTerm()    {}
func (Map) isTerm()     {}

// NewList builds a proper list
func NewList(elems ...Term) List {
	return List{Elems: elems}
}

// IsProper reports whether the list has no explicit tail
func (l List) IsProper() bool {
	return l.Tail == nil
}

// Form is one top-level term together with the exact text it was parsed from,
// including its closing full stop.
type Form struct {
	Term   Term
	Source string
}

// Equal reports whether two terms print identically
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Format(a) == Format(b)
}

// Key returns the first element of a tuple when it is an atom, the way
// lists:keyfind/3 with position 1 sees a term.
func Key(t Term) (Atom, bool) {
	tuple, ok := t.(Tuple)
	if !ok || len(tuple) == 0 {
		return "", false
	}
	atom, ok := tuple[0].(Atom)
	return atom, ok
}
