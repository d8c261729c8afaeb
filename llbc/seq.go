package llbc

// NewSequence builds first; rest, reassociating so the first component of
// the result is never itself a Sequence: (s0; s1); s2 becomes s0; (s1; s2).
func NewSequence(first, rest Statement) Statement {
	if seq, ok := first.(Sequence); ok {
		return Sequence{First: seq.First, Rest: NewSequence(seq.Rest, rest)}
	}
	return Sequence{First: first, Rest: rest}
}

// Chain folds a statement list into a right-associated sequence. An empty
// list is a Nop; a single statement is itself.
func Chain(stmts ...Statement) Statement {
	switch len(stmts) {
	case 0:
		return Nop{}
	case 1:
		return stmts[0]
	}
	out := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		out = NewSequence(stmts[i], out)
	}
	return out
}

// Walk visits s and every nested statement in pre-order. fn returning
// false skips the children of the current statement.
func Walk(s Statement, fn func(Statement) bool) {
	if !fn(s) {
		return
	}
	switch s := s.(type) {
	case Sequence:
		Walk(s.First, fn)
		Walk(s.Rest, fn)
	case Loop:
		Walk(s.Body, fn)
	case If:
		Walk(s.Then, fn)
		Walk(s.Else, fn)
	case SwitchInt:
		for _, br := range s.Branches {
			Walk(br.Stmt, fn)
		}
		Walk(s.Otherwise, fn)
	case Match:
		for _, br := range s.Branches {
			Walk(br.Stmt, fn)
		}
		Walk(s.Otherwise, fn)
	}
}

// Flatten expands a sequence chain into the ordered list of its
// non-sequence statements.
func Flatten(s Statement) []Statement {
	var out []Statement
	for {
		seq, ok := s.(Sequence)
		if !ok {
			return append(out, s)
		}
		out = append(out, Flatten(seq.First)...)
		s = seq.Rest
	}
}
