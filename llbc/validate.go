package llbc

import (
	"github.com/pierrevial/candy-for-charon/errors"
)

// CheckCanonical verifies that no Sequence in the tree has a Sequence as
// its first component.
func CheckCanonical(s Statement) error {
	switch s := s.(type) {
	case Sequence:
		if _, bad := s.First.(Sequence); bad {
			return errors.New(errors.PhaseValidate, errors.KindBadSequence).
				Detail("sequence nested on the left").
				Build()
		}
		if err := CheckCanonical(s.First); err != nil {
			return err
		}
		return CheckCanonical(s.Rest)
	case Loop:
		return CheckCanonical(s.Body)
	case If:
		if err := CheckCanonical(s.Then); err != nil {
			return err
		}
		return CheckCanonical(s.Else)
	case SwitchInt:
		for _, br := range s.Branches {
			if err := CheckCanonical(br.Stmt); err != nil {
				return err
			}
		}
		return CheckCanonical(s.Otherwise)
	case Match:
		for _, br := range s.Branches {
			if err := CheckCanonical(br.Stmt); err != nil {
				return err
			}
		}
		return CheckCanonical(s.Otherwise)
	}
	return nil
}

// CheckLoopIndices verifies that every Break(n) and Continue(n) references
// an enclosing loop: n is strictly less than the number of Loop nodes
// around the statement.
func CheckLoopIndices(s Statement) error {
	return checkLoopIndices(s, 0)
}

func checkLoopIndices(s Statement, depth int) error {
	switch s := s.(type) {
	case Break:
		if s.Depth >= depth {
			return errors.New(errors.PhaseValidate, errors.KindBadLoopIndex).
				Detail("break(%d) under %d loops", s.Depth, depth).
				Build()
		}
	case Continue:
		if s.Depth >= depth {
			return errors.New(errors.PhaseValidate, errors.KindBadLoopIndex).
				Detail("continue(%d) under %d loops", s.Depth, depth).
				Build()
		}
	case Sequence:
		if err := checkLoopIndices(s.First, depth); err != nil {
			return err
		}
		return checkLoopIndices(s.Rest, depth)
	case Loop:
		return checkLoopIndices(s.Body, depth+1)
	case If:
		if err := checkLoopIndices(s.Then, depth); err != nil {
			return err
		}
		return checkLoopIndices(s.Else, depth)
	case SwitchInt:
		for _, br := range s.Branches {
			if err := checkLoopIndices(br.Stmt, depth); err != nil {
				return err
			}
		}
		return checkLoopIndices(s.Otherwise, depth)
	case Match:
		for _, br := range s.Branches {
			if err := checkLoopIndices(br.Stmt, depth); err != nil {
				return err
			}
		}
		return checkLoopIndices(s.Otherwise, depth)
	}
	return nil
}
