package ullbc

import (
	"github.com/pierrevial/candy-for-charon/errors"
)

// Validate checks the structural preconditions the reconstruction engine
// relies on: the body has an entry block, every block carries a
// terminator, and every terminator target is a defined block. A violation
// means the upstream producer is broken, not that the input program is
// wrong.
func (b *Body) Validate(decl string) error {
	if len(b.Blocks) == 0 {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Decl(decl).
			Detail("body has no blocks").
			Build()
	}
	for id := range b.Blocks {
		block := &b.Blocks[id]
		if block.Terminator == nil {
			return errors.New(errors.PhaseValidate, errors.KindNoTerminator).
				Decl(decl).
				Block(uint32(id)).
				Build()
		}
		for _, succ := range block.Terminator.Successors() {
			if int(succ) >= len(b.Blocks) {
				return errors.DanglingBlock(decl, uint32(id), uint32(succ))
			}
		}
	}
	if b.ArgCount >= len(b.Locals) {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Decl(decl).
			Detail("argument count %d exceeds locals %d", b.ArgCount, len(b.Locals)).
			Build()
	}
	return nil
}
