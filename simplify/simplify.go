package simplify

import (
	"github.com/pierrevial/candy-for-charon/llbc"
)

// Body runs the full simplification on one structured body: the
// discriminant-read merge first, then guard collapsing with its final
// invariant check. variants may be nil to skip the merge.
func Body(decl string, b *llbc.Body, variants VariantResolver) (*llbc.Body, error) {
	return Guards(decl, MergeDiscriminantReads(b, variants))
}
