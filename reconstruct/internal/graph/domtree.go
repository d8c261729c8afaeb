package graph

// DomTree is the dominator tree of a Graph, computed with the iterative
// Cooper-Harvey-Kennedy algorithm over reverse postorder.
type DomTree struct {
	g        *Graph
	idom     []int32 // immediate dominator, -1 for entry and unreachable
	depth    []int32 // distance from entry in the tree
	children [][]uint32
}

// Dominators computes the dominator tree of g.
func Dominators(g *Graph) *DomTree {
	n := g.NumNodes()
	idom := make([]int32, n)
	for i := range idom {
		idom[i] = -1
	}

	rpo := g.RPO()
	if len(rpo) == 0 {
		return &DomTree{g: g, idom: idom}
	}

	// idom[entry] temporarily points at itself so intersect terminates.
	entry := rpo[0]
	idom[entry] = int32(entry)

	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			var newIdom int32 = -1
			for _, p := range g.Preds(b) {
				if idom[p] < 0 {
					continue // not processed yet
				}
				if newIdom < 0 {
					newIdom = int32(p)
				} else {
					newIdom = g.intersect(idom, newIdom, int32(p))
				}
			}
			if newIdom >= 0 && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	idom[entry] = -1

	t := &DomTree{g: g, idom: idom}
	t.build()
	return t
}

// intersect walks two nodes up the current tree until they meet, using
// rpo indices as the height measure.
func (g *Graph) intersect(idom []int32, a, b int32) int32 {
	for a != b {
		for g.rpoOf[a] > g.rpoOf[b] {
			a = idom[a]
		}
		for g.rpoOf[b] > g.rpoOf[a] {
			b = idom[b]
		}
	}
	return a
}

func (t *DomTree) build() {
	n := t.g.NumNodes()
	t.depth = make([]int32, n)
	t.children = make([][]uint32, n)
	// Children in rpo order so traversals are deterministic.
	for _, b := range t.g.RPO() {
		if t.idom[b] >= 0 {
			t.children[t.idom[b]] = append(t.children[t.idom[b]], b)
		}
	}
	for _, b := range t.g.RPO()[1:] {
		t.depth[b] = t.depth[t.idom[b]] + 1
	}
}

// IDom returns the immediate dominator of n and whether it has one (the
// entry and unreachable nodes do not).
func (t *DomTree) IDom(n uint32) (uint32, bool) {
	if t.idom[n] < 0 {
		return 0, false
	}
	return uint32(t.idom[n]), true
}

// Children returns the dominator-tree children of n in reverse postorder.
func (t *DomTree) Children(n uint32) []uint32 {
	return t.children[n]
}

// Depth returns the dominator-tree depth of n (entry is 0).
func (t *DomTree) Depth(n uint32) int {
	return int(t.depth[n])
}

// Dominates reports whether a dominates b (reflexively).
func (t *DomTree) Dominates(a, b uint32) bool {
	if !t.g.Reachable(a) || !t.g.Reachable(b) {
		return false
	}
	for t.depth[b] > t.depth[a] {
		b = uint32(t.idom[b])
	}
	return a == b
}
