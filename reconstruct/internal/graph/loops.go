package graph

import "sort"

// Loop is a natural loop: the header plus every node that can reach one of
// the header's back-edges without leaving through the header.
type Loop struct {
	Header uint32
	Blocks *NodeSet
	// Parent is the index of the innermost enclosing loop in the result of
	// NaturalLoops, or -1 for a top-level loop.
	Parent int
}

// Contains reports whether n belongs to the loop.
func (l *Loop) Contains(n uint32) bool { return l.Blocks.Has(n) }

// NaturalLoops finds the natural loops of g. A back edge is an edge b→h
// where h dominates b; loops sharing a header are merged. The result is
// ordered outermost first; Parent links give the nesting.
func NaturalLoops(g *Graph, doms *DomTree) []Loop {
	byHeader := make(map[uint32]*NodeSet)
	var headers []uint32

	for _, b := range g.RPO() {
		for _, h := range g.Succs(b) {
			if !doms.Dominates(h, b) {
				continue
			}
			set, ok := byHeader[h]
			if !ok {
				set = NewNodeSet(g.NumNodes() - 1)
				set.Set(h)
				byHeader[h] = set
				headers = append(headers, h)
			}
			collectLoop(g, h, b, set)
		}
	}

	// Outermost first: shallower headers dominate deeper ones.
	sort.Slice(headers, func(i, j int) bool {
		di, dj := doms.Depth(headers[i]), doms.Depth(headers[j])
		if di != dj {
			return di < dj
		}
		return headers[i] < headers[j]
	})

	loops := make([]Loop, len(headers))
	for i, h := range headers {
		loops[i] = Loop{Header: h, Blocks: byHeader[h], Parent: -1}
	}
	for i := range loops {
		// The innermost enclosing loop is the last earlier loop whose body
		// contains this header.
		for j := i - 1; j >= 0; j-- {
			if loops[j].Contains(loops[i].Header) {
				loops[i].Parent = j
				break
			}
		}
	}
	return loops
}

// collectLoop adds to set every node that reaches the back-edge source tail
// without passing through the header (the classic dataflow construction).
// Unreachable predecessors are not loop members: they are not dominated by
// the header, and following them would drag their other successors in as
// phantom exits.
func collectLoop(g *Graph, header, tail uint32, set *NodeSet) {
	if set.Has(tail) {
		return
	}
	set.Set(tail)
	stack := []uint32{tail}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.Preds(n) {
			if !g.Reachable(p) {
				continue
			}
			if !set.Has(p) {
				set.Set(p)
				stack = append(stack, p)
			}
		}
	}
}

// IsBackEdge reports whether the edge from→to is a back edge under doms.
func IsBackEdge(doms *DomTree, from, to uint32) bool {
	return doms.Dominates(to, from)
}
