package graph

// Graph is a directed control-flow graph over nodes 0..N-1 with node 0 as
// entry. Successor lists keep the terminator's edge order; predecessor
// lists are derived.
type Graph struct {
	succs [][]uint32
	preds [][]uint32
	rpo   []uint32 // reverse postorder of reachable nodes
	rpoOf []int    // node -> rpo index, -1 when unreachable
}

// New builds a graph from per-node successor lists. Duplicate edges (a
// switch with two values targeting one block) are kept; predecessor lists
// deduplicate so predecessor counts mean distinct source blocks.
func New(succs [][]uint32) *Graph {
	n := len(succs)
	g := &Graph{
		succs: succs,
		preds: make([][]uint32, n),
		rpoOf: make([]int, n),
	}

	seen := make(map[[2]uint32]bool)
	for from, targets := range succs {
		for _, to := range targets {
			edge := [2]uint32{uint32(from), to}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			g.preds[to] = append(g.preds[to], uint32(from))
		}
	}

	for i := range g.rpoOf {
		g.rpoOf[i] = -1
	}
	g.buildRPO()
	return g
}

// NumNodes returns the node count, reachable or not.
func (g *Graph) NumNodes() int { return len(g.succs) }

// Succs returns the successor list of n.
func (g *Graph) Succs(n uint32) []uint32 { return g.succs[n] }

// Preds returns the distinct predecessors of n.
func (g *Graph) Preds(n uint32) []uint32 { return g.preds[n] }

// Reachable reports whether n is reachable from the entry.
func (g *Graph) Reachable(n uint32) bool { return g.rpoOf[n] >= 0 }

// RPO returns the reachable nodes in reverse postorder (entry first).
func (g *Graph) RPO() []uint32 { return g.rpo }

func (g *Graph) buildRPO() {
	visited := make([]bool, len(g.succs))
	var post []uint32

	// Iterative DFS; the frame tracks which successor to visit next.
	type frame struct {
		node uint32
		next int
	}
	stack := []frame{{node: 0}}
	visited[0] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(g.succs[top.node]) {
			succ := g.succs[top.node][top.next]
			top.next++
			if !visited[succ] {
				visited[succ] = true
				stack = append(stack, frame{node: succ})
			}
			continue
		}
		post = append(post, top.node)
		stack = stack[:len(stack)-1]
	}

	g.rpo = make([]uint32, len(post))
	for i, n := range post {
		g.rpo[len(post)-1-i] = n
	}
	for i, n := range g.rpo {
		g.rpoOf[n] = i
	}
}
