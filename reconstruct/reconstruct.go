package reconstruct

import (
	"github.com/pierrevial/candy-for-charon/errors"
	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/reconstruct/internal/graph"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

// Body translates an unstructured body into its structured form. The
// declaration name is used only for diagnostics. On failure the input
// is untouched and the error carries the phase, the block and the
// declaration that could not be structured.
func Body(decl string, b *ullbc.Body) (*llbc.Body, error) {
	if err := b.Validate(decl); err != nil {
		return nil, err
	}

	succs := make([][]uint32, len(b.Blocks))
	for id := range b.Blocks {
		for _, s := range b.Blocks[id].Terminator.Successors() {
			succs[id] = append(succs[id], uint32(s))
		}
	}
	g := graph.New(succs)
	doms := graph.Dominators(g)

	bd := &builder{
		decl:   decl,
		body:   b,
		g:      g,
		doms:   doms,
		loops:  graph.NaturalLoops(g, doms),
		loopAt: make(map[uint32]int),
		done:   make([]bool, len(b.Blocks)),
	}
	for i := range bd.loops {
		bd.loopAt[bd.loops[i].Header] = i
	}

	stmt, err := bd.block(uint32(ir.EntryBlock))
	if err != nil {
		return nil, err
	}

	locals := make([]llbc.Var, len(b.Locals))
	for i, v := range b.Locals {
		locals[i] = llbc.Var{ID: v.ID, Name: v.Name, Ty: v.Ty}
	}
	return &llbc.Body{Locals: locals, ArgCount: b.ArgCount, Stmt: stmt}, nil
}

// frame is an active loop during structuring. Edges to the header
// become Continue, edges to the designated exit become Break, with the
// depth given by the frame's distance from the top of the stack.
type frame struct {
	loop    *graph.Loop
	exit    uint32
	hasExit bool
}

type builder struct {
	decl   string
	body   *ullbc.Body
	g      *graph.Graph
	doms   *graph.DomTree
	loops  []graph.Loop
	loopAt map[uint32]int

	frames []frame  // enclosing loops, outermost first
	stops  []uint32 // pending switch joins, innermost last
	done   []bool
}

// block structures the region rooted at id. Each block is structured at
// most once; a second arrival means the region cannot be expressed as a
// tree without duplication.
func (bd *builder) block(id uint32) (llbc.Statement, error) {
	if bd.done[id] {
		return nil, errors.Irreducible(bd.decl, id)
	}
	bd.done[id] = true

	li, isHeader := bd.loopAt[id]
	if !isHeader {
		return bd.blockContent(id)
	}

	loop := &bd.loops[li]
	exit, hasExit, err := bd.loopExit(loop)
	if err != nil {
		return nil, err
	}
	bd.frames = append(bd.frames, frame{loop: loop, exit: exit, hasExit: hasExit})
	inner, err := bd.blockContent(id)
	bd.frames = bd.frames[:len(bd.frames)-1]
	if err != nil {
		return nil, err
	}
	out := llbc.Statement(llbc.Loop{Body: inner})
	if hasExit {
		cont, err := bd.exitTail(loop, exit)
		if err != nil {
			return nil, err
		}
		out = llbc.NewSequence(out, cont)
	}
	return out, nil
}

// loopExit picks the single block the loop falls through to. Edges that
// leave the loop toward an enclosing frame's header or exit are
// multi-level continues and breaks, not exits of this loop. Called
// before the loop's own frame is pushed.
func (bd *builder) loopExit(l *graph.Loop) (uint32, bool, error) {
	seen := make(map[uint32]bool)
	var candidates []uint32
	for _, u := range l.Blocks.ToSlice() {
		for _, v := range bd.g.Succs(u) {
			if l.Contains(v) || seen[v] {
				continue
			}
			seen[v] = true
			if bd.ownedByOuter(v) {
				continue
			}
			candidates = append(candidates, v)
		}
	}
	switch len(candidates) {
	case 0:
		return 0, false, nil
	case 1:
		return candidates[0], true, nil
	}
	return 0, false, errors.AmbiguousExit(bd.decl, l.Header, candidates)
}

func (bd *builder) ownedByOuter(v uint32) bool {
	for _, f := range bd.frames {
		if f.loop.Header == v || (f.hasExit && f.exit == v) {
			return true
		}
	}
	return false
}

func (bd *builder) blockContent(id uint32) (llbc.Statement, error) {
	blk := bd.body.Block(ir.BlockID(id))
	stmts := make([]llbc.Statement, 0, len(blk.Statements)+2)
	for _, st := range blk.Statements {
		stmts = append(stmts, lowerStatement(st))
	}

	switch t := blk.Terminator.(type) {
	case ullbc.Goto:
		tail, err := bd.tail(uint32(t.Target))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, tail)
	case ullbc.Call:
		stmts = append(stmts, llbc.Call{
			Fun:     t.Fun,
			Regions: t.Regions,
			TyArgs:  t.TyArgs,
			Args:    t.Args,
			Dest:    t.Dest,
		})
		tail, err := bd.tail(uint32(t.Target))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, tail)
	case ullbc.Assert:
		stmts = append(stmts, llbc.Assert{Cond: t.Cond, Expected: t.Expected})
		tail, err := bd.tail(uint32(t.Target))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, tail)
	case ullbc.Drop:
		stmts = append(stmts, llbc.Drop{Place: t.Place})
		tail, err := bd.tail(uint32(t.Target))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, tail)
	case ullbc.Return:
		stmts = append(stmts, llbc.Return{})
	case ullbc.Panic:
		stmts = append(stmts, llbc.Panic{})
	case ullbc.Unreachable:
		stmts = append(stmts, llbc.Panic{})
	case ullbc.Switch:
		sw, cont, err := bd.switchStmt(id, t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, sw)
		if cont != nil {
			stmts = append(stmts, cont)
		}
	}
	return llbc.Chain(stmts...), nil
}

func (bd *builder) switchStmt(id uint32, t ullbc.Switch) (sw, cont llbc.Statement, err error) {
	join, hasJoin, err := bd.joinPoint(id)
	if err != nil {
		return nil, nil, err
	}
	if hasJoin {
		bd.stops = append(bd.stops, join)
	}
	sw, err = bd.buildSwitch(t)
	if hasJoin {
		bd.stops = bd.stops[:len(bd.stops)-1]
	}
	if err != nil {
		return nil, nil, err
	}
	if !hasJoin {
		return sw, nil, nil
	}
	cont, err = bd.block(join)
	if err != nil {
		return nil, nil, err
	}
	return sw, cont, nil
}

func (bd *builder) buildSwitch(t ullbc.Switch) (llbc.Statement, error) {
	if t.Targets.IsIf {
		thenS, err := bd.tail(uint32(t.Targets.IfTrue))
		if err != nil {
			return nil, err
		}
		elseS, err := bd.tail(uint32(t.Targets.IfFalse))
		if err != nil {
			return nil, err
		}
		return llbc.If{Cond: t.Discr, Then: thenS, Else: elseS}, nil
	}

	// Cases sharing a target fold into one branch. Branch order follows
	// the first occurrence of each target, values keep their input order.
	idxOf := make(map[uint32]int)
	var branches []llbc.IntBranch
	var targets []uint32
	for _, c := range t.Targets.Cases {
		tg := uint32(c.Target)
		if i, ok := idxOf[tg]; ok {
			branches[i].Values = append(branches[i].Values, c.Value)
			continue
		}
		idxOf[tg] = len(branches)
		branches = append(branches, llbc.IntBranch{Values: []ir.ScalarValue{c.Value}})
		targets = append(targets, tg)
	}
	for i, tg := range targets {
		s, err := bd.tail(tg)
		if err != nil {
			return nil, err
		}
		branches[i].Stmt = s
	}
	otherwise, err := bd.tail(uint32(t.Targets.Otherwise))
	if err != nil {
		return nil, err
	}
	return llbc.SwitchInt{
		Discr:     t.Discr,
		IntTy:     t.Targets.IntTy,
		Branches:  branches,
		Otherwise: otherwise,
	}, nil
}

// joinPoint finds where the arms of the branch at id converge: the
// dominator-tree child of id, inside the innermost enclosing loop, with
// two or more forward predecessors. Back edges do not count, so a loop
// header entered by an arm is not mistaken for a join. More than one
// candidate cannot be ordered and is a structuring failure.
func (bd *builder) joinPoint(id uint32) (uint32, bool, error) {
	var cur *graph.Loop
	if len(bd.frames) > 0 {
		cur = bd.frames[len(bd.frames)-1].loop
	}
	var candidates []uint32
	for _, c := range bd.doms.Children(id) {
		if cur != nil && !cur.Contains(c) {
			continue
		}
		if bd.forwardPreds(c, nil) < 2 {
			continue
		}
		candidates = append(candidates, c)
	}
	switch len(candidates) {
	case 0:
		return 0, false, nil
	case 1:
		return candidates[0], true, nil
	}
	// Candidates feeding each other are two entries into one cycle, not
	// two merge points.
	for _, a := range candidates {
		for _, b := range candidates {
			if a == b {
				continue
			}
			for _, p := range bd.g.Preds(b) {
				if p == a {
					return 0, false, errors.Irreducible(bd.decl, b)
				}
			}
		}
	}
	return 0, false, errors.AmbiguousJoin(bd.decl, id, candidates)
}

// forwardPreds counts predecessors of n that are not back edges.
// Predecessors in unreachable code do not count, and neither do
// predecessors inside structured when it is non-nil: their edges have
// already been rewritten to Break statements.
func (bd *builder) forwardPreds(n uint32, structured *graph.Loop) int {
	count := 0
	for _, p := range bd.g.Preds(n) {
		if !bd.g.Reachable(p) {
			continue
		}
		if structured != nil && structured.Contains(p) {
			continue
		}
		if !bd.doms.Dominates(n, p) {
			count++
		}
	}
	return count
}

// tail resolves a control transfer to the statement that performs it:
// Continue for an enclosing header, Break for an enclosing exit, Nop
// for the pending join, otherwise the target is structured inline. A
// target reached this way from more than one forward predecessor would
// have to be duplicated, which the engine refuses.
func (bd *builder) tail(to uint32) (llbc.Statement, error) {
	return bd.continueAt(to, nil)
}

// exitTail resolves the fall-through after a structured loop. Every edge
// from inside l to the exit has already become a Break, so only
// predecessors outside the loop can force duplication.
func (bd *builder) exitTail(l *graph.Loop, to uint32) (llbc.Statement, error) {
	return bd.continueAt(to, l)
}

func (bd *builder) continueAt(to uint32, structured *graph.Loop) (llbc.Statement, error) {
	for i := len(bd.frames) - 1; i >= 0; i-- {
		f := bd.frames[i]
		if f.loop.Header == to {
			return llbc.Continue{Depth: len(bd.frames) - 1 - i}, nil
		}
		if f.hasExit && f.exit == to {
			return llbc.Break{Depth: len(bd.frames) - 1 - i}, nil
		}
	}
	if n := len(bd.stops); n > 0 && bd.stops[n-1] == to {
		return llbc.Nop{}, nil
	}
	if bd.forwardPreds(to, structured) > 1 {
		return nil, errors.Irreducible(bd.decl, to)
	}
	return bd.block(to)
}

func lowerStatement(st ullbc.Statement) llbc.Statement {
	switch st := st.(type) {
	case ullbc.Assign:
		return llbc.Assign{Dest: st.Dest, Source: st.Source}
	case ullbc.FakeRead:
		return llbc.FakeRead{Place: st.Place}
	case ullbc.SetDiscriminant:
		return llbc.SetDiscriminant{Place: st.Place, Variant: st.Variant}
	case ullbc.StorageDead:
		return llbc.Drop{Place: ir.PlaceOf(st.Var)}
	case ullbc.Deinit:
		return llbc.Drop{Place: st.Place}
	}
	return llbc.Nop{}
}
