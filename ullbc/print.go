package ullbc

import (
	"fmt"
	"strings"

	"github.com/pierrevial/candy-for-charon/ir"
)

// FormatStatement renders one unstructured statement.
func FormatStatement(env ir.FormatEnv, st Statement) string {
	switch st := st.(type) {
	case Assign:
		return fmt.Sprintf("%s := %s",
			ir.FormatPlace(env, st.Dest), ir.FormatRvalue(env, st.Source))
	case FakeRead:
		return fmt.Sprintf("@fake_read(%s)", ir.FormatPlace(env, st.Place))
	case SetDiscriminant:
		return fmt.Sprintf("@discriminant(%s) := %d",
			ir.FormatPlace(env, st.Place), st.Variant)
	case StorageDead:
		return fmt.Sprintf("@storage_dead(%s)", env.VarName(st.Var))
	case Deinit:
		return fmt.Sprintf("@deinit(%s)", ir.FormatPlace(env, st.Place))
	}
	return "statement?"
}

// FormatTerminator renders one terminator.
func FormatTerminator(env ir.FormatEnv, t Terminator) string {
	switch t := t.(type) {
	case Goto:
		return fmt.Sprintf("goto bb%d", t.Target)
	case Switch:
		if t.Targets.IsIf {
			return fmt.Sprintf("if %s -> bb%d else -> bb%d",
				ir.FormatOperand(env, t.Discr), t.Targets.IfTrue, t.Targets.IfFalse)
		}
		var cases []string
		for _, c := range t.Targets.Cases {
			cases = append(cases, fmt.Sprintf("%s -> bb%d", c.Value, c.Target))
		}
		cases = append(cases, fmt.Sprintf("otherwise -> bb%d", t.Targets.Otherwise))
		return fmt.Sprintf("switch %s { %s }",
			ir.FormatOperand(env, t.Discr), strings.Join(cases, ", "))
	case Call:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = ir.FormatOperand(env, a)
		}
		return fmt.Sprintf("%s := %s(%s) -> bb%d",
			ir.FormatPlace(env, t.Dest), env.FunName(t.Fun),
			strings.Join(args, ", "), t.Target)
	case Assert:
		return fmt.Sprintf("assert(%s == %v) -> bb%d",
			ir.FormatOperand(env, t.Cond), t.Expected, t.Target)
	case Drop:
		return fmt.Sprintf("drop %s -> bb%d", ir.FormatPlace(env, t.Place), t.Target)
	case Return:
		return "return"
	case Panic:
		return "panic"
	case Unreachable:
		return "unreachable"
	}
	return "terminator?"
}

// FormatBody renders a whole body, one block per paragraph.
func FormatBody(env ir.FormatEnv, b *Body) string {
	var sb strings.Builder
	for id := range b.Blocks {
		fmt.Fprintf(&sb, "bb%d:\n", id)
		for _, st := range b.Blocks[id].Statements {
			sb.WriteString("  ")
			sb.WriteString(FormatStatement(env, st))
			sb.WriteString(";\n")
		}
		sb.WriteString("  ")
		sb.WriteString(FormatTerminator(env, b.Blocks[id].Terminator))
		sb.WriteString(";\n")
	}
	return sb.String()
}
