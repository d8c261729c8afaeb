package llbc

import (
	"fmt"
	"strings"

	"github.com/pierrevial/candy-for-charon/ir"
)

// FormatStatement renders a structured statement with the given base
// indentation.
func FormatStatement(env ir.FormatEnv, s Statement, indent string) string {
	var sb strings.Builder
	writeStmt(&sb, env, s, indent)
	return sb.String()
}

// FormatBody renders a structured body.
func FormatBody(env ir.FormatEnv, b *Body) string {
	return FormatStatement(env, b.Stmt, "")
}

func writeStmt(sb *strings.Builder, env ir.FormatEnv, s Statement, indent string) {
	switch s := s.(type) {
	case Assign:
		fmt.Fprintf(sb, "%s%s := %s;\n", indent,
			ir.FormatPlace(env, s.Dest), ir.FormatRvalue(env, s.Source))
	case FakeRead:
		fmt.Fprintf(sb, "%s@fake_read(%s);\n", indent, ir.FormatPlace(env, s.Place))
	case SetDiscriminant:
		fmt.Fprintf(sb, "%s@discriminant(%s) := %d;\n", indent,
			ir.FormatPlace(env, s.Place), s.Variant)
	case Drop:
		fmt.Fprintf(sb, "%sdrop %s;\n", indent, ir.FormatPlace(env, s.Place))
	case Assert:
		fmt.Fprintf(sb, "%sassert(%s == %v);\n", indent,
			ir.FormatOperand(env, s.Cond), s.Expected)
	case Call:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = ir.FormatOperand(env, a)
		}
		fmt.Fprintf(sb, "%s%s := %s(%s);\n", indent,
			ir.FormatPlace(env, s.Dest), env.FunName(s.Fun), strings.Join(args, ", "))
	case Panic:
		fmt.Fprintf(sb, "%spanic;\n", indent)
	case Return:
		fmt.Fprintf(sb, "%sreturn;\n", indent)
	case Break:
		fmt.Fprintf(sb, "%sbreak %d;\n", indent, s.Depth)
	case Continue:
		fmt.Fprintf(sb, "%scontinue %d;\n", indent, s.Depth)
	case Nop:
		fmt.Fprintf(sb, "%snop;\n", indent)
	case Sequence:
		writeStmt(sb, env, s.First, indent)
		writeStmt(sb, env, s.Rest, indent)
	case Loop:
		fmt.Fprintf(sb, "%sloop {\n", indent)
		writeStmt(sb, env, s.Body, indent+"  ")
		fmt.Fprintf(sb, "%s}\n", indent)
	case If:
		fmt.Fprintf(sb, "%sif %s {\n", indent, ir.FormatOperand(env, s.Cond))
		writeStmt(sb, env, s.Then, indent+"  ")
		fmt.Fprintf(sb, "%s} else {\n", indent)
		writeStmt(sb, env, s.Else, indent+"  ")
		fmt.Fprintf(sb, "%s}\n", indent)
	case SwitchInt:
		fmt.Fprintf(sb, "%sswitch %s {\n", indent, ir.FormatOperand(env, s.Discr))
		for _, br := range s.Branches {
			values := make([]string, len(br.Values))
			for i, v := range br.Values {
				values[i] = v.String()
			}
			fmt.Fprintf(sb, "%s  %s => {\n", indent, strings.Join(values, " | "))
			writeStmt(sb, env, br.Stmt, indent+"    ")
			fmt.Fprintf(sb, "%s  }\n", indent)
		}
		fmt.Fprintf(sb, "%s  _ => {\n", indent)
		writeStmt(sb, env, s.Otherwise, indent+"    ")
		fmt.Fprintf(sb, "%s  }\n", indent)
		fmt.Fprintf(sb, "%s}\n", indent)
	case Match:
		fmt.Fprintf(sb, "%smatch %s {\n", indent, ir.FormatPlace(env, s.Place))
		for _, br := range s.Branches {
			variants := make([]string, len(br.Variants))
			for i, v := range br.Variants {
				variants[i] = fmt.Sprintf("@%d", v)
			}
			fmt.Fprintf(sb, "%s  %s => {\n", indent, strings.Join(variants, " | "))
			writeStmt(sb, env, br.Stmt, indent+"    ")
			fmt.Fprintf(sb, "%s  }\n", indent)
		}
		fmt.Fprintf(sb, "%s  _ => {\n", indent)
		writeStmt(sb, env, s.Otherwise, indent+"    ")
		fmt.Fprintf(sb, "%s  }\n", indent)
		fmt.Fprintf(sb, "%s}\n", indent)
	default:
		fmt.Fprintf(sb, "%s<statement?>;\n", indent)
	}
}
