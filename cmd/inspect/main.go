package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
	"github.com/pierrevial/candy-for-charon/translate"
	"github.com/pierrevial/candy-for-charon/ullbc"
)

func main() {
	var (
		cratePath   = flag.String("crate", "", "Path to a ULLBC crate (JSON)")
		funName     = flag.String("fun", "", "Dump a single function by name")
		list        = flag.Bool("list", false, "List declarations and exit")
		jsonOut     = flag.String("json", "", "Write translated bodies as JSON to this file")
		workers     = flag.Int("workers", 0, "Translation workers (0 = GOMAXPROCS)")
		noSimplify  = flag.Bool("no-simplify", false, "Skip the guard and match passes")
		verbose     = flag.Bool("v", false, "Log per-declaration progress")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *cratePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -crate <crate.json> [-fun name] [-json out.json]")
		fmt.Fprintln(os.Stderr, "       inspect -crate <crate.json> -list")
		fmt.Fprintln(os.Stderr, "       inspect -crate <crate.json> -i  (interactive mode)")
		os.Exit(1)
	}

	var opts []translate.Option
	if *workers > 0 {
		opts = append(opts, translate.WithWorkers(*workers))
	}
	if *noSimplify {
		opts = append(opts, translate.WithoutSimplify())
	}
	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		opts = append(opts, translate.WithLogger(log))
	}

	// The TUI needs a terminal; piped output gets the plain dump.
	if *interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := runInteractive(*cratePath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*cratePath, *funName, *jsonOut, *list, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cratePath, funName, jsonOut string, listOnly bool, opts []translate.Option) error {
	crate, out, err := load(cratePath, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Crate: %s\n", crate.Name)
	fmt.Printf("Types: %d  Functions: %d  Globals: %d\n",
		len(crate.Types), len(crate.Funs), len(crate.Globals))
	fmt.Printf("Translated: %d bodies, %d failed\n",
		len(out.Funs)+len(out.Globals), len(out.Diagnostics))

	if listOnly {
		fmt.Println()
		for _, d := range crate.Funs {
			fmt.Printf("  %s  [%s]\n", d.Name, status(&d, out))
		}
		for _, d := range crate.Globals {
			fmt.Printf("  %s  [global]\n", d.Name)
		}
		return reportDiagnostics(out)
	}

	if jsonOut != "" {
		if err := writeJSON(jsonOut, crate, out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", jsonOut)
	}

	env := crate.FormatEnv()
	for i := range crate.Funs {
		d := &crate.Funs[i]
		if funName != "" && d.Name != funName {
			continue
		}
		if d.Body == nil {
			if funName != "" {
				fmt.Printf("\n%s is opaque\n", d.Name)
			}
			continue
		}
		dumpFun(env, d, out.Funs[d.ID])
	}
	if funName == "" {
		for i := range crate.Globals {
			d := &crate.Globals[i]
			if d.Body == nil {
				continue
			}
			dumpGlobal(env, d, out.Globals[d.ID])
		}
	}

	return reportDiagnostics(out)
}

func load(cratePath string, opts []translate.Option) (*ullbc.Crate, *translate.Crate, error) {
	f, err := os.Open(cratePath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	crate, err := ullbc.DecodeCrate(f)
	if err != nil {
		return nil, nil, err
	}
	// Crates straight from the frontend carry sparse ids plus the
	// declaration ordering; renumber them before translating.
	if len(crate.Ordering) > 0 {
		crate, _, err = translate.Reindex(crate)
		if err != nil {
			return nil, nil, err
		}
	}
	out, err := translate.New(opts...).Crate(context.Background(), crate)
	if err != nil {
		return nil, nil, err
	}
	return crate, out, nil
}

func status(d *ullbc.FunDecl, out *translate.Crate) string {
	switch {
	case d.Body == nil:
		return "opaque"
	case out.Funs[d.ID] != nil:
		return "ok"
	default:
		return "failed"
	}
}

func dumpFun(env ir.FormatEnv, d *ullbc.FunDecl, structured *llbc.Body) {
	fmt.Printf("\n== %s ==\n", d.Name)
	fmt.Println("-- unstructured --")
	fmt.Print(ullbc.FormatBody(localEnv(env, d.Body.Locals), d.Body))
	if structured == nil {
		fmt.Println("-- structured: translation failed --")
		return
	}
	fmt.Println("-- structured --")
	fmt.Print(llbc.FormatBody(structuredEnv(env, structured), structured))
}

func dumpGlobal(env ir.FormatEnv, d *ullbc.GlobalDecl, structured *llbc.Body) {
	fmt.Printf("\n== %s (global) ==\n", d.Name)
	fmt.Print(ullbc.FormatBody(localEnv(env, d.Body.Locals), d.Body))
	if structured != nil {
		fmt.Println("-- structured --")
		fmt.Print(llbc.FormatBody(structuredEnv(env, structured), structured))
	}
}

func localEnv(env ir.FormatEnv, locals []ullbc.Var) ir.FormatEnv {
	names := make(map[ir.VarID]string, len(locals))
	for _, v := range locals {
		names[v.ID] = v.Name
	}
	return ir.NamedVars(env, names)
}

func structuredEnv(env ir.FormatEnv, b *llbc.Body) ir.FormatEnv {
	names := make(map[ir.VarID]string, len(b.Locals))
	for _, v := range b.Locals {
		names[v.ID] = v.Name
	}
	return ir.NamedVars(env, names)
}

func reportDiagnostics(out *translate.Crate) error {
	if len(out.Diagnostics) == 0 {
		return nil
	}
	fmt.Println()
	for _, d := range out.Diagnostics {
		fmt.Printf("warning: %v\n", d)
	}
	return fmt.Errorf("%d declarations failed to translate", len(out.Diagnostics))
}

// writeJSON dumps every structured body keyed by declaration name. Map
// keys marshal sorted, so the output is diffable.
func writeJSON(path string, crate *ullbc.Crate, out *translate.Crate) error {
	bodies := make(map[string]*llbc.Body)
	for i := range crate.Funs {
		if b := out.Funs[crate.Funs[i].ID]; b != nil {
			bodies[crate.Funs[i].Name] = b
		}
	}
	for i := range crate.Globals {
		if b := out.Globals[crate.Globals[i].ID]; b != nil {
			bodies[crate.Globals[i].Name] = b
		}
	}

	data, err := json.MarshalIndent(bodies, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
