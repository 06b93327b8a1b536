// Package drivercmd wires sif's pipeline — lex, parse, lower, optimize,
// analyze (CFG/dominators/SSA), run — into the single `sif <file> [flags]`
// CLI contract of spec.md §6. Grounded on the teacher's
// internal/maincmd.Cmd: the same flag-tag-driven mainer.Cmd shape
// (SetArgs/SetFlags/Validate/Main), the same "each phase prints its own
// errors, Main just maps to an exit code" discipline. Unlike the teacher's
// three independently invokable subcommands (parse/resolve/tokenize), sif
// has one linear pipeline, so there is no buildCmds-by-reflection dispatch
// table here.
package drivercmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mna/mainer"
	"github.com/mna/sif/internal/config"
	"github.com/mna/sif/lang/ast"
	"github.com/mna/sif/lang/cfg"
	"github.com/mna/sif/lang/dom"
	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/lower"
	"github.com/mna/sif/lang/optimize"
	"github.com/mna/sif/lang/parser"
	"github.com/mna/sif/lang/ssa"
	"github.com/mna/sif/lang/vm"
)

const binName = "sif"

var (
	shortUsage = fmt.Sprintf(`
usage: %s <file> [<option>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s <file> [<option>...]
       %[1]s -h|--help

Lexer, parser, bytecode lowerer, analyzer, optimizer and virtual machine
for the sif scripting language.

Valid flag options are:
       -h --help                 Show this help and exit.
       --emit-ast                Print the parsed AST and exit before lowering.
       --emit-ir                 Print the lowered (and optimized) bytecode.
       -t --trace-exec           Print one line per executed instruction.
       -H --heap-size <N>        Initial heap capacity hint.
       -R --reg-count <N>        Initial register file capacity hint.
       -b --bench                Print a per-phase timing table.
`, binName)
)

// Cmd is the sif driver, parsed and run by mainer the same way the
// teacher's maincmd.Cmd is.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help bool `flag:"h,help"`

	EmitAST   bool `flag:"emit-ast"`
	EmitIR    bool `flag:"emit-ir"`
	TraceExec bool `flag:"t,trace-exec"`
	HeapSize  int  `flag:"H,heap-size"`
	RegCount  int  `flag:"R,reg-count"`
	Bench     bool `flag:"b,bench"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help {
		return nil
	}
	if len(c.args) != 1 {
		return errors.New("exactly one source file must be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	if c.Help {
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	}

	envCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}

	opts := Options{
		EmitAST:   c.EmitAST,
		EmitIR:    c.EmitIR,
		TraceExec: c.TraceExec,
		Bench:     c.Bench,
		HeapSize:  envCfg.HeapSize,
		RegCount:  envCfg.RegCount,
	}
	if c.HeapSize > 0 {
		opts.HeapSize = c.HeapSize
	}
	if c.RegCount > 0 {
		opts.RegCount = c.RegCount
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := RunFile(ctx, stdio, opts, c.args[0]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// timing is one row of the --bench phase table, grounded on
// sifc_driver/src/timings.rs's phase/duration pairing (SPEC_FULL.md
// supplemented feature).
type timing struct {
	phase string
	dur   time.Duration
}

// Options controls one RunFile invocation, mirroring the subset of Cmd's
// flags that affect pipeline behavior rather than argument parsing itself.
type Options struct {
	EmitAST   bool
	EmitIR    bool
	TraceExec bool
	Bench     bool
	HeapSize  int
	RegCount  int
}

// RunFile runs sif's full pipeline — parse, lower, optimize, analyze, run —
// over the source file at path, writing program output and diagnostics to
// stdio. It is the package-level counterpart to Cmd.Main, grounded on the
// teacher's Cmd-method-delegates-to-package-function shape (ParseFiles,
// TokenizeFiles in internal/maincmd), so tests can drive the pipeline
// directly without going through mainer's flag parser.
func RunFile(ctx context.Context, stdio mainer.Stdio, opts Options, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "reading %s: %s\n", file, err)
		return err
	}
	return Run(ctx, stdio, opts, src)
}

// Run is RunFile's in-memory counterpart, taking source bytes directly. Like
// the teacher's ParseFiles/TokenizeFiles, it prints its own error to
// stdio.Stderr before returning it, so a caller that only cares about the
// exit code doesn't also have to re-print the failure.
func Run(ctx context.Context, stdio mainer.Stdio, opts Options, src []byte) error {
	heapHint, regHint := opts.HeapSize, opts.RegCount

	var timings []timing
	track := func(phase string, fn func() error) error {
		start := time.Now()
		err := fn()
		timings = append(timings, timing{phase: phase, dur: time.Since(start)})
		return err
	}

	var prog *ast.Program
	if err := track("parse", func() error {
		var perr error
		prog, perr = parser.Parse(src)
		return perr
	}); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	if opts.EmitAST {
		printer := ast.Printer{Output: stdio.Stdout}
		return printer.Print(prog)
	}

	var irProg *ir.Program
	if err := track("lower", func() error {
		var lerr error
		irProg, lerr = lower.Lower(prog)
		return lerr
	}); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	if err := track("optimize", func() error {
		optimize.Run(irProg)
		return nil
	}); err != nil {
		return err
	}

	// The "analyze" phase builds the CFG, dominator tree and SSA form purely
	// for diagnostic/timing parity with the original's lex/parse/compile/
	// analyze/run phase list (SPEC_FULL.md); the VM below executes the
	// lowered, optimized instruction stream directly and does not consume
	// this analysis.
	if err := track("analyze", func() error {
		g := cfg.Build(irProg.Code)
		tr := dom.Build(g)
		ssa.Build(irProg.Code, g, tr)
		return nil
	}); err != nil {
		return err
	}

	if opts.EmitIR {
		fmt.Fprint(stdio.Stdout, irProg.String())
		return nil
	}

	th := &vm.Thread{
		Stdout:      stdio.Stdout,
		RegCapHint:  regHint,
		HeapCapHint: heapHint,
	}
	if opts.TraceExec {
		th.Trace = stdio.Stderr
	}

	var runErr error
	if err := track("run", func() error {
		runErr = th.Run(irProg)
		return nil
	}); err != nil {
		return err
	}
	if runErr != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", runErr)
	}

	if opts.Bench {
		printTimings(stdio.Stdout, timings)
	}

	return runErr
}

func printTimings(w io.Writer, timings []timing) {
	fmt.Fprintln(w, "phase\tduration")
	for _, t := range timings {
		fmt.Fprintf(w, "%s\t%s\n", t.phase, t.dur)
	}
}
