// Package orchestrator drives a compilation end to end (spec §2's
// "Orchestrator" row and its "Flow" paragraph): it owns the shared
// NamePool/StringPool/TypeTable/SymbolTable/CompilationMessages (spec
// §5 "per-compilation, created by the orchestrator, passed by
// reference"), parses each input file, feeds its top-level forms to
// the Processor one at a time, follows the import graph those forms
// request, and — on success — hands the Compiler's lowered Chunks to
// the external code-emitter/linker collaborators (spec §6).
//
// Grounded on the teacher's cmd/dwscript/cmd/compile.go: read file,
// lex, parse, check errors, analyze, emit — the same six-stage
// pipeline, generalized here to also walk an import graph (DWScript's
// compile command has no import step of its own; uses is handled
// earlier, by its unit registry) and to hand off to a Processor rather
// than a semantic.Analyzer + bytecode.Compiler pair.
package orchestrator

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/orblang/orbc/internal/backend"
	"github.com/orblang/orbc/internal/codegen"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/eval"
	"github.com/orblang/orbc/internal/lexparse"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

// Options configures one compilation run (spec §6's CLI flags, plus
// SPEC_FULL.md's --json-diagnostics addition).
type Options struct {
	Inputs         []string
	OutputPath     string
	ObjectOnly     bool
	OptLevel       int
	LLVMPath       string
	Color          bool
	JSONDiagnostics bool
	Verbose        bool
}

// Result is everything the CLI layer needs to decide an exit code and
// print a summary (spec §6's exit-code table).
type Result struct {
	Messages   *diag.CompilationMessages
	ObjectPath string
	Linked     bool
}

// Orchestrator owns the tables shared by every component for the
// lifetime of one compilation (spec §5 "Global processor state").
type Orchestrator struct {
	np *pool.NamePool
	sp *pool.StringPool
	tt *typesys.TypeTable
	st *symbols.SymbolTable
	cm *diag.CompilationMessages

	sources diag.MapSources
	loaded  map[string]bool // fully processed
	loading map[string]bool // currently on the import stack (cycle detection)

	proc      ProcessorLike
	compiler  *codegen.Compiler
	evaluator *eval.Evaluator
}

// ProcessorLike is the subset of internal/proc.Processor the
// orchestrator drives directly. A concrete *proc.Processor satisfies
// this; it is expressed as an interface here purely so this package
// doesn't need to import internal/proc just to spell the type (no
// cycle risk either way — this is a style choice mirroring the
// Backend/Runner split in internal/backend). Exported so cmd/orbc can
// write a NewProcessorFunc without repeating internal/proc's full
// signature inline.
type ProcessorLike interface {
	ProcessTopLevel(node *parsetree.Node) (*nodeval.NodeVal, bool)
	SetBackends(compiler, evaluator backend.Backend)
	Run(node *parsetree.Node) (*nodeval.NodeVal, bool)
}

// NewProcessorFunc constructs a ProcessorLike sharing the given
// tables — internal/proc.New, wrapped by the caller (see cmd/orbc's
// wiring), so this package itself never imports internal/proc.
type NewProcessorFunc func(*pool.NamePool, *pool.StringPool, *typesys.TypeTable, *symbols.SymbolTable, *diag.CompilationMessages) ProcessorLike

// New creates an Orchestrator, using newProcessor to construct the
// shared Processor.
func New(newProcessor NewProcessorFunc) *Orchestrator {
	np := pool.NewNamePool()
	sp := pool.NewStringPool()
	tt := typesys.NewTypeTable()
	st := symbols.New()
	sources := diag.MapSources{}
	cm := diag.NewCompilationMessages(sources)

	o := &Orchestrator{
		np: np, sp: sp, tt: tt, st: st, cm: cm,
		sources: sources,
		loaded:  map[string]bool{},
		loading: map[string]bool{},
	}

	o.proc = newProcessor(np, sp, tt, st, cm)
	o.evaluator = eval.New(tt, st, cm, o.proc.Run)
	o.compiler = codegen.New(tt, st, cm, np, o.proc.Run)
	o.proc.SetBackends(o.compiler, o.evaluator)
	return o
}

// Messages exposes the shared diagnostic sink (for tests and the CLI
// layer to render after Compile returns).
func (o *Orchestrator) Messages() *diag.CompilationMessages { return o.cm }

// Compile runs the full pipeline for opts (spec §2's Flow paragraph,
// §6's CLI contract).
func (o *Orchestrator) Compile(opts Options) (*Result, error) {
	var sourceFiles, linkerInputs []string
	for _, in := range opts.Inputs {
		if strings.EqualFold(filepath.Ext(in), ".orb") {
			sourceFiles = append(sourceFiles, in)
		} else {
			linkerInputs = append(linkerInputs, in)
		}
	}

	for _, f := range sourceFiles {
		if o.cm.Failing() {
			break
		}
		o.processFile(f)
	}

	res := &Result{Messages: o.cm}
	if o.cm.Failing() {
		return res, nil
	}
	if len(sourceFiles) == 0 {
		return res, nil
	}

	objPath := opts.OutputPath
	if opts.ObjectOnly && objPath != "" {
		// -o names the object directly when -c is also given.
	} else {
		objPath = defaultOutputName(sourceFiles)
	}

	if err := o.emitObject(objPath); err != nil {
		o.cm.Internalf(source.CodeLoc{}, "failed to write object file: %v", err)
		return res, nil
	}
	res.ObjectPath = objPath

	if opts.ObjectOnly {
		return res, nil
	}

	execPath := finalOutputPath(opts.OutputPath, sourceFiles)
	if err := runLinker(opts.LLVMPath, objPath, linkerInputs, execPath); err != nil {
		o.cm.Internalf(source.CodeLoc{}, "link failed: %v", err)
		return res, nil
	}
	res.Linked = true
	_ = os.Remove(objPath)
	return res, nil
}

// processFile loads, parses, and processes every top-level form of
// file, following any `import` forms it encounters depth-first (spec
// §2 "honors the import graph").
func (o *Orchestrator) processFile(file string) {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	if o.loaded[abs] {
		return
	}
	if o.loading[abs] {
		o.cm.Errorf(diag.KindImportCyclical, source.CodeLoc{File: file}, "cyclical import of %s", file)
		return
	}

	content, err := os.ReadFile(file)
	if err != nil {
		o.cm.Errorf(diag.KindImportNotFound, source.CodeLoc{File: file}, "cannot read %s: %v", file, err)
		return
	}
	o.sources[abs] = strings.Split(string(content), "\n")

	parser := lexparse.NewParser(abs, string(content))
	forms := parser.ParseFile()
	for _, perr := range parser.Errors() {
		o.cm.Errorf(diag.KindUnexpectedToken, perr.Loc, "%s", perr.Message)
	}
	if o.cm.Failing() {
		return
	}

	o.loading[abs] = true
	for _, form := range forms {
		if o.cm.Failing() {
			break
		}
		val, ok := o.proc.ProcessTopLevel(form)
		if !ok {
			continue
		}
		if val.Kind == nodeval.Import {
			o.followImport(abs, o.sp.Get(val.ImportPath))
		}
	}
	delete(o.loading, abs)
	o.loaded[abs] = true
}

func (o *Orchestrator) followImport(fromFile, path string) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(fromFile), target)
	}
	o.processFile(target)
}

// emitObject writes every compiled Chunk's disassembly to path,
// standing in for the external code-emitter binding (spec §1/§6: the
// native code generator itself is out of scope, but the orchestrator
// still owes it a complete, inspectable artifact to consume).
func (o *Orchestrator) emitObject(path string) error {
	var sb strings.Builder
	for _, chunk := range o.compiler.Chunks() {
		sb.WriteString(chunk.Disassemble())
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func defaultOutputName(sourceFiles []string) string {
	stem := "a"
	if len(sourceFiles) > 0 {
		base := filepath.Base(sourceFiles[0])
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return stem + objectExt()
}

func finalOutputPath(requested string, sourceFiles []string) string {
	if requested != "" {
		return requested
	}
	stem := "a"
	if len(sourceFiles) > 0 {
		base := filepath.Base(sourceFiles[0])
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return stem + execExt()
}

func objectExt() string {
	if os.PathSeparator == '\\' {
		return ".obj"
	}
	return ".o"
}

func execExt() string {
	if os.PathSeparator == '\\' {
		return ".exe"
	}
	return ""
}

// runLinker invokes the external linker driver (spec §6's "the
// executable linker driver", an out-of-scope external collaborator)
// with objPath plus every non-source input, per spec's exe-mode flow.
// Broken out through the runLinkerFn variable so tests can stub it out
// without spawning a real process.
func runLinker(llvmPath, objPath string, extraInputs []string, outPath string) error {
	return runLinkerFn(llvmPath, objPath, extraInputs, outPath)
}

var runLinkerFn = func(llvmPath, objPath string, extraInputs []string, outPath string) error {
	linker := "cc"
	if llvmPath != "" {
		linker = filepath.Join(llvmPath, "clang")
	}
	args := append([]string{objPath, "-o", outPath}, extraInputs...)
	cmd := exec.Command(linker, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
