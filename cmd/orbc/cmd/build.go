package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/orblang/orbc/internal/config"
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/orchestrator"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/proc"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
	"github.com/spf13/cobra"
)

var (
	outputFlag string
	objectOnly bool
	optO0      bool
	optO1      bool
	optO2      bool
	optO3      bool
	llvmPath   string
	jsonDiag   bool
)

// buildCmd mirrors the root command's own build behavior (spec's
// implicit root-command CLI, SPEC_FULL.md's ambient-stack note that
// an explicit `orbc build` exists too, the way the teacher offers both
// a root-implicit and an explicit `dwscript compile`).
var buildCmd = &cobra.Command{
	Use:   "build [INPUTS]+",
	Short: "Compile and link .orb sources",
	Args:  cobra.ArbitraryArgs,
	RunE:  runBuild,
}

func registerBuildFlags(c *cobra.Command) {
	c.Flags().StringVarP(&outputFlag, "output", "o", "", "output path")
	c.Flags().BoolVarP(&objectOnly, "object-only", "c", false, "emit object file only, do not link")
	c.Flags().BoolVar(&optO0, "O0", false, "optimizer level 0")
	c.Flags().BoolVar(&optO1, "O1", false, "optimizer level 1")
	c.Flags().BoolVar(&optO2, "O2", false, "optimizer level 2")
	c.Flags().BoolVar(&optO3, "O3", false, "optimizer level 3")
	c.Flags().StringVar(&llvmPath, "llvm", "", "path to the LLVM toolchain")
	c.Flags().BoolVar(&jsonDiag, "json-diagnostics", false, "render diagnostics as JSON lines")
}

func init() {
	registerBuildFlags(buildCmd)
}

func optLevel(cfgDefault int) int {
	switch {
	case optO0:
		return 0
	case optO1:
		return 1
	case optO2:
		return 2
	case optO3:
		return 3
	default:
		return cfgDefault
	}
}

// runBuild implements spec §6's CLI contract end to end: classify
// inputs, load optional project config, drive the Orchestrator, render
// diagnostics, and translate the result into one of the six exit codes
// spec §6 names.
func runBuild(c *cobra.Command, args []string) error {
	verbose, _ := c.Flags().GetBool("verbose")
	forceColor, _ := c.Flags().GetBool("color")
	dir, _ := c.Flags().GetString("dir")

	if len(args) == 0 {
		exitCode = 3
		return fmt.Errorf("no input files")
	}

	cfg, err := config.Load(dir)
	if err != nil {
		exitCode = 1
		return fmt.Errorf("loading %s: %w", config.FileName, err)
	}

	out := outputFlag
	if out == "" {
		out = cfg.Output
	}
	if outputFlag != "" && cfg.Output != "" && outputFlag != cfg.Output {
		// Both an explicit flag and a conflicting project default were
		// given distinct values — spec §6's "multiple outputs" case,
		// generalized from "two -o flags" (cobra only keeps the last of
		// those) to "CLI and project config disagree".
		exitCode = 2
		return fmt.Errorf("conflicting output paths: -o %s vs %s's %s", outputFlag, config.FileName, cfg.Output)
	}

	inputs := append(append([]string(nil), args...), cfg.LinkerInputs...)

	opts := orchestrator.Options{
		Inputs:          inputs,
		OutputPath:      out,
		ObjectOnly:      objectOnly,
		OptLevel:        optLevel(cfg.OptLevel),
		LLVMPath:        llvmPath,
		Color:           forceColor || isTTY(os.Stderr),
		JSONDiagnostics: jsonDiag,
		Verbose:         verbose,
	}

	orch := orchestrator.New(newProcessor)
	result, err := orch.Compile(opts)
	if err != nil {
		exitCode = 5
		return err
	}

	renderDiagnostics(result.Messages, opts)

	switch {
	case result.Messages.Failing():
		exitCode = 4
		return fmt.Errorf("compilation failed")
	case opts.ObjectOnly && result.ObjectPath == "":
		exitCode = 5
		return fmt.Errorf("object emission failed")
	case !opts.ObjectOnly && !result.Linked:
		exitCode = 5
		return fmt.Errorf("link failed")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "wrote %s\n", result.ObjectPath)
	}
	exitCode = 0
	return nil
}

func renderDiagnostics(cm *diag.CompilationMessages, opts orchestrator.Options) {
	if opts.JSONDiagnostics {
		lines, err := cm.ToJSONLines()
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to render JSON diagnostics:", err)
			return
		}
		if lines != "" {
			fmt.Fprintln(os.Stderr, lines)
		}
		return
	}
	text := cm.Format(opts.Color)
	if strings.TrimSpace(text) != "" {
		fmt.Fprintln(os.Stderr, text)
	}
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// newProcessor constructs a proc.Processor and returns it through
// orchestrator.ProcessorLike (the orchestrator package does not import
// internal/proc itself, so the CLI is where a Processor is wired into
// existence for a real build).
func newProcessor(np *pool.NamePool, sp *pool.StringPool, tt *typesys.TypeTable, st *symbols.SymbolTable, cm *diag.CompilationMessages) orchestrator.ProcessorLike {
	return proc.New(np, sp, tt, st, cm)
}
