package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build flags), mirroring the teacher's
// cmd/dwscript/cmd/root.go.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// exitCode is set by whichever RunE actually ran, since spec §6's exit
// codes are more specific than cobra's own "error or not" signal (bad
// arguments, multiple outputs, no inputs, and processing vs. link
// failure are each their own code).
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "orbc [INPUTS]+",
	Short: "orbc — compiler for the orb language",
	Long: `orbc compiles .orb source files: parsing, compile-time evaluation,
macro expansion, and static type checking all flow through one semantic
processor, which either interprets a construct at compile time or lowers
it to native IR for the external code generator and linker to finish.

Non-source inputs are passed straight through to the linker.`,
	Version:      Version,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
	RunE:         runBuild,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("color", false, "force-colorize diagnostics (default: auto-detect TTY)")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "look for orbc.yaml in DIR instead of the working directory")

	registerBuildFlags(rootCmd)
	rootCmd.AddCommand(buildCmd)
}

// Execute runs the root command and returns the process exit code
// spec §6 specifies (0 success; 1 bad arguments; 2 multiple outputs;
// 3 no inputs; 4 parse/processing failure; 5 backend/link failure).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if exitCode == 0 {
			exitCode = 1
		}
		return exitCode
	}
	return exitCode
}
