package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags clears the package-level flag state between tests, since
// rootCmd and buildCmd are process-wide singletons (grounded on the
// teacher's own cmd package tests resetting cobra.Command state between
// cases the same way).
func resetFlags() {
	outputFlag = ""
	objectOnly = false
	optO0, optO1, optO2, optO3 = false, false, false, false
	llvmPath = ""
	jsonDiag = false
	exitCode = 0
}

func TestExecuteNoInputsExitsThree(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{})
	if got := Execute(); got != 3 {
		t.Fatalf("expected exit code 3 for no inputs, got %d", got)
	}
}

func TestExecuteBadConfigExitsOne(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orbc.yaml"), []byte("optLevel: [broken"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	rootCmd.SetArgs([]string{"-C", dir, "in.orb"})
	if got := Execute(); got != 1 {
		t.Fatalf("expected exit code 1 for a malformed project config, got %d", got)
	}
}

func TestExecuteMissingInputFileExitsFour(t *testing.T) {
	resetFlags()
	rootCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.orb")})
	if got := Execute(); got != 4 {
		t.Fatalf("expected exit code 4 for a missing input file, got %d", got)
	}
}

func TestExecuteSuccessfulObjectOnlyBuildExitsZero(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	src := filepath.Join(dir, "main.orb")
	if err := os.WriteFile(src, []byte(`(sym x ::type i32 1)`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	out := filepath.Join(dir, "main.o")
	rootCmd.SetArgs([]string{"-c", "-o", out, src})
	if got := Execute(); got != 0 {
		t.Fatalf("expected exit code 0 for a successful object-only build, got %d", got)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected object file to exist: %v", err)
	}
}

func TestOptLevelPrefersExplicitFlagOverConfigDefault(t *testing.T) {
	resetFlags()
	optO2 = true
	if got := optLevel(0); got != 2 {
		t.Fatalf("expected -O2 to win, got %d", got)
	}
	resetFlags()
	if got := optLevel(3); got != 3 {
		t.Fatalf("expected config default to apply with no -O flag, got %d", got)
	}
}
