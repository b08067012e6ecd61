// Command orbc is the orbc compiler's command-line entry point: parse
// and process .orb sources through the semantic processor, emit an
// object, and drive the external linker (spec §6).
package main

import (
	"os"

	"github.com/orblang/orbc/cmd/orbc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
