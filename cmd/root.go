package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// storePath is the persistent flash image backing the simulated
	// device across invocations (teacher's --reader/-r selected a
	// physical reader; there is no reader here, only a flash image).
	storePath string
)

var rootCmd = &cobra.Command{
	Use:   "cardkey",
	Short: "Multi-application smart-card firmware core simulator",
	Long: `cardkey v` + version + `

Drives the in-process APDU router, PIV application, OpenPGP application,
and management application over a simulated flash-backed credential
store. There is no physical reader: commands that use the device mount
(or format) a flash image file; send, script, and format persist it
back on exit, the way a real token would retain state across power
cycles, while info only reads it.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", "cardkey.img",
		"Path to the flash image file backing the simulated device")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// failSilently exits nonzero without printing — used when the caller has
// already rendered a full report explaining the failure.
func failSilently() {
	os.Exit(1)
}
