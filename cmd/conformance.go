package cmd

import (
	"github.com/spf13/cobra"

	"cardkey/internal/cliout"
	"cardkey/internal/conformance"
)

var conformanceOutput string

var conformanceCmd = &cobra.Command{
	Use:   "conformance",
	Short: "Run the end-to-end conformance scenario suite",
	Long: `Run the conformance suite: a fresh in-process router+store+
applications stack per scenario, exercising PIN lockout, PIV key
generation, OpenPGP PIN change, router AID fallback, credential
tamper detection, and counter monotonicity across a simulated remount.

Adapted from the teacher's "test" command (testing.NewTestSuite /
RunAll over a physical reader); here the suite drives router.Dispatch
directly since there is no transport between this process and the
applications it hosts.`,
	Args: cobra.NoArgs,
	Run:  runConformance,
}

func init() {
	conformanceCmd.Flags().StringVarP(&conformanceOutput, "output", "o", "",
		"Write the JSON conformance report to this path")
	rootCmd.AddCommand(conformanceCmd)
}

func runConformance(cmd *cobra.Command, args []string) {
	suite := conformance.NewSuite()
	suite.RunAll()

	cliout.PrintConformanceReport(suite)

	if conformanceOutput != "" {
		if err := suite.GenerateJSON(conformanceOutput); err != nil {
			fail("writing report: %v", err)
		}
	}

	if suite.Summary().Failed > 0 {
		failSilently()
	}
}
