package cmd

import (
	"github.com/spf13/cobra"

	"cardkey/internal/cliout"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device, PIV, and OpenPGP status",
	Long:  `Print the management application's device info and the PIV/OpenPGP applications' PIN and key-slot status, adapted from the teacher's reader-info/analyze tables.`,
	Args:  cobra.NoArgs,
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	st, err := openStack()
	if err != nil {
		fail("%v", err)
	}

	cliout.PrintDeviceInfo(st.mgmt.Info())
	cliout.PrintPIVStatus(st.piv)
	cliout.PrintOpenPGPStatus(st.openpgp)
}
