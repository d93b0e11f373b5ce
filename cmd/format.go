package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var formatForce bool

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Erase and reformat the flash image",
	Long: `Discard any existing flash image at --store and write a fresh
one: a new master key, a zeroed PIN record at max retries, a zero global
counter, and a freshly generated attestation key (spec §4.2). Refuses to
touch an existing image file unless --force is given.`,
	Args: cobra.NoArgs,
	Run:  runFormat,
}

func init() {
	formatCmd.Flags().BoolVarP(&formatForce, "force", "f", false,
		"Reformat even if an image file already exists at --store")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) {
	if !formatForce {
		if _, err := os.Stat(storePath); err == nil {
			fail("%s already exists; use --force to overwrite", storePath)
		}
	}

	if err := os.Remove(storePath); err != nil && !os.IsNotExist(err) {
		fail("removing existing image: %v", err)
	}

	st, err := openStack()
	if err != nil {
		fail("%v", err)
	}
	if err := st.save(); err != nil {
		fail("saving store image: %v", err)
	}
	fmt.Printf("formatted %s\n", storePath)
}
