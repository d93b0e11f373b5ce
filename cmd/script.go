package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cardkey/internal/apdu"
)

var scriptCmd = &cobra.Command{
	Use:   "script <file>",
	Short: "Run a file of hex-encoded APDUs against the simulated device",
	Long: `Run an APDU script: one hex-encoded command per line, blank lines
and lines starting with # ignored. Adapted from the teacher's -script
flag (sim.RunScript), generalized from a GSM/USIM SendAPDU loop to this
core's router.Dispatch.`,
	Args: cobra.ExactArgs(1),
	Run:  runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	if err != nil {
		fail("opening script: %v", err)
	}
	defer f.Close()

	st, err := openStack()
	if err != nil {
		fail("%v", err)
	}

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		raw, err := parseHexAPDU(text)
		if err != nil {
			fmt.Printf("%d: %v\n", line, err)
			continue
		}
		c, ok := apdu.ParseCommand(raw)
		if !ok {
			fmt.Printf("%d: malformed APDU\n", line)
			continue
		}

		fmt.Printf("%d> %s\n", line, text)
		resp := st.router.Dispatch(c)
		printResponse(resp)
	}
	if err := scanner.Err(); err != nil {
		fail("reading script: %v", err)
	}

	if err := st.save(); err != nil {
		fail("saving store image: %v", err)
	}
}
