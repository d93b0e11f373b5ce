package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cardkey/internal/apdu"
)

var sendCmd = &cobra.Command{
	Use:   "send <hex-apdu>",
	Short: "Send a single raw APDU to the simulated device and print the response",
	Long: `Send a single raw APDU (CLA INS P1 P2 [Lc Data] [Le], as one hex
string with optional whitespace) to the router and print the response
body and status word. The flash image is persisted afterward, the way a
real token retains state across power cycles.

Example:
  cardkey send "00A404000BA000000308000010000100"`,
	Args: cobra.ExactArgs(1),
	Run:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) {
	raw, err := parseHexAPDU(args[0])
	if err != nil {
		fail("%v", err)
	}

	st, err := openStack()
	if err != nil {
		fail("%v", err)
	}

	c, ok := apdu.ParseCommand(raw)
	if !ok {
		fail("malformed APDU")
	}

	resp := st.router.Dispatch(c)
	printResponse(resp)

	if err := st.save(); err != nil {
		fail("saving store image: %v", err)
	}
}

func parseHexAPDU(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return raw, nil
}

func printResponse(resp apdu.Response) {
	if len(resp.Body) > 0 {
		fmt.Printf("< %s\n", strings.ToUpper(hex.EncodeToString(resp.Body)))
	}
	fmt.Printf("SW %04X\n", resp.SW())
}
