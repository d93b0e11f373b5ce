// Package cliout renders device state as terminal tables, adapted from
// the teacher's output package (there: USIM/network/security tables over
// sim.USIMData via go-pretty; here: device info, PIV/OpenPGP slot, and
// conformance-report tables over this core's own types).
package cliout

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cardkey/internal/conformance"
	"cardkey/internal/mgmt"
	"cardkey/internal/openpgp"
	"cardkey/internal/piv"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Color.RowAlternate = text.Colors{text.FgHiWhite}
	style.Options.SeparateRows = false
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	t.Style().Options.SeparateRows = false
	return t
}

// PrintDeviceInfo renders the management application's device info (spec
// §4.6).
func PrintDeviceInfo(info mgmt.Info) {
	fmt.Println()
	t := newTable()
	t.SetTitle("DEVICE INFO")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 30},
	})
	t.AppendRow(table.Row{"Capabilities", fmt.Sprintf("0x%04X", info.Capabilities)})
	t.AppendRow(table.Row{"Serial", info.Serial})
	t.AppendRow(table.Row{"Version", fmt.Sprintf("%d.%d.%d", info.VersionMajor, info.VersionMinor, info.VersionPatch)})
	t.AppendRow(table.Row{"Form factor", fmt.Sprintf("0x%02X", info.FormFactor)})
	t.AppendRow(table.Row{"Supported USB mask", fmt.Sprintf("0x%02X", info.SupportedUSB)})
	t.AppendRow(table.Row{"Enabled USB mask", fmt.Sprintf("0x%02X", info.EnabledUSB)})
	t.Render()
}

// PrintPIVStatus renders PIN status and key-slot presence for the PIV
// application.
func PrintPIVStatus(app *piv.App) {
	fmt.Println()
	t := newTable()
	t.SetTitle("PIV STATUS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 20},
	})
	t.AppendRow(table.Row{"PIN verified", boolCell(app.PINVerified())})
	t.AppendRow(table.Row{"PIN retries", app.PINRetries()})
	for _, s := range []piv.Slot{piv.SlotAuth, piv.SlotSign, piv.SlotKeyMgmt, piv.SlotCardAuth} {
		_, ok := app.SlotPublicKey(s)
		t.AppendRow(table.Row{fmt.Sprintf("Slot 0x%02X generated", byte(s)), boolCell(ok)})
	}
	t.Render()
}

// PrintOpenPGPStatus renders PIN status, slot presence, and the
// signature counter for the OpenPGP application.
func PrintOpenPGPStatus(app *openpgp.App) {
	fmt.Println()
	t := newTable()
	t.SetTitle("OPENPGP STATUS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 20},
	})
	t.AppendRow(table.Row{"User PIN verified", boolCell(app.UserVerified())})
	t.AppendRow(table.Row{"Admin PIN verified", boolCell(app.AdminVerified())})
	t.AppendRow(table.Row{"Signature counter", app.SignatureCounter()})
	for _, s := range []openpgp.Slot{openpgp.SlotSig, openpgp.SlotDec, openpgp.SlotAut} {
		_, ok := app.SlotPublicKey(s)
		t.AppendRow(table.Row{fmt.Sprintf("Slot 0x%02X generated", byte(s)), boolCell(ok)})
	}
	t.Render()
}

// PrintConformanceReport renders a conformance.Suite's results as a pass/
// fail table (teacher's TestSuite.AddResult verbose-mode console output,
// generalized from a per-line print to a table).
func PrintConformanceReport(s *conformance.Suite) {
	fmt.Println()
	t := newTable()
	t.SetTitle("CONFORMANCE REPORT")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 28},
		{Number: 2, WidthMin: 8},
		{Number: 3, Colors: colorValue, WidthMin: 30},
	})
	t.AppendHeader(table.Row{"Scenario", "Result", "Actual"})
	for _, r := range s.Results {
		status := colorSuccess.Sprint("PASS")
		if !r.Passed {
			status = colorError.Sprint("FAIL")
		}
		t.AppendRow(table.Row{r.Name, status, r.Actual})
	}
	t.Render()

	sum := s.Summary()
	fmt.Printf("\n%d/%d scenarios passed\n", sum.Passed, sum.Total)
}

func boolCell(b bool) string {
	if b {
		return colorSuccess.Sprint("yes")
	}
	return colorError.Sprint("no")
}
