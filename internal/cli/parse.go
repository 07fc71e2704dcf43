package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltlab/cdckit/pkg/cdc"
)

// newParseCmd validates circuit text and reports its canonical forms.
func newParseCmd() *cobra.Command {
	var (
		file       string
		defs       string
		showParams bool
	)

	cmd := &cobra.Command{
		Use:   "parse [cdc]",
		Short: "Validate CDC text and show its canonical forms",
		Long: `Parse circuit description code and report the canonical basic and
extended forms, the token list, and (with --params) the flat parameter
vector handed to fitting.

The circuit can be given as an argument, read from a file with --file,
or piped on stdin with "-".`,
		Example: `  cdckit parse "[R(RC)]"
  cdckit parse --params "[R{R=100f}(QW)]"
  echo "[R([RW]C)]" | cdckit parse -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readCDC(args, file)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}

			c, err := cdc.Parse(text, reg)
			if err != nil {
				printError("invalid circuit")
				printDetail("%v", err)
				return err
			}

			printSuccess("valid circuit")
			printKeyValue("canonical", c.CDC())
			printKeyValue("extended", c.Extended())
			printKeyValue("tokens", strings.Join(c.Tokens(), " "))
			printKeyValue("elements", strconv.Itoa(len(c.Elements())))

			if showParams {
				fmt.Println()
				fmt.Println(StyleTitle.Render("Parameters"))
				for _, p := range c.FitVector() {
					printDetail("%-10s %-6s = %-12g fixed=%-5v limits=[%s, %s]",
						p.Element, p.Symbol, p.Value, p.Fixed,
						fmtLimit(p.Lower), fmtLimit(p.Upper))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read circuit text from file")
	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	cmd.Flags().BoolVar(&showParams, "params", false, "show the flat fit parameter vector")
	return cmd
}

func fmtLimit(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// newFmtCmd rewrites circuit text in canonical form. Output goes to
// stdout unstyled so it can be piped.
func newFmtCmd() *cobra.Command {
	var (
		file     string
		defs     string
		extended bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [cdc]",
		Short: "Rewrite CDC text in canonical form",
		Example: `  cdckit fmt "[ R ( R C ) ]"
  cdckit fmt --extended "[R(RC)]"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readCDC(args, file)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}
			c, err := cdc.Parse(text, reg)
			if err != nil {
				return err
			}
			if extended {
				fmt.Println(c.Extended())
			} else {
				fmt.Println(c.CDC())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read circuit text from file")
	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	cmd.Flags().BoolVar(&extended, "extended", false, "emit the extended form with parameter blocks")
	return cmd
}
