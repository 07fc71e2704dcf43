package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newElementsCmd lists the element definitions the parser knows about.
func newElementsCmd() *cobra.Command {
	var defs string

	cmd := &cobra.Command{
		Use:   "elements",
		Short: "List the known circuit element types",
		Long: `List every element mnemonic the parser accepts, with its default
parameters and fitting limits. Custom definitions from --defs are
included after the builtin set.`,
		Example: `  cdckit elements
  cdckit elements --defs myelements.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}

			fmt.Println(StyleTitle.Render("Circuit Elements"))
			fmt.Println()
			for _, def := range reg.Definitions() {
				printKeyValue(def.Mnemonic, def.Name)
				for _, p := range def.Defaults {
					printDetail("%-6s default=%-10g limits=[%s, %s] fixed=%v",
						p.Symbol, p.Value, fmtLimit(p.Lower), fmtLimit(p.Upper), p.Fixed)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	return cmd
}
