package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voltlab/cdckit/pkg/pipeline"
)

// newLayoutCmd computes the node-link layout of a circuit and writes it
// as JSON.
func newLayoutCmd() *cobra.Command {
	var (
		file     string
		defs     string
		output   string
		cacheDir string
		refresh  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "layout [cdc]",
		Short: "Compute the node-link layout of a circuit",
		Long: `Parse circuit description code, materialize it as a graph, and write
the positioned node-link descriptor as JSON. Layouts are cached by the
canonical text; --refresh recomputes and --no-cache disables caching.`,
		Example: `  cdckit layout "[R(RC)]"
  cdckit layout -o randles.json "[R([RW]C)]"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			text, err := readCDC(args, file)
			if err != nil {
				return err
			}
			reg, err := loadRegistry(defs)
			if err != nil {
				return err
			}
			c, err := openCache(cmd.Context(), "", cacheDir, noCache)
			if err != nil {
				return err
			}
			defer c.Close()

			p := newProgress(logger)
			runner := pipeline.NewRunner(c, logger)
			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				CDC:      text,
				Formats:  []string{pipeline.FormatJSON},
				Refresh:  refresh,
				Registry: reg,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			p.done("Computed layout")

			data := result.Artifacts[pipeline.FormatJSON]
			if output == "" {
				_, err := os.Stdout.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("wrote layout for %s", StyleHighlight.Render(result.CDC))
			printFile(output)
			printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.LayoutHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read circuit text from file")
	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to file instead of stdout")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "layout cache directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and recompute")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
