package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voltlab/cdckit/pkg/pipeline"
)

// newRenderCmd renders a circuit diagram.
func newRenderCmd() *cobra.Command {
	var (
		file     string
		defs     string
		format   string
		output   string
		scale    float64
		detailed bool
		cacheDir string
		refresh  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "render [cdc]",
		Short: "Render a circuit diagram",
		Long: `Render circuit description code as a diagram. Supported formats are
svg, png, pdf, dot, and json. PNG and PDF conversion requires librsvg
(rsvg-convert) to be installed.`,
		Example: `  cdckit render "[R(RC)]"
  cdckit render --format png --scale 2 -o randles.png "[R([RW]C)]"
  cdckit render --format dot "[RC]"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
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
				Formats:  []string{format},
				Scale:    scale,
				Detailed: detailed,
				Refresh:  refresh,
				Registry: reg,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			p.done("Rendered diagram")

			data := result.Artifacts[format]
			if output == "" {
				// Text formats default to stdout; binary formats get a file.
				switch format {
				case pipeline.FormatDOT, pipeline.FormatJSON:
					_, err := os.Stdout.Write(data)
					return err
				default:
					output = fmt.Sprintf("circuit.%s", format)
				}
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			printSuccess("rendered %s", StyleHighlight.Render(result.CDC))
			printFile(output)
			printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.CacheInfo.RenderHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read circuit text from file")
	cmd.Flags().StringVar(&defs, "defs", "", "TOML file with custom element definitions")
	cmd.Flags().StringVar(&format, "format", pipeline.FormatSVG, "output format (svg, png, pdf, dot, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to circuit.<format>)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include grid positions in labels")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "artifact cache directory")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and re-render")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
