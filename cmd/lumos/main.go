package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lumos/adapters/csvsource"
	"lumos/app"
	"lumos/domain/assay"
	"lumos/internal/config"
	"lumos/internal/container"
	"lumos/internal/plot"
	"lumos/internal/stripgen"
	"lumos/ui"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "lumos",
		Short:         "Lateral-flow strip analysis: normalized ratios, grouped statistics and plots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newPlotCmd(),
		newServeCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// schemaFlags are shared by every command that runs the pipeline
type schemaFlags struct {
	delimiter   string
	variables   string
	includeArea bool
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.delimiter, "delimiter", "d", "", "Identifier delimiter: - (hyphen) or _ (underscore)")
	cmd.Flags().StringVarP(&f.variables, "variables", "v", "", "Variable names joined by the delimiter, e.g. dilution-lot-replicate")
	cmd.Flags().BoolVar(&f.includeArea, "include-area", false, "Also aggregate TLA_normalized and CLA_normalized")
}

// load reads configuration and applies the flags the user set explicitly
func (f *schemaFlags) load(cmd *cobra.Command) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("delimiter") {
		cfg.Analysis.Delimiter = f.delimiter
	}
	if cmd.Flags().Changed("variables") {
		cfg.Analysis.Variables = f.variables
	}
	if cmd.Flags().Changed("include-area") {
		cfg.Analysis.IncludeAreaRatios = f.includeArea
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func newAnalyzeCmd() *cobra.Command {
	var flags schemaFlags
	var outDir string
	var plots app.PlotRequest
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [csv-file]",
		Short: "Normalize a strip CSV, compute grouped statistics and export the results",
		Long: `Run the strip pipeline on a CSV export and write normalized.csv, statistics.csv,
analysis.xlsx and report.html into <out>/<run id>. With --x the chart catalogue is
rendered into the plots directory as well.

Example: lumos analyze strips.csv -d - -v dilution-lot-replicate --x dilution --continuous --color lot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outDir = c.Config.Output.Dir
			}

			result, err := c.Analysis.AnalyzeFile(cmd.Context(), args[0], app.AnalyzeRequest{})
			if err != nil {
				return err
			}
			var request *app.PlotRequest
			if plots.X != "" {
				request = &plots
			}
			summary, err := c.Analysis.Export(cmd.Context(), result, outDir, request)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", result.RunID)
			fmt.Fprintf(out, "  strips:    %d\n", result.Enriched.Rows())
			fmt.Fprintf(out, "  groups:    %d\n", len(result.Aggregate.Groups))
			counts := assay.CountByKind(result.Anomalies)
			kinds := make([]string, 0, len(counts))
			for k := range counts {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Fprintf(out, "  anomalies: %s=%d\n", k, counts[assay.AnomalyKind(k)])
			}
			fmt.Fprintf(out, "  output:    %s\n", summary.Dir)
			for _, f := range summary.Files {
				fmt.Fprintf(out, "    %s\n", f)
			}
			if len(summary.Charts) > 0 {
				fmt.Fprintf(out, "    %s/ (%d charts)\n", app.DirPlots, len(summary.Charts))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default LUMOS_OUTPUT_DIR)")
	cmd.Flags().StringVar(&plots.X, "x", "", "Variable on the x axis; enables chart export")
	cmd.Flags().BoolVar(&plots.Continuous, "continuous", false, "Treat x as continuous (scatter with LOWESS trend)")
	cmd.Flags().StringVar(&plots.Color, "color", "", "Variable used for colour")
	cmd.Flags().StringVar(&plots.Facet, "facet", "", "Variable used for facet panels")
	cmd.Flags().BoolVar(&plots.LogX, "log-x", false, "Logarithmic x axis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the export summary as JSON")
	return cmd
}

func newPlotCmd() *cobra.Command {
	var flags schemaFlags
	var sel plot.Selection
	var kind string
	var continuous bool
	var facetValue string
	var output string

	cmd := &cobra.Command{
		Use:   "plot [csv-file]",
		Short: "Render one chart of a measure against a variable as PNG",
		Long: `Render a single chart. A continuous x gives a scatter plot with a LOWESS trend, a
categorical x gives box plots. With --facet, --facet-value picks the panel.

Example: lumos plot strips.csv -v dilution-lot --x dilution --y T/C_normalized --continuous --color lot -o tc.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd)
			if err != nil {
				return err
			}
			sel.Kind = plot.Kind(kind)
			if sel.Kind == "" {
				sel.Kind = plot.KindFor(continuous)
			}

			result, err := c.Analysis.AnalyzeFile(cmd.Context(), args[0], app.AnalyzeRequest{})
			if err != nil {
				return err
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			fig, err := c.Analysis.RenderPlot(file, result, sel, facetValue)
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(output)
				return err
			}

			for _, w := range fig.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", fig.Title, output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sel.X, "x", "", "Variable on the x axis")
	cmd.Flags().StringVar(&sel.Y, "y", assay.TLHNormalized, "Measure on the y axis")
	cmd.Flags().StringVar(&sel.Color, "color", "", "Variable used for colour")
	cmd.Flags().StringVar(&sel.Facet, "facet", "", "Variable used for facet panels")
	cmd.Flags().StringVar(&facetValue, "facet-value", "", "Facet panel to render (default: first)")
	cmd.Flags().BoolVar(&sel.LogX, "log-x", false, "Logarithmic x axis")
	cmd.Flags().BoolVar(&continuous, "continuous", false, "Treat x as continuous")
	cmd.Flags().StringVar(&kind, "kind", "", "Override the chart kind: scatter+trend or box")
	cmd.Flags().StringVarP(&output, "output", "o", "plot.png", "PNG file to write")
	_ = cmd.MarkFlagRequired("x")
	return cmd
}

func newServeCmd() *cobra.Command {
	var flags schemaFlags
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				c.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ui.NewServer(c.Analysis, c.Config, c.Logger).Start(ctx)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default PORT or 8080)")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	cfg := stripgen.DefaultConfig()
	var delimiter string
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dilution-series CSV for trying the pipeline",
		Long: `Generate a deterministic strip-reader export: every lot runs the dilution series in
replicate, with strip names <dilution><delim><lot><delim><replicate>.

Example: lumos generate -o strips.csv --lots lotA,lotB --replicates 3 --blank-rate 0.05`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := assay.ParseDelimiter(delimiter)
			if err != nil {
				return err
			}
			cfg.Delimiter = d

			ds, err := stripgen.Generate(cfg)
			if err != nil {
				return err
			}
			raw, err := ds.Table()
			if err != nil {
				return err
			}
			if err := csvsource.WriteFile(out, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d strips to %s (variables %s)\n",
				len(ds.Rows), out, strings.Join(stripgen.Variables(), d.String()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "strips.csv", "CSV file to write")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", "-", "Identifier delimiter: - or _")
	cmd.Flags().Float64SliceVar(&cfg.Dilutions, "dilutions", cfg.Dilutions, "Dilution series")
	cmd.Flags().StringSliceVar(&cfg.Lots, "lots", cfg.Lots, "Lot names")
	cmd.Flags().IntVar(&cfg.Replicates, "replicates", cfg.Replicates, "Strips per dilution and lot")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (deterministic)")
	cmd.Flags().Float64Var(&cfg.NoiseSD, "noise", cfg.NoiseSD, "Relative noise on line heights")
	cmd.Flags().Float64Var(&cfg.BlankRate, "blank-rate", 0, "Share of strips reading zero on both lines")
	cmd.Flags().Float64Var(&cfg.ShortNameRate, "short-name-rate", 0, "Share of strip names missing the replicate token")
	return cmd
}
