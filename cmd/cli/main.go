package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"abkpi/adapters/excel"
	"abkpi/app"
	"abkpi/domain/experiment"
	"abkpi/internal/config"
	"abkpi/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "abkpi",
		Short:         "Compute KPI uplift, confidence and verdicts from A/B test report exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newDetectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer(ctx context.Context, workers int) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// The CLI never needs the database; runs are printed, not listed later.
	cfg.Database.URL = ""
	if workers > 0 {
		cfg.Analysis.Workers = workers
	}
	return container.New(ctx, cfg)
}

func newAnalyzeCmd() *cobra.Command {
	var (
		outPath    string
		exportPath string
		workers    int
		useAI      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <config.json> [file...]",
		Short: "Analyze report files against an analysis config",
		Long: `Analyze one or more report exports (.xlsx or .csv).

Files listed in the config's "files" section are used when no file arguments
are given; positional files are analyzed in order without country or report
order tags.

Example: abkpi analyze config.json week1.xlsx --out results.json --export parsed.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAnalysisConfig(args[0])
			if err != nil {
				return err
			}
			if useAI {
				cfg.UseAI = true
			}

			files := filesFor(cfg, args[1:], filepath.Dir(args[0]))
			if len(files) == 0 {
				return fmt.Errorf("no report files given")
			}

			ctx := cmd.Context()
			c, err := newContainer(ctx, workers)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			run, err := c.AnalysisService.Analyze(ctx, cfg, files)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := writeJSON(outPath, run); err != nil {
					return err
				}
			} else {
				printRun(cmd.OutOrStdout(), run)
			}

			if exportPath != "" {
				exp, err := c.AnalysisService.Export(ctx, run.ID)
				if err != nil {
					return err
				}
				f, err := os.Create(exportPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", exportPath, err)
				}
				defer f.Close()
				if err := excel.WriteWorkbook(f, exp); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "workbook written to %s\n", exportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the run as JSON to this path instead of printing a table")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write parsed data and results to this .xlsx path")
	cmd.Flags().IntVar(&workers, "workers", 0, "Partitions computed in parallel (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&useAI, "ai", false, "Request AI commentary (needs an API key in the environment)")

	return cmd
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the anchor row, segments and countries detected in a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := newContainer(ctx, 0)
			if err != nil {
				return err
			}
			defer c.Shutdown(ctx)

			det, err := c.AnalysisService.DetectCountry(ctx, app.FileInput{Path: args[0]})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(det)
		},
	}
}

// filesFor resolves positional files, or the config's file list relative to base.
func filesFor(cfg *config.AnalysisConfig, args []string, base string) []app.FileInput {
	var files []app.FileInput
	if len(args) > 0 {
		for _, p := range args {
			files = append(files, app.FileInput{Path: p})
		}
		return files
	}
	for _, f := range cfg.Files {
		path := f.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		files = append(files, app.FileInput{Path: path, Country: f.Country, ReportOrder: f.ReportOrder})
	}
	return files
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printRun(w io.Writer, run *experiment.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tCOUNTRY\tSEGMENT\tKPI\tVAR\tUPLIFT\tCONFIDENCE\tVERDICT")
	for _, r := range run.Results {
		for _, c := range r.Comparisons() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				dash(r.ReportOrder), r.Country, r.Segment, r.KPIName, c.VariationNum,
				pct(c.Uplift, "%+.2f%%"), pct(c.Confidence, "%.1f%%"), verdictOf(c))
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s\n", run.Insights.Markdown)
	if len(run.Notices) > 0 {
		fmt.Fprintln(w, "Notices:")
		for _, n := range run.Notices {
			fmt.Fprintln(w, "  "+n)
		}
	}
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func pct(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func verdictOf(c experiment.VariationResult) string {
	if c.Verdict == nil {
		return "-"
	}
	return string(*c.Verdict)
}
