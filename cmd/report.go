package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/empsent-cli/internal/config"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/KaramelBytes/empsent-cli/internal/manifest"
	"github.com/KaramelBytes/empsent-cli/internal/render"
	"github.com/KaramelBytes/empsent-cli/internal/utils"
	"github.com/spf13/cobra"
)

const (
	summaryFile  = "summary.md"
	workbookFile = "summary.xlsx"
)

var (
	repOutputDir string
	repXLSX      bool
	repNoCharts  bool
	repBins      int
	repTop       int
)

// reportSettings is the effective configuration of one report run.
type reportSettings struct {
	outDir   string
	xlsx     bool
	noCharts bool
	analysis analysis.Options
	render   render.Options
}

func reportSettingsFrom(cmd *cobra.Command, c *cfgpkg.Global) reportSettings {
	s := reportSettings{
		outDir:   c.OutputDir,
		xlsx:     c.XLSXExport,
		noCharts: repNoCharts,
		analysis: analysis.DefaultOptions(),
		render: render.Options{
			Width:             c.ChartWidth,
			Height:            c.ChartHeight,
			WordCloudMaxWords: c.WordCloudMaxWords,
		},
	}
	s.analysis.HistogramBins = c.HistogramBins
	s.analysis.TopWords = c.TopWords
	f := cmd.Flags()
	if f.Changed("output") {
		s.outDir = repOutputDir
	}
	if f.Changed("xlsx") {
		s.xlsx = repXLSX
	}
	if f.Changed("bins") {
		s.analysis.HistogramBins = repBins
	}
	if f.Changed("top") {
		s.analysis.TopWords = repTop
	}
	return s
}

// writeReport runs aggregation and rendering for a loaded dataset and
// persists every output under s.outDir. Chart failures never abort the run.
func writeReport(ds *feedback.Dataset, input string, s reportSettings) (*manifest.Manifest, error) {
	if err := utils.EnsureDir(s.outDir); err != nil {
		return nil, err
	}
	rep := analysis.Build(ds, s.analysis)
	for _, w := range rep.Warnings {
		logger.Warn("aggregation failed", "detail", w)
	}

	m := manifest.New(input, s.outDir)
	m.RowsRead = ds.RowsRead
	m.Records = ds.Len()
	m.Duplicates = ds.Duplicates
	m.DroppedMissing = ds.DroppedMissing
	m.Warnings = append(m.Warnings, rep.Warnings...)

	if !s.noCharts {
		render.New(s.render, logger).RenderAll(rep, m)
	}

	summary := filepath.Join(s.outDir, summaryFile)
	if err := utils.SafeWriteFile(summary, []byte(rep.Markdown())); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	if _, err := m.AddFile(summary, manifest.KindSummary, "Summary"); err != nil {
		return nil, err
	}

	if s.xlsx {
		book := filepath.Join(s.outDir, workbookFile)
		if err := analysis.WriteXLSX(rep, book); err != nil {
			logger.Warn("workbook export failed", "error", err)
			m.Warnings = append(m.Warnings, fmt.Sprintf("workbook export: %v", err))
		} else if _, err := m.AddFile(book, manifest.KindWorkbook, "Summary workbook"); err != nil {
			return nil, err
		}
	}

	if err := m.Save(); err != nil {
		return nil, err
	}
	return m, nil
}

func printRunResult(w io.Writer, m *manifest.Manifest) {
	fmt.Fprintf(w, "✓ Loaded %d records from %s (%d rows read, %d duplicates removed)\n",
		m.Records, filepath.Base(m.Input), m.RowsRead, m.Duplicates)
	if m.DroppedMissing > 0 {
		fmt.Fprintf(w, "⚠ Dropped %d rows with missing values\n", m.DroppedMissing)
	}
	fmt.Fprintf(w, "✓ Wrote %d charts to %s\n", len(m.Charts()), filepath.Join(m.RootDir(), render.ChartsDir))
	for _, sk := range m.Skipped {
		fmt.Fprintf(w, "⚠ Skipped %s: %s\n", sk.Chart, sk.Reason)
	}
	fmt.Fprintf(w, "✓ Wrote summary to %s\n", filepath.Join(m.RootDir(), summaryFile))
	for _, a := range m.Artifacts {
		if a.Kind == manifest.KindWorkbook {
			fmt.Fprintf(w, "✓ Wrote workbook to %s\n", filepath.Join(m.RootDir(), filepath.FromSlash(a.Path)))
		}
	}
	fmt.Fprintf(w, "✓ Manifest: %s (run %s)\n", filepath.Join(m.RootDir(), manifest.FileName), m.RunID)
}

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Load a survey and write charts, a Markdown summary and a manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		path, err := resolveInput(c, args)
		if err != nil {
			return err
		}
		ds, err := loadPath(c, path)
		if err != nil {
			return err
		}
		m, err := writeReport(ds, path, reportSettingsFrom(cmd, c))
		if err != nil {
			return err
		}
		printRunResult(cmd.OutOrStdout(), m)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutputDir, "output", "o", "", "output directory (default from config: report)")
	reportCmd.Flags().BoolVar(&repXLSX, "xlsx", false, "also export summary tables to summary.xlsx")
	reportCmd.Flags().BoolVar(&repNoCharts, "no-charts", false, "skip chart rendering")
	reportCmd.Flags().IntVar(&repBins, "bins", 0, "histogram bins (0 = automatic)")
	reportCmd.Flags().IntVar(&repTop, "top", 10, "terms listed per comment field in the summary")
}
