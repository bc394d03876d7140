package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var rbQuiet bool

var reportBatchCmd = &cobra.Command{
	Use:   "report-batch <files...>",
	Short: "Write one report per survey file, with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		base := reportSettingsFrom(cmd, c)
		out := cmd.OutOrStdout()

		total := len(files)
		var failed []string
		for i, path := range files {
			if !rbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loadPath(c, path)
			if err != nil {
				// A bad file does not stop the batch
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s: %v\n", filepath.Base(path), err)
				failed = append(failed, filepath.Base(path))
				continue
			}
			s := base
			s.outDir = batchOutputDir(base.outDir, path)
			m, err := writeReport(ds, path, s)
			if err != nil {
				return err
			}
			if !rbQuiet {
				printRunResult(out, m)
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed: %s", len(failed), total, strings.Join(failed, ", "))
		}
		return nil
	},
}

// expandInputs expands glob patterns, keeps literal paths that exist, and
// returns a sorted list without duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// batchOutputDir names the per-file output directory after the input file.
// An existing directory gets a numeric suffix instead of being overwritten.
func batchOutputDir(root, input string) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return dir
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(root, fmt.Sprintf("%s__%d", name, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(reportBatchCmd)
	reportBatchCmd.Flags().StringVarP(&repOutputDir, "output", "o", "", "root output directory; each file gets a subdirectory")
	reportBatchCmd.Flags().BoolVar(&repXLSX, "xlsx", false, "also export summary tables to summary.xlsx")
	reportBatchCmd.Flags().BoolVar(&repNoCharts, "no-charts", false, "skip chart rendering")
	reportBatchCmd.Flags().IntVar(&repBins, "bins", 0, "histogram bins (0 = automatic)")
	reportBatchCmd.Flags().IntVar(&repTop, "top", 10, "terms listed per comment field in the summary")
	reportBatchCmd.Flags().BoolVar(&rbQuiet, "quiet", false, "suppress progress and non-essential output")
}
