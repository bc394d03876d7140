package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/empsent-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set empsent configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "input: %s\n", cfg.Input)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.Sheet != "" {
			fmt.Fprintf(out, "sheet: %s\n", cfg.Sheet)
		}
		if cfg.DateLayout != "" {
			fmt.Fprintf(out, "date_layout: %s\n", cfg.DateLayout)
		}
		fmt.Fprintf(out, "missing_policy: %s\n", cfg.MissingPolicy)
		fmt.Fprintf(out, "locations: %s\n", strings.Join(cfg.Locations, ","))
		fmt.Fprintf(out, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "word_cloud_max_words: %d\n", cfg.WordCloudMaxWords)
		fmt.Fprintf(out, "top_words: %d\n", cfg.TopWords)
		fmt.Fprintf(out, "xlsx_export: %t\n", cfg.XLSXExport)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			// set may create the file named by --config
			if cfgFile != "" && errors.Is(err, fs.ErrNotExist) {
				c, err = cfgpkg.Defaults()
			}
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		next.Locations = append([]string(nil), cfg.Locations...)
		if err := setKey(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %w", key, err)
		}
		return i, nil
	}
	var err error
	switch key {
	case "input":
		c.Input = val
	case "output_dir":
		c.OutputDir = val
	case "delimiter":
		c.Delimiter = val
	case "sheet":
		c.Sheet = val
	case "date_layout":
		c.DateLayout = val
	case "missing_policy":
		c.MissingPolicy = strings.ToLower(val)
	case "locations":
		var locs []string
		for _, l := range strings.Split(val, ",") {
			if l = strings.TrimSpace(l); l != "" {
				locs = append(locs, l)
			}
		}
		c.Locations = locs
	case "chart_width":
		c.ChartWidth, err = atoi()
	case "chart_height":
		c.ChartHeight, err = atoi()
	case "histogram_bins":
		c.HistogramBins, err = atoi()
	case "word_cloud_max_words":
		c.WordCloudMaxWords, err = atoi()
	case "top_words":
		c.TopWords, err = atoi()
	case "xlsx_export":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for xlsx_export: %w", perr)
		}
		c.XLSXExport = b
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		c.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
