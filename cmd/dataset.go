package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/empsent-cli/internal/config"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// loadOptions maps configuration onto loader options.
func loadOptions(c *cfgpkg.Global) (feedback.LoadOptions, error) {
	opt := feedback.DefaultLoadOptions()
	switch strings.ToLower(c.Delimiter) {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported delimiter: %s", c.Delimiter)
	}
	pol, err := feedback.ParseMissingPolicy(c.MissingPolicy)
	if err != nil {
		return opt, err
	}
	opt.MissingPolicy = pol
	opt.Sheet = c.Sheet
	opt.DateLayout = c.DateLayout
	if len(c.Locations) > 0 {
		opt.Locations = append([]string(nil), c.Locations...)
	}
	return opt, nil
}

// resolveInput picks the file argument, falling back to the configured input.
func resolveInput(c *cfgpkg.Global, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if c.Input == "" {
		return "", fmt.Errorf("no input file given and no input configured")
	}
	return c.Input, nil
}

// loadDataset reads the survey named by args (or config) with the effective options.
func loadDataset(args []string) (*feedback.Dataset, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	path, err := resolveInput(c, args)
	if err != nil {
		return nil, err
	}
	return loadPath(c, path)
}

func loadPath(c *cfgpkg.Global, path string) (*feedback.Dataset, error) {
	opt, err := loadOptions(c)
	if err != nil {
		return nil, err
	}
	logger.Debug("loading survey", "path", path, "missing", opt.MissingPolicy, "sheet", opt.Sheet)
	ds, err := feedback.Load(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Info("survey loaded", "file", ds.Name, "rows", ds.RowsRead, "records", ds.Len(),
		"duplicates", ds.Duplicates, "dropped", ds.DroppedMissing)
	return ds, nil
}
