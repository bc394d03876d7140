package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/empsent-cli/internal/analysis"
	"github.com/KaramelBytes/empsent-cli/internal/console"
	"github.com/KaramelBytes/empsent-cli/internal/feedback"
	"github.com/spf13/cobra"
)

var (
	headRows  int
	groupKey  string
	wordField string
	wordTop   int
)

var groupAliases = map[string]feedback.Column{
	"tenure":     feedback.ColTenure,
	"engagement": feedback.ColEngagement,
	"location":   feedback.ColLocation,
}

var fieldAliases = map[string]feedback.Column{
	"positive": feedback.ColPositives,
	"negative": feedback.ColNegatives,
	"advice":   feedback.ColAdvice,
}

// columnArg resolves a short alias or a full column name.
func columnArg(flag, v string, aliases map[string]feedback.Column) (feedback.Column, error) {
	if c, ok := aliases[strings.ToLower(strings.TrimSpace(v))]; ok {
		return c, nil
	}
	if c, ok := feedback.LookupColumn(v); ok {
		return c, nil
	}
	names := make([]string, 0, len(aliases))
	for k := range aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown --%s: %s (use %s or a column name)", flag, v, strings.Join(names, " | "))
}

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print load counters and summary statistics of the numeric columns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		p := console.New(cmd.OutOrStdout())
		p.Dataset(ds)
		stats, err := analysis.Describe(ds.Records, feedback.NumericColumns)
		if err != nil {
			return err
		}
		p.Describe(stats)
		return nil
	},
}

var headCmd = &cobra.Command{
	Use:   "head [file]",
	Short: "Print the first records",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		console.New(cmd.OutOrStdout()).Head(ds.Head(headRows))
		return nil
	},
}

var groupbyCmd = &cobra.Command{
	Use:   "groupby [file]",
	Short: "Print average ratings per group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := columnArg("by", groupKey, groupAliases)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		g, err := analysis.GroupMeans(ds.Records, key, feedback.RatingColumns)
		if err != nil {
			return err
		}
		console.New(cmd.OutOrStdout()).GroupMeans(g)
		return nil
	},
}

var corrCmd = &cobra.Command{
	Use:   "corr [file]",
	Short: "Print the Pearson correlation matrix of the rating columns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		p := console.New(cmd.OutOrStdout())
		m, err := analysis.Correlation(ds.Records, feedback.RatingColumns)
		if m == nil {
			return err
		}
		p.Correlation(m)
		if err != nil {
			p.Warnings([]string{err.Error()})
		}
		return nil
	},
}

var crosstabCmd = &cobra.Command{
	Use:   "crosstab [file]",
	Short: "Print engagement participation counts per location",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		ct, err := analysis.CrossTab(ds.Records, feedback.ColEngagement, feedback.ColLocation)
		if err != nil {
			return err
		}
		console.New(cmd.OutOrStdout()).CrossTab(ct)
		return nil
	},
}

var wordsCmd = &cobra.Command{
	Use:   "words [file]",
	Short: "Print the most frequent words of a comment field",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := columnArg("field", wordField, fieldAliases)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		wc, err := analysis.WordFrequency(ds.Records, field)
		if err != nil {
			return err
		}
		console.New(cmd.OutOrStdout()).Words(wc, wordTop)
		return nil
	},
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly [file]",
	Short: "Print weekly average ratings (weeks ending Sunday)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args)
		if err != nil {
			return err
		}
		s, err := analysis.WeeklyMeans(ds.Records, feedback.RatingColumns)
		if err != nil {
			return err
		}
		console.New(cmd.OutOrStdout()).Weekly(s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd, headCmd, groupbyCmd, corrCmd, crosstabCmd, wordsCmd, weeklyCmd)
	headCmd.Flags().IntVarP(&headRows, "rows", "n", 5, "number of records to print")
	groupbyCmd.Flags().StringVar(&groupKey, "by", "tenure", "group key: tenure | engagement | location")
	wordsCmd.Flags().StringVar(&wordField, "field", "positive", "comment field: positive | negative | advice")
	wordsCmd.Flags().IntVar(&wordTop, "top", 10, "number of terms to print")
}
