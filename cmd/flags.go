package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sortKeyValue is a pflag.Value that accepts only the known repository orderings.
type sortKeyValue usecase.SortKey

var _ pflag.Value = (*sortKeyValue)(nil)

func (v *sortKeyValue) String() string { return string(*v) }
func (v *sortKeyValue) Type() string   { return "stars|activity|staleness|name" }

func (v *sortKeyValue) Set(s string) error {
	key, err := usecase.ParseSortKey(s)
	if err != nil {
		return err
	}
	*v = sortKeyValue(key)
	return nil
}

// addOrgFlag registers the repeatable --org flag on cmd.
func addOrgFlag(cmd *cobra.Command, orgs *[]string) {
	cmd.Flags().StringSliceVarP(orgs, "org", "o", nil, "Organization to query (repeatable; default: config defaults, else all)")
}

func addDaysFlag(cmd *cobra.Command, days *int) {
	cmd.Flags().IntVar(days, "days", usecase.DefaultStaleDays, "Days without a push after which a repository is stale")
}
