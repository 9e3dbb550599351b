package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var orgs []string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize repositories across organizations",
		Long: `Aggregates the repositories of the selected organizations: totals of stars,
forks, and open issues, mean and median stars, the most starred and most
forked repository, and a breakdown by language.`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := appFrom(ctx)

			gw, err := a.newGateway()
			if err != nil {
				return err
			}
			snapshot, err := a.collect(ctx, gw, orgs, usecase.WantRepositories)
			if err != nil {
				return err
			}

			if err := a.renderer.Stats(usecase.Summarize(snapshot.Repositories)); err != nil {
				return err
			}
			a.reportRate(gw)
			return a.partialFailure(snapshot.Failures)
		},
	}
	addOrgFlag(cmd, &orgs)
	return cmd
}
