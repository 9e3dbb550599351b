package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
)

func newStaleCmd() *cobra.Command {
	var (
		orgs            []string
		days            int
		includeArchived bool
	)
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List repositories without a push for a number of days",
		Long: `Lists repositories whose last push is at least --days days ago, most stale
first. Repositories that were never pushed to are always stale. Archived
repositories are skipped unless --include-archived is given.`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDays(days); err != nil {
				return err
			}
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

			stale := usecase.FilterStale(snapshot.Repositories, a.now(), days, includeArchived)
			if err := a.renderer.Stale(stale, days); err != nil {
				return err
			}
			a.reportRate(gw)
			return a.partialFailure(snapshot.Failures)
		},
	}
	addOrgFlag(cmd, &orgs)
	addDaysFlag(cmd, &days)
	cmd.Flags().BoolVar(&includeArchived, "include-archived", false, "Include archived repositories")
	return cmd
}
