package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
)

func newOverviewCmd() *cobra.Command {
	var (
		orgs []string
		days int
	)
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show a dashboard of activity across organizations",
		Long: `Shows a summary, the top languages, recently active and stale repositories,
and the most recently updated open issues in one view.`,
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
			a.warnIfRateLimited(ctx, gw)

			snapshot, err := a.collect(ctx, gw, orgs, usecase.WantRepositories|usecase.WantIssues)
			if err != nil {
				return err
			}

			if err := a.renderer.Overview(usecase.Compose(snapshot, a.now(), days)); err != nil {
				return err
			}
			a.reportRate(gw)
			return a.partialFailure(snapshot.Failures)
		},
	}
	addOrgFlag(cmd, &orgs)
	addDaysFlag(cmd, &days)
	return cmd
}
