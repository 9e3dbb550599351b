package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
)

func newIssuesCmd() *cobra.Command {
	var orgs []string
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List open issues across organizations",
		Long:  `Lists the open issues of the selected organizations, grouped by organization. Pull requests are not included.`,
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := appFrom(ctx)

			gw, err := a.newGateway()
			if err != nil {
				return err
			}
			a.warnIfRateLimited(ctx, gw)

			snapshot, err := a.collect(ctx, gw, orgs, usecase.WantIssues)
			if err != nil {
				return err
			}

			if err := a.renderer.Issues(usecase.FilterIssues(snapshot.Issues)); err != nil {
				return err
			}
			a.reportRate(gw)
			return a.partialFailure(snapshot.Failures)
		},
	}
	addOrgFlag(cmd, &orgs)
	return cmd
}
