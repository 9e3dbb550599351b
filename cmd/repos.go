package cmd

import (
	"github.com/naka-gawa/gitorg/internal/usecase"
	"github.com/spf13/cobra"
)

func newReposCmd() *cobra.Command {
	var (
		orgs []string
		sort = sortKeyValue(usecase.SortActivity)
	)
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories across organizations",
		Long: `Lists the repositories of the selected organizations, sorted by stars,
most recent push (activity), oldest push (staleness), or name.`,
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

			repos := usecase.SortRepositories(snapshot.Repositories, usecase.SortKey(sort))
			if err := a.renderer.Repositories(repos, a.now()); err != nil {
				return err
			}
			a.reportRate(gw)
			return a.partialFailure(snapshot.Failures)
		},
	}
	addOrgFlag(cmd, &orgs)
	cmd.Flags().Var(&sort, "sort", "Sort order: stars, activity, staleness, or name")
	return cmd
}
