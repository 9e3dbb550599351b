package cmd

import (
	"github.com/spf13/cobra"
)

func newOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orgs",
		Short: "List the organizations the token can see",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := appFrom(ctx)

			gw, err := a.newGateway()
			if err != nil {
				return err
			}
			orgs, err := gw.FetchOrganizations(ctx)
			if err != nil {
				return err
			}
			if err := a.renderer.Organizations(orgs); err != nil {
				return err
			}
			a.reportRate(gw)
			return nil
		},
	}
}
