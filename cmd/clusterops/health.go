package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/clusterops"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity of the hosted API and the configured embedding backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			r := client.Health(cmd.Context())
			if err := printJSON(cmd.OutOrStdout(), r); err != nil {
				return err
			}
			if r.Status != clusterops.Healthy {
				return fmt.Errorf("status %s", r.Status)
			}
			return nil
		},
	}
}
