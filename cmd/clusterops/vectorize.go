package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/clusterops"
)

func newVectorizeCmd(a *app) *cobra.Command {
	var (
		dataset string
		fields  []string
	)
	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Encode text fields into vector fields with the configured embedding model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Vectorize(ctx, clusterops.VectorizeRequest{
				Dataset: dataset,
				Fields:  fields,
				Progress: func(n int) {
					_, _ = fmt.Fprintf(os.Stderr, "\rprocessed %d documents", n)
				},
			})
			_, _ = fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"dataset":       res.Dataset,
				"vector_fields": res.VectorFields,
				"encoded":       res.Encoded,
				"skipped":       len(res.Skipped),
				"total_tokens":  res.Usage.TotalTokens,
			})
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Dataset id")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Text field to encode, repeatable")
	return cmd
}
