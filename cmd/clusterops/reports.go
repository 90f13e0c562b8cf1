package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage cluster reports",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cluster reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			reports, err := client.Reports().List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reports)
		},
	}

	store := &cobra.Command{
		Use:   "store <name> <file.json>",
		Short: "Store a JSON object as a cluster report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readReport(args[1])
			if err != nil {
				return err
			}
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			reports := client.Reports()
			id, err := reports.Store(cmd.Context(), args[0], body)
			if err != nil {
				return err
			}
			out := map[string]string{"id": id}
			if u := reports.URL(id); u != "" {
				out["url"] = u
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a cluster report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Reports().Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, store, del)
	return cmd
}

func readReport(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return body, nil
}
