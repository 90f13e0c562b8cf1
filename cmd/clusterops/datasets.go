package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/clusterops"
)

func newDatasetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage datasets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			ids, err := client.Datasets().List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}

	var schemaFile string
	create := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var schema map[string]string
			if schemaFile != "" {
				data, err := os.ReadFile(schemaFile)
				if err != nil {
					return fmt.Errorf("read schema: %w", err)
				}
				if err := json.Unmarshal(data, &schema); err != nil {
					return fmt.Errorf("parse schema: %w", err)
				}
			}
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Datasets().Create(cmd.Context(), args[0], schema)
		},
	}
	create.Flags().StringVar(&schemaFile, "schema", "", "JSON file mapping field names to types")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Datasets().Delete(cmd.Context(), args[0])
		},
	}

	schema := &cobra.Command{
		Use:   "schema <id>",
		Short: "Show the field types of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			s, err := client.Datasets().Schema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}

	metadata := &cobra.Command{
		Use:   "metadata <id>",
		Short: "Show dataset metadata and the operation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			md, err := client.Datasets().Metadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), md)
		},
	}

	insert := &cobra.Command{
		Use:   "insert <id> <file.jsonl>",
		Short: "Insert documents from a JSON lines file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open documents: %w", err)
			}
			defer func() { _ = f.Close() }()

			docs, err := readDocuments(f)
			if err != nil {
				return err
			}
			client, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Documents(args[0]).Insert(cmd.Context(), docs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"inserted":         res.Inserted(),
				"failed_documents": res.FailedIDs(),
			})
		},
	}

	cmd.AddCommand(list, create, del, schema, metadata, insert)
	return cmd
}

// readDocuments decodes a stream of JSON documents (JSON lines or concatenated objects).
func readDocuments(r io.Reader) ([]clusterops.Document, error) {
	dec := json.NewDecoder(r)
	var docs []clusterops.Document
	for dec.More() {
		var d clusterops.Document
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs)+1, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
