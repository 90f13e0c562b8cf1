package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/clusterops"
)

type targetFlags struct {
	dataset     string
	vectorField string
	alias       string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.dataset, "dataset", "d", "", "Dataset id")
	cmd.Flags().StringVarP(&t.vectorField, "vector-field", "f", "", "Vector field, e.g. title_vector_")
	cmd.Flags().StringVarP(&t.alias, "alias", "a", "", "Clustering alias (default: cluster.alias or the model alias)")
}

func (t *targetFlags) target(a *app) clusterops.Target {
	alias := t.alias
	if alias == "" {
		alias = a.cfg.Cluster.Alias
	}
	return clusterops.Target{Dataset: t.dataset, VectorField: t.vectorField, Alias: alias}
}

func newClusterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Run clusterings and query their results",
	}
	cmd.AddCommand(
		newRunCmd(a),
		newNearestCmd(a, "closest", "List documents closest to their cluster centroid"),
		newNearestCmd(a, "furthest", "List documents furthest from their cluster centroid"),
		newAggregateCmd(a),
		newCentroidsCmd(a),
	)
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var (
		t          targetFlags
		modelName  string
		params     []string
		meta       []string
		reportName string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fit a model on a vector field and write labels and centroids back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := clusterops.RunRequest{
				Dataset:     t.dataset,
				VectorField: t.vectorField,
				Alias:       t.target(a).Alias,
				Progress: func(n int) {
					_, _ = fmt.Fprintf(os.Stderr, "\rfetched %d documents", n)
				},
			}
			if len(meta) > 0 {
				md, err := parseParams(meta)
				if err != nil {
					return fmt.Errorf("--meta: %w", err)
				}
				req.Metadata = md
			}
			if modelName != "" || len(params) > 0 {
				m, err := buildModel(a, modelName, params)
				if err != nil {
					return err
				}
				req.Model = m
			}

			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Cluster().Run(ctx, req)
			_, _ = fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}
			if res.DashboardURL != "" {
				_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "Build your clustering app here: %s\n", res.DashboardURL)
			}
			var reportID, reportURL string
			if reportName != "" {
				reports := client.Reports()
				if reportID, err = reports.Store(ctx, reportName, clusterops.RunSummary(res)); err != nil {
					return err
				}
				reportURL = reports.URL(reportID)
			}
			return printJSON(cmd.OutOrStdout(), runSummary{
				Dataset:      res.Dataset,
				VectorField:  res.VectorField,
				Alias:        res.Alias,
				Field:        res.FieldPath(),
				Labelled:     res.Labelled(),
				Skipped:      len(res.Skipped),
				Centroids:    len(res.Centroids),
				DashboardURL: res.DashboardURL,
				ReportID:     reportID,
				ReportURL:    reportURL,
			})
		},
	}
	t.register(cmd)
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name (default: cluster.model)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Model parameter key=value, repeatable")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Operation metadata key=value, repeatable")
	cmd.Flags().StringVar(&reportName, "report", "", "Store a cluster report of the run under this name")
	return cmd
}

// buildModel merges --param values over cluster.params.
func buildModel(a *app, name string, pairs []string) (clusterops.Model, error) {
	if name == "" {
		name = a.cfg.Cluster.Model
	}
	overrides, err := parseParams(pairs)
	if err != nil {
		return clusterops.Model{}, err
	}
	params := make(map[string]any, len(a.cfg.Cluster.Params)+len(overrides))
	for k, v := range a.cfg.Cluster.Params {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}
	return clusterops.ModelFromName(name, params)
}

type runSummary struct {
	Dataset      string `json:"dataset"`
	VectorField  string `json:"vector_field"`
	Alias        string `json:"alias"`
	Field        string `json:"field"`
	Labelled     int    `json:"labelled"`
	Skipped      int    `json:"skipped"`
	Centroids    int    `json:"centroids"`
	DashboardURL string `json:"dashboard_url,omitempty"`
	ReportID     string `json:"report_id,omitempty"`
	ReportURL    string `json:"report_url,omitempty"`
}

func newNearestCmd(a *app, use, short string) *cobra.Command {
	var (
		t          targetFlags
		clusterIDs []string
		selects    []string
		filters    []string
		pageSize   int
		page       int
		metric     string
		minScore   float64
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conds, err := parseFilters(filters)
			if err != nil {
				return err
			}
			p := clusterops.NearestParams{
				Target:           t.target(a),
				ClusterIDs:       clusterIDs,
				SelectFields:     selects,
				Filters:          conds,
				PageSize:         pageSize,
				Page:             page,
				SimilarityMetric: metric,
				MinScore:         minScore,
			}

			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			var res clusterops.NearestResult
			if use == "closest" {
				res, err = client.Cluster().Closest(ctx, p)
			} else {
				res, err = client.Cluster().Furthest(ctx, p)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), nearestOutput(res))
		},
	}
	t.register(cmd)
	cmd.Flags().StringArrayVar(&clusterIDs, "cluster-id", nil, "Only these cluster labels, repeatable")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "Fields to return, repeatable")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter field:type:condition:value, repeatable")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Documents per cluster (default 20)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (default 1)")
	cmd.Flags().StringVar(&metric, "metric", "", "Similarity metric: cosine, l1, l2, dp")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum similarity score")
	return cmd
}

type hitOutput struct {
	ID       string              `json:"_id"`
	Score    float64             `json:"score"`
	Document clusterops.Document `json:"document"`
}

func nearestOutput(res clusterops.NearestResult) map[string][]hitOutput {
	out := make(map[string][]hitOutput, res.Len())
	for _, label := range res.Labels() {
		hits := res.Hits(label)
		list := make([]hitOutput, len(hits))
		for i := range hits {
			list[i] = hitOutput{ID: hits[i].ID(), Score: hits[i].Score(), Document: hits[i].Document()}
		}
		out[label] = list
	}
	return out
}

func newAggregateCmd(a *app) *cobra.Command {
	var (
		t         targetFlags
		groupBy   []string
		metricsIn []string
		sortBy    []string
		filters   []string
		pageSize  int
		page      int
		asc       bool
		nested    bool
	)
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Group and summarize the documents of each cluster",
		Example: "  clusterops cluster aggregate -d products -f title_vector_ \\\n" +
			"    --groupby 'category(brand)' --metric 'avg_price=avg(price)' --sort avg_price",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			gb, err := parseGroupBy(groupBy)
			if err != nil {
				return err
			}
			ms, err := parseMetrics(metricsIn)
			if err != nil {
				return err
			}
			conds, err := parseFilters(filters)
			if err != nil {
				return err
			}
			target := t.target(a)
			p := clusterops.AggregateParams{
				Dataset:  target.Dataset,
				Alias:    target.Alias,
				GroupBy:  gb,
				Metrics:  ms,
				Sort:     sortBy,
				Filters:  conds,
				PageSize: pageSize,
				Page:     page,
				Asc:      asc,
			}
			if target.VectorField != "" {
				p.VectorFields = []string{target.VectorField}
			}
			if nested {
				flatten := false
				p.Flatten = &flatten
			}

			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Cluster().Aggregate(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res.Rows())
		},
	}
	t.register(cmd)
	cmd.Flags().StringArrayVar(&groupBy, "groupby", nil, "Group by agg(field), agg: category, numeric, array, wordcloud")
	cmd.Flags().StringArrayVar(&metricsIn, "metric", nil, "Metric [name=]agg(field), agg: avg, max, min, sum, cardinality")
	cmd.Flags().StringArrayVar(&sortBy, "sort", nil, "Sort by metric name, repeatable")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter field:type:condition:value, repeatable")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Rows per page (default 20)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number (default 1)")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	cmd.Flags().BoolVar(&nested, "nested", false, "Nest rows under their cluster")
	return cmd
}

func newCentroidsCmd(a *app) *cobra.Command {
	var t targetFlags
	cmd := &cobra.Command{
		Use:   "centroids",
		Short: "List the stored centroids of a clustering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.newClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			cs, err := client.Cluster().Centroids(ctx, t.target(a))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}
	t.register(cmd)
	return cmd
}
