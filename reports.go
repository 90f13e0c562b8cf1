package clusterops

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ReportService stores named cluster reports in the project.
type ReportService struct {
	remote    reportRemote
	region    string
	dashboard string
	obs       *observer
}

// List returns the stored reports.
func (s *ReportService) List(ctx context.Context) (_ []Report, err error) {
	start := time.Now()
	defer func() { s.obs.observe("report.list", start, err) }()

	reports, err := s.remote.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Store saves body under name and returns the report id.
func (s *ReportService) Store(ctx context.Context, name string, body map[string]any) (_ string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("report.store", start, err) }()

	id, err := s.remote.StoreReport(ctx, name, body)
	if err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	return id, nil
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("report.delete", start, err) }()

	if err = s.remote.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// URL returns the dashboard link of a report, or "" without a dashboard.
func (s *ReportService) URL(id string) string {
	if s.dashboard == "" || id == "" {
		return ""
	}
	return s.dashboard + "/report/cluster/" + url.PathEscape(s.region) + "/" + url.PathEscape(id)
}

// RunSummary is the report body of a finished run: the target, counts and
// the size of each cluster.
func RunSummary(res RunResult) map[string]any {
	sizes := make(map[string]any, len(res.Centroids))
	for _, label := range res.Labels {
		n, _ := sizes[label].(int)
		sizes[label] = n + 1
	}
	return map[string]any{
		"dataset":       res.Dataset,
		"vector_field":  res.VectorField,
		"alias":         res.Alias,
		"labelled":      res.Labelled(),
		"skipped":       len(res.Skipped),
		"centroids":     len(res.Centroids),
		"cluster_sizes": sizes,
	}
}
