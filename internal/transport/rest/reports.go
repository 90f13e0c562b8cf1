package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/clusterops/internal/domain/report"
)

// ListReports returns the cluster reports of the project.
func (c *Client) ListReports(ctx context.Context) ([]report.Report, error) {
	var resp reportListResponse
	if err := c.do(ctx, http.MethodGet, "reports_list", "/reports/clusters/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// StoreReport saves a named cluster report and returns its id.
func (c *Client) StoreReport(ctx context.Context, name string, body map[string]any) (string, error) {
	if err := report.ValidateName(name); err != nil {
		return "", fmt.Errorf("reports_create: %w", err)
	}
	var resp reportCreateResponse
	err := c.do(ctx, http.MethodPost, "reports_create", "/reports/clusters/create",
		reportCreateRequest{Name: name, Report: body}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DeleteReport removes a cluster report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	path, err := reportPath(id, "/delete")
	if err != nil {
		return fmt.Errorf("reports_delete: %w", err)
	}
	return c.do(ctx, http.MethodPost, "reports_delete", path, nil, nil)
}

func reportPath(id, suffix string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("report id is required")
	}
	p, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return "", err
	}
	return "/reports/clusters/" + p + suffix, nil
}
